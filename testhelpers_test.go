//go:build integration

package main_test

import (
	"context"
	"fmt"
	"net"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	kafkamodule "github.com/testcontainers/testcontainers-go/modules/kafka"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/internal/cache"
	"github.com/shareit/service-booking/internal/clock"
	bookingEvents "github.com/shareit/service-booking/internal/events"
	"github.com/shareit/service-booking/internal/repository"
	"github.com/shareit/service-booking/pkg/database"
	"github.com/shareit/service-booking/pkg/events"
	"github.com/shareit/service-booking/pkg/kafka"
)

// setupPostgres starts a PostgreSQL container, applies the migrations and returns a connected GORM DB.
func setupPostgres(t *testing.T) *gorm.DB {
	t.Helper()
	ctx := context.Background()

	pgContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "postgres:16-alpine",
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     "test",
				"POSTGRES_PASSWORD": "test",
				"POSTGRES_DB":       "test_shareit",
			},
			WaitingFor: wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start PostgreSQL container")
	t.Cleanup(func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate PostgreSQL container: %v", err)
		}
	})

	host, err := pgContainer.Host(ctx)
	require.NoError(t, err)
	port, err := pgContainer.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := database.PostgresConfig{
		Host:     host,
		Port:     port.Port(),
		User:     "test",
		Password: "test",
		DBName:   "test_shareit",
		SSLMode:  "disable",
	}
	log := zap.NewNop()

	var db *gorm.DB
	require.Eventually(t, func() bool {
		db, err = database.Connect(cfg, log)
		return err == nil
	}, 30*time.Second, time.Second, "PostgreSQL not ready for connections")

	require.NoError(t, database.RunMigrations(cfg.DatabaseURL(), "migrations", log))
	return db
}

// setupKafka starts a single-node Kafka and creates the booking topics.
func setupKafka(t *testing.T) []string {
	t.Helper()
	ctx := context.Background()

	kafkaContainer, err := kafkamodule.Run(ctx, "confluentinc/confluent-local:7.5.0")
	require.NoError(t, err, "failed to start Kafka container")
	t.Cleanup(func() {
		if err := kafkaContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Kafka container: %v", err)
		}
	})

	brokers, err := kafkaContainer.Brokers(ctx)
	require.NoError(t, err, "failed to get Kafka brokers")

	createTopics(t, brokers, events.TopicBookingEvents, events.TopicBookingDecisions)
	return brokers
}

// setupRedis starts a Redis container and returns a connected client.
func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	ctx := context.Background()

	redisContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
		},
		Started: true,
	})
	require.NoError(t, err, "failed to start Redis container")
	t.Cleanup(func() {
		if err := redisContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate Redis container: %v", err)
		}
	})

	host, err := redisContainer.Host(ctx)
	require.NoError(t, err)
	port, err := redisContainer.MappedPort(ctx, "6379")
	require.NoError(t, err)

	client, err := cache.NewClient(ctx, net.JoinHostPort(host, port.Port()), "", 0)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

// stack holds the services wired over real repositories.
type stack struct {
	Clock    *clock.Manual
	Users    *application.UserService
	Items    *application.ItemService
	Bookings *application.BookingService
}

// newStack wires every service over GORM repositories. publisher may be nil.
func newStack(db *gorm.DB, publisher application.EventPublisher, start time.Time) *stack {
	log := zap.NewNop()
	clk := clock.NewManual(start)

	userRepo := repository.NewGormUserRepository(db)
	itemRepo := repository.NewGormItemRepository(db)
	bookingRepo := repository.NewGormBookingRepository(db)
	commentRepo := repository.NewGormCommentRepository(db)
	requestRepo := repository.NewGormRequestRepository(db)

	return &stack{
		Clock:    clk,
		Users:    application.NewUserService(userRepo, clk, log),
		Items:    application.NewItemService(itemRepo, userRepo, bookingRepo, commentRepo, requestRepo, clk, log),
		Bookings: application.NewBookingService(bookingRepo, userRepo, itemRepo, clk, publisher, log),
	}
}

func (s *stack) createUser(t *testing.T, name string) uuid.UUID {
	t.Helper()
	u, err := s.Users.CreateUser(context.Background(), application.CreateUserRequest{
		Name:  name,
		Email: fmt.Sprintf("%s-%s@example.com", name, uuid.NewString()[:8]),
	})
	require.NoError(t, err)
	return u.ID
}

func (s *stack) createItem(t *testing.T, ownerID uuid.UUID, name string) uuid.UUID {
	t.Helper()
	available := true
	it, err := s.Items.CreateItem(context.Background(), ownerID, application.CreateItemRequest{
		Name: name, Description: name + " for lending", Available: &available,
	})
	require.NoError(t, err)
	return it.ID
}

func (s *stack) book(t *testing.T, bookerID, itemID uuid.UUID, start, end time.Time) uuid.UUID {
	t.Helper()
	b, err := s.Bookings.CreateBooking(context.Background(), bookerID, application.CreateBookingRequest{
		ItemID: itemID, Start: start, End: end,
	})
	require.NoError(t, err)
	return b.ID
}

// newDecisionConsumer creates a consumer with a fresh group id.
func newDecisionConsumer(brokers []string, svc *application.BookingService) *bookingEvents.DecisionConsumer {
	groupID := fmt.Sprintf("test-booking-%s", uuid.New().String()[:8])
	return bookingEvents.NewDecisionConsumer(brokers, groupID, svc, zap.NewNop())
}

// publishTestEvent publishes a CloudEvent to Kafka.
func publishTestEvent(t *testing.T, brokers []string, topic, source, eventType string, data interface{}) {
	t.Helper()
	producer := kafka.NewProducer(brokers, zap.NewNop())
	defer func() { _ = producer.Close() }()

	ce, err := kafka.NewCloudEvent(source, eventType, data)
	require.NoError(t, err, "failed to create cloud event")

	err = producer.PublishEvent(context.Background(), topic, ce)
	require.NoError(t, err, "failed to publish event")
}

// waitForBookingStatus polls the bookings table until the row reaches status.
func waitForBookingStatus(t *testing.T, db *gorm.DB, bookingID uuid.UUID, status string, timeout time.Duration) repository.BookingModel {
	t.Helper()
	var model repository.BookingModel
	require.EventuallyWithT(t, func(c *assert.CollectT) {
		model = repository.BookingModel{}
		require.NoError(c, db.Where("id = ?", bookingID).Take(&model).Error)
		assert.Equal(c, status, model.Status)
	}, timeout, 200*time.Millisecond, "booking %s never reached %s", bookingID, status)
	return model
}

// consumeOneEvent reads topic from the beginning with a fresh group until an event of
// eventType arrives.
func consumeOneEvent(t *testing.T, brokers []string, topic, eventType string, timeout time.Duration) kafka.CloudEvent {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	consumer := kafka.NewConsumer(brokers, "test-assert-"+uuid.NewString()[:8], topic, zap.NewNop())
	defer func() { _ = consumer.Close() }()

	var found *kafka.CloudEvent
	_ = consumer.Consume(ctx, func(_ context.Context, msg kafkago.Message) error {
		if ce, err := kafka.ParseCloudEvent(msg.Value); err == nil && ce.Type == eventType {
			found = &ce
			cancel()
		}
		return nil
	})
	if found == nil {
		t.Fatalf("timed out waiting for %q on %q", eventType, topic)
	}
	return *found
}

// createTopics pre-creates Kafka topics so producers don't fail with "Unknown Topic".
func createTopics(t *testing.T, brokers []string, topics ...string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", brokers[0])
	require.NoError(t, err, "failed to dial Kafka for topic creation")
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err, "failed to get Kafka controller")

	controllerConn, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, fmt.Sprintf("%d", controller.Port)))
	require.NoError(t, err, "failed to connect to Kafka controller")
	defer controllerConn.Close()

	configs := make([]kafkago.TopicConfig, len(topics))
	for i, topic := range topics {
		configs[i] = kafkago.TopicConfig{Topic: topic, NumPartitions: 1, ReplicationFactor: 1}
	}
	require.NoError(t, controllerConn.CreateTopics(configs...), "failed to create Kafka topics")

	time.Sleep(1 * time.Second)
}
