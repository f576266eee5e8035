package events

import (
	"context"
	"errors"

	"github.com/google/uuid"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/shareit/service-booking/internal/application"
	"github.com/shareit/service-booking/pkg/domain"
	"github.com/shareit/service-booking/pkg/events"
	"github.com/shareit/service-booking/pkg/kafka"
)

// BookingTransitioner applies booking decisions.
type BookingTransitioner interface {
	TransitionBooking(ctx context.Context, bookingID, actorID uuid.UUID, approved bool) (*application.BookingDTO, error)
}

// DecisionConsumer applies booking decisions arriving on the decisions topic.
type DecisionConsumer struct {
	consumer *kafka.Consumer
	service  BookingTransitioner
	logger   *zap.Logger
}

// NewDecisionConsumer creates a new DecisionConsumer.
func NewDecisionConsumer(
	brokers []string,
	groupID string,
	service BookingTransitioner,
	logger *zap.Logger,
) *DecisionConsumer {
	consumer := kafka.NewConsumer(brokers, groupID, events.TopicBookingDecisions, logger)
	return &DecisionConsumer{
		consumer: consumer,
		service:  service,
		logger:   logger,
	}
}

// Start begins consuming decisions. This blocks until the context is cancelled.
func (c *DecisionConsumer) Start(ctx context.Context) error {
	return c.consumer.Consume(ctx, c.handleMessage)
}

// Close closes the underlying Kafka consumer.
func (c *DecisionConsumer) Close() error {
	return c.consumer.Close()
}

func (c *DecisionConsumer) handleMessage(ctx context.Context, msg kafkago.Message) error {
	cloudEvent, err := kafka.ParseCloudEvent(msg.Value)
	if err != nil {
		c.logger.Error("failed to parse cloud event from decisions topic",
			zap.Error(err),
			zap.String("raw", string(msg.Value)),
		)
		return nil // Don't retry malformed messages
	}

	switch cloudEvent.Type {
	case events.BookingDecision:
		return c.handleDecision(ctx, cloudEvent)
	default:
		c.logger.Debug("ignoring unhandled decision event type",
			zap.String("type", cloudEvent.Type),
		)
		return nil
	}
}

func (c *DecisionConsumer) handleDecision(ctx context.Context, cloudEvent kafka.CloudEvent) error {
	var cmd events.BookingDecisionCommand
	if err := cloudEvent.ParseData(&cmd); err != nil {
		c.logger.Error("failed to parse BookingDecisionCommand data", zap.Error(err))
		return nil
	}
	if cmd.BookingID == uuid.Nil || cmd.ActorID == uuid.Nil {
		c.logger.Error("decision without booking or actor id", zap.String("event_id", cloudEvent.ID))
		return nil
	}

	c.logger.Info("processing booking decision",
		zap.String("booking_id", cmd.BookingID.String()),
		zap.String("actor_id", cmd.ActorID.String()),
		zap.Bool("approved", cmd.Approved),
	)

	dto, err := c.service.TransitionBooking(ctx, cmd.BookingID, cmd.ActorID, cmd.Approved)
	if err != nil {
		var de *domain.DomainError
		if errors.As(err, &de) {
			// Domain failures are committed, not retried.
			c.logger.Warn("booking decision rejected",
				zap.String("booking_id", cmd.BookingID.String()),
				zap.String("code", de.Code),
				zap.String("reason", de.Message),
			)
			return nil
		}
		return err
	}

	c.logger.Info("booking decision applied",
		zap.String("booking_id", dto.ID.String()),
		zap.String("status", dto.Status),
	)
	return nil
}
