package testutil

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	itemDomain "github.com/shareit/service-booking/internal/domain/item"
	userDomain "github.com/shareit/service-booking/internal/domain/user"
	"github.com/shareit/service-booking/pkg/kafka"
)

// BaseTime is a fixed instant used as "now" by most tests.
var BaseTime = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// SeedUser stores a user named name with a derived unique email.
func SeedUser(t *testing.T, s *Store, name string) *userDomain.User {
	t.Helper()
	u, err := userDomain.NewUser(name, uuid.NewString()[:8]+"@example.com", BaseTime)
	require.NoError(t, err)
	require.NoError(t, s.Users().Save(context.Background(), u))
	return u
}

// SeedItem stores an item owned by ownerID.
func SeedItem(t *testing.T, s *Store, ownerID uuid.UUID, name string, available bool) *itemDomain.Item {
	t.Helper()
	it, err := itemDomain.NewItem(ownerID, name, name+" for lending", &available, nil, BaseTime)
	require.NoError(t, err)
	require.NoError(t, s.Items().Save(context.Background(), it))
	return it
}

// PublishedEvent is one event captured by RecordingPublisher.
type PublishedEvent struct {
	Topic string
	Key   string
	Event kafka.CloudEvent
}

// RecordingPublisher captures published events. Set Err to make publishing fail.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []PublishedEvent
	Err    error
}

func (p *RecordingPublisher) PublishEventWithKey(_ context.Context, topic, key string, event kafka.CloudEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.Err != nil {
		return p.Err
	}
	p.events = append(p.events, PublishedEvent{Topic: topic, Key: key, Event: event})
	return nil
}

// Events returns a snapshot of what has been published.
func (p *RecordingPublisher) Events() []PublishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]PublishedEvent(nil), p.events...)
}

// Types returns the CloudEvent types published so far.
func (p *RecordingPublisher) Types() []string {
	var types []string
	for _, e := range p.Events() {
		types = append(types, e.Event.Type)
	}
	return types
}

// ErrBrokerDown is a canned publish failure.
var ErrBrokerDown = errors.New("broker down")
