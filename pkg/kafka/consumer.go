package kafka

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

// MessageHandler processes a single message. A returned error makes the consumer retry it.
type MessageHandler func(ctx context.Context, msg kafkago.Message) error

// RetryPolicy bounds the exponential backoff between attempts at a failing message.
type RetryPolicy struct {
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

// DefaultRetryPolicy starts at half a second and caps the wait at thirty seconds.
var DefaultRetryPolicy = RetryPolicy{
	InitialInterval: 500 * time.Millisecond,
	MaxInterval:     30 * time.Second,
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.InitialInterval
	b.MaxInterval = p.MaxInterval
	b.MaxElapsedTime = 0
	return backoff.WithContext(b, ctx)
}

// Retrying wraps handler so that a failing message is retried in place until it succeeds
// or ctx is done. Later messages of the partition wait behind it, which keeps the committed
// offset from skipping past it.
func Retrying(handler MessageHandler, policy RetryPolicy, logger *zap.Logger) MessageHandler {
	return func(ctx context.Context, msg kafkago.Message) error {
		attempt := 0
		operation := func() error {
			attempt++
			return handler(ctx, msg)
		}
		notify := func(err error, wait time.Duration) {
			logger.Warn("message handler failed, retrying",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Int("attempt", attempt),
				zap.Duration("retry_in", wait),
				zap.Error(err),
			)
		}
		return backoff.RetryNotify(operation, policy.backOff(ctx), notify)
	}
}

// Consumer reads a single topic as part of a consumer group.
type Consumer struct {
	reader *kafkago.Reader
	retry  RetryPolicy
	logger *zap.Logger
}

// NewConsumer creates a consumer-group reader for topic.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafkago.NewReader(kafkago.ReaderConfig{
			Brokers:     brokers,
			GroupID:     groupID,
			Topic:       topic,
			MinBytes:    1,
			MaxBytes:    10e6,
			StartOffset: kafkago.FirstOffset,
		}),
		retry:  DefaultRetryPolicy,
		logger: logger,
	}
}

// SetRetryPolicy replaces DefaultRetryPolicy. Call it before Consume.
func (c *Consumer) SetRetryPolicy(policy RetryPolicy) {
	c.retry = policy
}

// Consume fetches messages until ctx is cancelled. Each message is retried until the handler
// accepts it and is committed only then. A message still failing when ctx ends stays
// uncommitted and is redelivered to the next member of the group.
func (c *Consumer) Consume(ctx context.Context, handler MessageHandler) error {
	handle := Retrying(handler, c.retry, c.logger)
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return ctx.Err()
			}
			return fmt.Errorf("failed to fetch message: %w", err)
		}

		if err := handle(ctx, msg); err != nil {
			c.logger.Error("giving up on message until redelivery",
				zap.String("topic", msg.Topic),
				zap.Int("partition", msg.Partition),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			return fmt.Errorf("failed to handle message at offset %d: %w", msg.Offset, err)
		}

		if err := c.reader.CommitMessages(ctx, msg); err != nil {
			c.logger.Error("failed to commit message",
				zap.String("topic", msg.Topic),
				zap.Int64("offset", msg.Offset),
				zap.Error(err),
			)
		}
	}
}

// Close closes the underlying reader.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
