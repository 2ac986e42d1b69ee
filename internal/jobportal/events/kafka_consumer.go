package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"
)

type KafkaReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Handler processes one event. A returned error is retried with backoff;
// wrap it in backoff.Permanent to give up at once. An event whose retries
// run out is logged and committed.
type Handler func(context.Context, Event) error

type Consumer struct {
	reader  KafkaReader
	logger  *zap.Logger
	handler Handler
	// retry builds the backoff policy for failed handlers and fetches.
	retry func() backoff.BackOff
}

func defaultRetry() backoff.BackOff {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 200 * time.Millisecond
	policy.MaxInterval = 10 * time.Second
	policy.MaxElapsedTime = time.Minute
	return policy
}

func (c *Consumer) backOff() backoff.BackOff {
	if c.retry == nil {
		return defaultRetry()
	}
	return c.retry()
}

// NewConsumer consumes the events topic as part of groupID.
func NewConsumer(brokers []string, groupID, topic string, logger *zap.Logger) *Consumer {
	return &Consumer{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			GroupID: groupID,
			Topic:   topic,
			Dialer:  kafka.DefaultDialer,
		}),
		logger: logger.Named("kafka_consumer"),
	}
}

// Run consumes until ctx is cancelled. Failed fetches are retried with
// backoff.
func (c *Consumer) Run(ctx context.Context) {
	policy := c.backOff()
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			wait := policy.NextBackOff()
			if wait == backoff.Stop {
				policy.Reset()
				wait = policy.NextBackOff()
			}
			c.logger.Error("Failed to fetch message", zap.Error(err), zap.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return
			case <-time.After(wait):
			}
			continue
		}
		policy.Reset()
		c.handle(ctx, msg)
	}
}

// Start runs the consumer in a background goroutine.
func (c *Consumer) Start(ctx context.Context) {
	go c.Run(ctx)
}

func (c *Consumer) handle(ctx context.Context, msg kafka.Message) {
	var event Event
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.logger.Error("Failed to parse event",
			zap.Error(err),
			zap.ByteString("value", msg.Value),
		)
		// Poison messages are skipped.
		c.commit(ctx, msg, "")
		return
	}

	err := backoff.RetryNotify(func() error {
		return c.handler(ctx, event)
	}, backoff.WithContext(c.backOff(), ctx), func(err error, wait time.Duration) {
		c.logger.Warn("Failed to handle event, retrying",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.Duration("wait", wait),
		)
	})
	if err != nil {
		if ctx.Err() != nil {
			// Left uncommitted for redelivery.
			return
		}
		c.logger.Error("Failed to handle event",
			zap.Error(err),
			zap.String("event_type", string(event.Type)),
			zap.Int("partition", msg.Partition),
			zap.Int64("offset", msg.Offset),
		)
	}

	c.commit(ctx, msg, event.Type)
}

func (c *Consumer) commit(ctx context.Context, msg kafka.Message, eventType EventType) {
	if err := c.reader.CommitMessages(ctx, msg); err != nil {
		c.logger.Error("Failed to commit message",
			zap.Error(err),
			zap.String("event_type", string(eventType)),
		)
	}
}

func (c *Consumer) RegisterHandler(fn Handler) {
	c.handler = fn
}

func (c *Consumer) Close() {
	if err := c.reader.Close(); err != nil {
		c.logger.Error("Failed to close Kafka reader", zap.Error(err))
	}
}
