package kafka

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"
)

// Handler processes a consumed Kafka message.
type Handler func(ctx context.Context, msg Message) error

// Consumer wraps kafka-go reader for consuming messages.
type Consumer struct {
	reader   *kafkago.Reader
	handler  Handler
	logger   *slog.Logger
	attempts int
	backoff  time.Duration
}

// ConsumerOption customizes a Consumer.
type ConsumerOption func(*Consumer)

// WithRetry makes the consumer call the handler up to attempts times per
// message, sleeping backoff between calls.
func WithRetry(attempts int, backoff time.Duration) ConsumerOption {
	return func(c *Consumer) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

// NewConsumer creates a new Consumer for the given topic with the provided handler.
func NewConsumer(cfg Config, topic string, handler Handler, logger *slog.Logger, opts ...ConsumerOption) (*Consumer, error) {
	if cfg.ConsumerGroup == "" {
		return nil, errors.New("kafka: consumer group is required")
	}
	dialer, err := cfg.dialer()
	if err != nil {
		return nil, err
	}

	r := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:  cfg.Brokers,
		Topic:    topic,
		GroupID:  cfg.ConsumerGroup,
		MinBytes: 1,
		MaxBytes: 10 * 1024 * 1024, // 10 MB
		Dialer:   dialer,
	})

	c := &Consumer{
		reader:   r,
		handler:  handler,
		logger:   logger,
		attempts: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Start begins consuming messages. Blocks until the context is canceled.
// A message whose handler still fails after the configured attempts is
// logged and not committed.
func (c *Consumer) Start(ctx context.Context) error {
	c.logger.Info("consumer starting", "topic", c.reader.Config().Topic, "group", c.reader.Config().GroupID)

	for {
		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				c.logger.Info("consumer stopping due to context cancellation")
				return nil
			}
			return fmt.Errorf("fetching message: %w", err)
		}

		if err := c.handle(ctx, toMessage(m)); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			c.logger.Error("handler error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"key", string(m.Key),
				"attempts", c.attempts,
				"error", err,
			)
			continue
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("commit error",
				"topic", m.Topic,
				"partition", m.Partition,
				"offset", m.Offset,
				"error", err,
			)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, msg Message) error {
	var err error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if err = c.handler(ctx, msg); err == nil {
			return nil
		}
		if attempt == c.attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(c.backoff):
		}
	}
	return err
}

// Close closes the reader.
func (c *Consumer) Close() error {
	if err := c.reader.Close(); err != nil {
		return fmt.Errorf("closing kafka reader: %w", err)
	}
	return nil
}

func toMessage(m kafkago.Message) Message {
	msg := Message{
		Key:     m.Key,
		Value:   m.Value,
		Headers: make(map[string]string, len(m.Headers)),
	}
	for _, h := range m.Headers {
		msg.Headers[h.Key] = string(h.Value)
	}
	return msg
}
