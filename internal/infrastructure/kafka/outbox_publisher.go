package kafka

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/mortgage-advisor/pkg/events"
	pkgkafka "github.com/bibbank/mortgage-advisor/pkg/kafka"
)

// Header keys set on every relayed message.
const (
	HeaderEventID       = "event_id"
	HeaderEventType     = "event_type"
	HeaderAggregateType = "aggregate_type"
)

// messagePublisher is the subset of *pkgkafka.Producer used here.
type messagePublisher interface {
	Publish(ctx context.Context, topic string, messages ...pkgkafka.Message) error
}

// OutboxPublisher implements events.EntryPublisher. Each entry goes to the
// topic named after its event type, keyed by aggregate ID so that events of
// one aggregate stay ordered within a partition.
type OutboxPublisher struct {
	producer messagePublisher
	logger   *slog.Logger
}

// NewOutboxPublisher creates a publisher on top of producer.
func NewOutboxPublisher(producer messagePublisher, logger *slog.Logger) *OutboxPublisher {
	return &OutboxPublisher{producer: producer, logger: logger}
}

// PublishEntries sends entries grouped by topic, keeping their relative order.
func (p *OutboxPublisher) PublishEntries(ctx context.Context, entries []events.OutboxEntry) error {
	var topics []string
	byTopic := make(map[string][]pkgkafka.Message)
	for _, e := range entries {
		if _, seen := byTopic[e.EventType]; !seen {
			topics = append(topics, e.EventType)
		}
		byTopic[e.EventType] = append(byTopic[e.EventType], pkgkafka.Message{
			Key:   []byte(e.AggregateID),
			Value: e.Payload,
			Headers: map[string]string{
				HeaderEventID:       e.ID,
				HeaderEventType:     e.EventType,
				HeaderAggregateType: e.AggregateType,
			},
		})
	}

	for _, topic := range topics {
		msgs := byTopic[topic]
		p.logger.DebugContext(ctx, "publishing outbox entries", "topic", topic, "count", len(msgs))
		if err := p.producer.Publish(ctx, topic, msgs...); err != nil {
			return fmt.Errorf("publish %d entries to %s: %w", len(msgs), topic, err)
		}
	}
	return nil
}
