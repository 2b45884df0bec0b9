package events

import (
	"encoding/json"
	"testing"
	"time"
)

type sampleEvent struct {
	BaseEvent
	Amount string `json:"amount"`
}

func TestNewBaseEvent(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	event := NewBaseEvent("CatalogSynced", "agg-123", "Catalog", now)

	if event.EventID() == "" {
		t.Error("expected non-empty event ID")
	}
	if event.EventType() != "CatalogSynced" {
		t.Errorf("expected event type %q, got %q", "CatalogSynced", event.EventType())
	}
	if event.AggregateID() != "agg-123" {
		t.Errorf("expected aggregate ID %q, got %q", "agg-123", event.AggregateID())
	}
	if event.AggregateType() != "Catalog" {
		t.Errorf("expected aggregate type %q, got %q", "Catalog", event.AggregateType())
	}
	if !event.OccurredAt().Equal(now) {
		t.Errorf("expected occurredAt %v, got %v", now, event.OccurredAt())
	}
}

func TestBaseEventImplementsDomainEvent(t *testing.T) {
	var _ DomainEvent = BaseEvent{}
	var _ DomainEvent = sampleEvent{}
}

func TestNewOutboxEntry(t *testing.T) {
	now := time.Now().UTC()
	event := sampleEvent{
		BaseEvent: NewBaseEvent("RecommendationGenerated", "run-1", "RecommendationRun", now),
		Amount:    "1500000000",
	}

	entry, err := NewOutboxEntry(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if entry.ID != event.EventID() {
		t.Errorf("expected outbox ID %v, got %v", event.EventID(), entry.ID)
	}
	if entry.AggregateID != "run-1" {
		t.Errorf("expected aggregate ID %q, got %q", "run-1", entry.AggregateID)
	}
	if entry.EventType != "RecommendationGenerated" {
		t.Errorf("expected event type %q, got %q", "RecommendationGenerated", entry.EventType)
	}
	if entry.PublishedAt != nil {
		t.Error("expected published at to be nil")
	}

	var parsed map[string]any
	if err := json.Unmarshal(entry.Payload, &parsed); err != nil {
		t.Fatalf("expected valid JSON payload, got error: %v", err)
	}
	if parsed["event_type"] != "RecommendationGenerated" {
		t.Errorf("expected envelope in payload, got %v", parsed)
	}
	if parsed["amount"] != "1500000000" {
		t.Errorf("expected event fields in payload, got %v", parsed)
	}
}

func TestNewOutboxEntries(t *testing.T) {
	now := time.Now()
	entries, err := NewOutboxEntries([]DomainEvent{
		NewBaseEvent("Event1", "agg", "Aggregate", now),
		NewBaseEvent("Event2", "agg", "Aggregate", now),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[1].EventType != "Event2" {
		t.Errorf("expected second entry type %q, got %q", "Event2", entries[1].EventType)
	}
}

func TestEventCollectorRecord(t *testing.T) {
	collector := &EventCollector{}
	now := time.Now()

	collector.Record(NewBaseEvent("Event1", "agg-test", "Aggregate", now))
	collector.Record(NewBaseEvent("Event2", "agg-test", "Aggregate", now))

	events := collector.Events()
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
	if events[0].EventType() != "Event1" {
		t.Errorf("expected first event type %q, got %q", "Event1", events[0].EventType())
	}
	if events[1].EventType() != "Event2" {
		t.Errorf("expected second event type %q, got %q", "Event2", events[1].EventType())
	}
}

func TestEventCollectorEventsDoesNotClear(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", "agg", "Aggregate", time.Now()))

	_ = collector.Events()

	if len(collector.Events()) != 1 {
		t.Error("expected Events() to not clear the internal slice")
	}
}

func TestEventCollectorClearEvents(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(NewBaseEvent("Event1", "agg-clear", "Aggregate", time.Now()))
	collector.Record(NewBaseEvent("Event2", "agg-clear", "Aggregate", time.Now()))

	cleared := collector.ClearEvents()
	if len(cleared) != 2 {
		t.Fatalf("expected ClearEvents to return 2 events, got %d", len(cleared))
	}
	if len(collector.Events()) != 0 {
		t.Errorf("expected internal slice to be empty after ClearEvents, got %d events", len(collector.Events()))
	}
}

func TestEventCollectorClearEventsOnEmpty(t *testing.T) {
	collector := &EventCollector{}

	if cleared := collector.ClearEvents(); cleared != nil {
		t.Errorf("expected nil from ClearEvents on empty collector, got %v", cleared)
	}
}

func TestEventCollectorEventsReturnsCopy(t *testing.T) {
	collector := &EventCollector{}
	collector.Record(
		NewBaseEvent("Event1", "agg", "Aggregate", time.Now()),
		NewBaseEvent("Event2", "agg", "Aggregate", time.Now()),
	)

	snapshot := collector.Events()
	snapshot[0] = NewBaseEvent("Tampered", "agg", "Aggregate", time.Now())

	if got := collector.Events()[0].EventType(); got != "Event1" {
		t.Errorf("expected pending events to be unaffected, got first type %q", got)
	}
}
