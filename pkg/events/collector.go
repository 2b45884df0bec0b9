package events

import "slices"

// EventCollector is embedded in aggregates to hold the events raised since
// the aggregate was last persisted.
type EventCollector struct {
	pending []DomainEvent
}

// Record queues events in the order they were raised.
func (c *EventCollector) Record(evts ...DomainEvent) {
	c.pending = append(c.pending, evts...)
}

// Events returns a copy of the pending events.
func (c *EventCollector) Events() []DomainEvent {
	return slices.Clone(c.pending)
}

// ClearEvents returns the pending events and forgets them. Repositories have
// already written them to the outbox by the time use cases call this.
func (c *EventCollector) ClearEvents() []DomainEvent {
	drained := c.pending
	c.pending = nil
	return drained
}
