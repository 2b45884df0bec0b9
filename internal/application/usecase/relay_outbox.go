package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/mortgage-advisor/pkg/events"
	"github.com/bibbank/mortgage-advisor/pkg/observability"
)

// DefaultOutboxBatchSize bounds how many entries one relay pass ships.
const DefaultOutboxBatchSize = 100

// RelayOutboxUseCase ships stored domain events to the broker. Entries are
// marked published only after the broker acknowledged them, so delivery is
// at-least-once.
type RelayOutboxUseCase struct {
	outbox    events.OutboxRepository
	publisher events.EntryPublisher
	batchSize int
	metrics   *observability.AdvisorMetrics
	logger    *slog.Logger
}

// NewRelayOutboxUseCase wires dependencies. A non-positive batchSize uses
// DefaultOutboxBatchSize.
func NewRelayOutboxUseCase(
	outbox events.OutboxRepository,
	publisher events.EntryPublisher,
	batchSize int,
	metrics *observability.AdvisorMetrics,
	logger *slog.Logger,
) *RelayOutboxUseCase {
	if batchSize <= 0 {
		batchSize = DefaultOutboxBatchSize
	}
	return &RelayOutboxUseCase{
		outbox:    outbox,
		publisher: publisher,
		batchSize: batchSize,
		metrics:   metrics,
		logger:    logger,
	}
}

// Execute relays one batch and returns how many entries were published.
func (uc *RelayOutboxUseCase) Execute(ctx context.Context) (int, error) {
	entries, err := uc.outbox.FetchUnpublished(ctx, uc.batchSize)
	if err != nil {
		return 0, fmt.Errorf("fetch unpublished: %w", err)
	}
	if len(entries) == 0 {
		return 0, nil
	}

	if err := uc.publisher.PublishEntries(ctx, entries); err != nil {
		return 0, fmt.Errorf("publish entries: %w", err)
	}

	ids := make([]string, 0, len(entries))
	for _, e := range entries {
		ids = append(ids, e.ID)
	}
	if err := uc.outbox.MarkPublished(ctx, ids); err != nil {
		return 0, fmt.Errorf("mark published: %w", err)
	}

	uc.metrics.RecordOutboxRelayed(ctx, len(entries))
	uc.logger.DebugContext(ctx, "outbox relayed", "count", len(entries))
	return len(entries), nil
}
