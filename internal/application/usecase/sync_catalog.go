package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
	"github.com/bibbank/mortgage-advisor/internal/domain/event"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	"github.com/bibbank/mortgage-advisor/pkg/observability"
)

// ErrEmptyCatalog is returned when a catalog source yields no valid product.
// The stored catalog is left untouched.
var ErrEmptyCatalog = errors.New("catalog has no valid products")

// SyncCatalogUseCase reloads the product catalog from its source of truth.
type SyncCatalogUseCase struct {
	mu          sync.Mutex
	source      port.CatalogSource
	productRepo port.ProductRepository
	cache       port.ProductCache
	clock       port.Clock
	metrics     *observability.AdvisorMetrics
	logger      *slog.Logger
}

// NewSyncCatalogUseCase wires dependencies. cache and metrics may be nil.
func NewSyncCatalogUseCase(
	source port.CatalogSource,
	productRepo port.ProductRepository,
	cache port.ProductCache,
	clock port.Clock,
	metrics *observability.AdvisorMetrics,
	logger *slog.Logger,
) *SyncCatalogUseCase {
	return &SyncCatalogUseCase{
		source:      source,
		productRepo: productRepo,
		cache:       cache,
		clock:       clock,
		metrics:     metrics,
		logger:      logger,
	}
}

// Execute replaces the stored catalog with the source's products. Concurrent
// calls are serialised.
func (uc *SyncCatalogUseCase) Execute(ctx context.Context, req dto.SyncCatalogRequest) (resp dto.SyncCatalogResponse, err error) {
	uc.mu.Lock()
	defer uc.mu.Unlock()

	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
		}
		uc.metrics.RecordCatalogSync(ctx, status)
	}()

	// 1. Load and validate the source.
	snapshot, err := uc.source.Load(ctx)
	if err != nil {
		return dto.SyncCatalogResponse{}, fmt.Errorf("load catalog: %w", err)
	}
	if len(snapshot.Products) == 0 {
		return dto.SyncCatalogResponse{}, fmt.Errorf("%w: %s", ErrEmptyCatalog, snapshot.Source)
	}

	// 2. Replace the stored catalog and record CatalogSynced atomically.
	now := uc.clock.Now()
	for i := range snapshot.Products {
		snapshot.Products[i].UpdatedAt = now
	}
	syncID := uuid.New().String()
	synced := event.NewCatalogSynced(syncID, snapshot.Source, snapshot.Checksum,
		snapshot.BankCount, len(snapshot.Products), snapshot.Skipped, now)
	if err := uc.productRepo.ReplaceCatalog(ctx, snapshot.Products, []event.DomainEvent{synced}); err != nil {
		return dto.SyncCatalogResponse{}, fmt.Errorf("replace catalog: %w", err)
	}

	// 3. Drop the cached active list; the next read refills it.
	if uc.cache != nil {
		if err := uc.cache.Invalidate(ctx); err != nil {
			uc.logger.WarnContext(ctx, "product cache invalidation failed", "error", err)
		}
	}

	uc.logger.InfoContext(ctx, "catalog synced",
		"sync_id", syncID,
		"trigger", req.Trigger,
		"source", snapshot.Source,
		"banks", snapshot.BankCount,
		"products", len(snapshot.Products),
		"skipped", snapshot.Skipped,
	)

	return dto.SyncCatalogResponse{
		SyncID:       syncID,
		Source:       snapshot.Source,
		Checksum:     snapshot.Checksum,
		BankCount:    snapshot.BankCount,
		ProductCount: len(snapshot.Products),
		Skipped:      snapshot.Skipped,
		SyncedAt:     now,
	}, nil
}
