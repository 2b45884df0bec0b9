package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
)

// activeCatalog reads the active products cache-aside: Redis first, then
// Postgres, refilling the cache on a miss. Cache failures are logged and
// never fail the read.
type activeCatalog struct {
	repo   port.ProductRepository
	cache  port.ProductCache
	logger *slog.Logger
}

func (c activeCatalog) load(ctx context.Context) ([]model.ProductCandidate, error) {
	if c.cache != nil {
		products, ok, err := c.cache.GetActive(ctx)
		switch {
		case err != nil:
			c.logger.WarnContext(ctx, "product cache read failed", "error", err)
		case ok:
			return products, nil
		}
	}

	products, err := c.repo.List(ctx, false)
	if err != nil {
		return nil, fmt.Errorf("list active products: %w", err)
	}

	if c.cache != nil {
		if err := c.cache.SetActive(ctx, products); err != nil {
			c.logger.WarnContext(ctx, "product cache write failed", "error", err)
		}
	}
	return products, nil
}
