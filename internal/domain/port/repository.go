package port

import (
	"context"
	"errors"
	"time"

	"github.com/bibbank/mortgage-advisor/internal/domain/event"
	"github.com/bibbank/mortgage-advisor/internal/domain/model"
)

// Sentinel errors returned by repository adapters.
var (
	ErrApplicationNotFound    = errors.New("application not found")
	ErrRecommendationNotFound = errors.New("recommendation run not found")
	ErrProductNotFound        = errors.New("product not found")
)

// ---------------------------------------------------------------------------
// Repository ports (driven/secondary adapters)
// ---------------------------------------------------------------------------

// ApplicationRepository persists borrower applications. Save also stores the
// aggregate's pending events in the outbox within the same transaction.
type ApplicationRepository interface {
	Save(ctx context.Context, app *model.Application) error
	FindByID(ctx context.Context, id string) (*model.Application, error)
}

// ProductRepository reads and replaces the product catalog.
type ProductRepository interface {
	List(ctx context.Context, includeInactive bool) ([]model.ProductCandidate, error)
	FindByID(ctx context.Context, id string) (model.ProductCandidate, error)
	// ReplaceCatalog upserts products, deactivates the ones missing from the
	// list and stores evts in the outbox, atomically.
	ReplaceCatalog(ctx context.Context, products []model.ProductCandidate, evts []event.DomainEvent) error
}

// RecommendationRunRepository persists recommendation audit records.
type RecommendationRunRepository interface {
	Save(ctx context.Context, run *model.RecommendationRun) error
	FindByID(ctx context.Context, id string) (*model.RecommendationRun, error)
}

// ---------------------------------------------------------------------------
// Catalog ports
// ---------------------------------------------------------------------------

// ProductCache caches the active catalog. A miss returns ok=false.
type ProductCache interface {
	GetActive(ctx context.Context) (products []model.ProductCandidate, ok bool, err error)
	SetActive(ctx context.Context, products []model.ProductCandidate) error
	Invalidate(ctx context.Context) error
}

// CatalogSnapshot is a parsed catalog file.
type CatalogSnapshot struct {
	Source    string
	Checksum  string
	BankCount int
	Products  []model.ProductCandidate
	// Skipped counts product entries dropped because they failed validation.
	Skipped int
}

// CatalogSource loads the authoritative product catalog.
type CatalogSource interface {
	Load(ctx context.Context) (CatalogSnapshot, error)
}

// ---------------------------------------------------------------------------
// Clock
// ---------------------------------------------------------------------------

// Clock supplies the current time so runs can be replayed deterministically.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall clock.
type SystemClock struct{}

// Now returns time.Now in UTC.
func (SystemClock) Now() time.Time { return time.Now().UTC() }
