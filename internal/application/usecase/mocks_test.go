package usecase_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
	"github.com/bibbank/mortgage-advisor/internal/domain/event"
	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
	"github.com/bibbank/mortgage-advisor/pkg/events"
)

// --- Mock implementations ---

type mockApplicationRepository struct {
	saveFunc     func(ctx context.Context, app *model.Application) error
	findByIDFunc func(ctx context.Context, id string) (*model.Application, error)
	savedApps    []*model.Application
	savedEvents  []event.DomainEvent
}

func (m *mockApplicationRepository) Save(ctx context.Context, app *model.Application) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, app)
	}
	m.savedApps = append(m.savedApps, app)
	m.savedEvents = append(m.savedEvents, app.Events()...)
	return nil
}

func (m *mockApplicationRepository) FindByID(ctx context.Context, id string) (*model.Application, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	for _, app := range m.savedApps {
		if app.ID() == id {
			return app, nil
		}
	}
	return nil, port.ErrApplicationNotFound
}

type mockProductRepository struct {
	products       []model.ProductCandidate
	listErr        error
	listCalls      int
	replaceFunc    func(ctx context.Context, products []model.ProductCandidate, evts []event.DomainEvent) error
	replaced       []model.ProductCandidate
	replacedEvents []event.DomainEvent
}

func (m *mockProductRepository) List(_ context.Context, includeInactive bool) ([]model.ProductCandidate, error) {
	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}
	var out []model.ProductCandidate
	for _, p := range m.products {
		if p.Active || includeInactive {
			out = append(out, p)
		}
	}
	return out, nil
}

func (m *mockProductRepository) FindByID(_ context.Context, id string) (model.ProductCandidate, error) {
	for _, p := range m.products {
		if p.ID == id {
			return p, nil
		}
	}
	return model.ProductCandidate{}, port.ErrProductNotFound
}

func (m *mockProductRepository) ReplaceCatalog(ctx context.Context, products []model.ProductCandidate, evts []event.DomainEvent) error {
	if m.replaceFunc != nil {
		return m.replaceFunc(ctx, products, evts)
	}
	m.replaced = products
	m.replacedEvents = append(m.replacedEvents, evts...)
	return nil
}

type mockRunRepository struct {
	saveFunc  func(ctx context.Context, run *model.RecommendationRun) error
	savedRuns []*model.RecommendationRun
}

func (m *mockRunRepository) Save(ctx context.Context, run *model.RecommendationRun) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, run)
	}
	m.savedRuns = append(m.savedRuns, run)
	return nil
}

func (m *mockRunRepository) FindByID(_ context.Context, id string) (*model.RecommendationRun, error) {
	for _, run := range m.savedRuns {
		if run.ID() == id {
			return run, nil
		}
	}
	return nil, port.ErrRecommendationNotFound
}

type mockProductCache struct {
	products    []model.ProductCandidate
	hit         bool
	getErr      error
	setCalls    int
	invalidated int
}

func (m *mockProductCache) GetActive(_ context.Context) ([]model.ProductCandidate, bool, error) {
	if m.getErr != nil {
		return nil, false, m.getErr
	}
	return m.products, m.hit, nil
}

func (m *mockProductCache) SetActive(_ context.Context, products []model.ProductCandidate) error {
	m.setCalls++
	m.products = products
	m.hit = true
	return nil
}

func (m *mockProductCache) Invalidate(_ context.Context) error {
	m.invalidated++
	m.products = nil
	m.hit = false
	return nil
}

type mockCatalogSource struct {
	loadFunc func(ctx context.Context) (port.CatalogSnapshot, error)
}

func (m *mockCatalogSource) Load(ctx context.Context) (port.CatalogSnapshot, error) {
	return m.loadFunc(ctx)
}

type mockOutbox struct {
	entries  []events.OutboxEntry
	fetchErr error
	markErr  error
	marked   []string
}

func (m *mockOutbox) FetchUnpublished(_ context.Context, batchSize int) ([]events.OutboxEntry, error) {
	if m.fetchErr != nil {
		return nil, m.fetchErr
	}
	if len(m.entries) > batchSize {
		return m.entries[:batchSize], nil
	}
	return m.entries, nil
}

func (m *mockOutbox) MarkPublished(_ context.Context, ids []string) error {
	if m.markErr != nil {
		return m.markErr
	}
	m.marked = append(m.marked, ids...)
	return nil
}

type mockEntryPublisher struct {
	publishFunc func(ctx context.Context, entries []events.OutboxEntry) error
	published   []events.OutboxEntry
}

func (m *mockEntryPublisher) PublishEntries(ctx context.Context, entries []events.OutboxEntry) error {
	if m.publishFunc != nil {
		return m.publishFunc(ctx, entries)
	}
	m.published = append(m.published, entries...)
	return nil
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

// --- Fixtures ---

var testNow = time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func validSubmitRequest() dto.SubmitApplicationRequest {
	return dto.SubmitApplicationRequest{
		Purpose:                "HOME_PURCHASE",
		LoanAmount:             d("1000000000"),
		TenorMonths:            240,
		IncomeType:             "SALARY",
		MonthlyIncome:          d("50000000"),
		EstimatedPropertyValue: d("2000000000"),
		GeoLocation:            "HN",
	}
}

func testProduct(id, fixedRatePct string) model.ProductCandidate {
	return model.ProductCandidate{
		ID:            id,
		Bank:          model.Bank{ID: "vcb", Name: "Vietcombank", ShortName: "VCB"},
		Name:          "Home loan " + id,
		Purpose:       valueobject.LoanPurposeHomePurchase,
		MinLoanAmount: d("100000000"),
		MaxLoanAmount: d("10000000000"),
		MaxLTVPct:     d("70"),
		MinTermMonths: 12,
		MaxTermMonths: 300,
		PromoOptions:  []model.PromoOption{{FixedRatePct: d(fixedRatePct), FixedMonths: 12}},
		Floating: model.FloatingTerms{
			MarginPct:        d("3.5"),
			ReferenceRatePct: d("5"),
		},
		Fees:            model.FeeStructure{OriginationPct: d("0.5")},
		SLADaysEstimate: 14,
		Active:          true,
		UpdatedAt:       testNow.Add(-24 * time.Hour),
	}
}
