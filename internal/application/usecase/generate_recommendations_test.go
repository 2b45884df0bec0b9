package usecase_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
	"github.com/bibbank/mortgage-advisor/internal/application/usecase"
	"github.com/bibbank/mortgage-advisor/internal/domain/event"
	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	"github.com/bibbank/mortgage-advisor/internal/domain/service"
	"github.com/bibbank/mortgage-advisor/pkg/observability"
)

type recommendFixture struct {
	apps     *mockApplicationRepository
	products *mockProductRepository
	cache    *mockProductCache
	runs     *mockRunRepository
	appID    string
}

func newRecommendFixture(t *testing.T) *recommendFixture {
	t.Helper()
	f := &recommendFixture{
		apps: &mockApplicationRepository{},
		products: &mockProductRepository{products: []model.ProductCandidate{
			testProduct("p-cheap", "6.5"),
			testProduct("p-mid", "7.5"),
			testProduct("p-dear", "9.0"),
		}},
		cache: &mockProductCache{},
		runs:  &mockRunRepository{},
	}
	resp, err := newSubmitUseCase(f.apps).Execute(context.Background(), validSubmitRequest())
	require.NoError(t, err)
	f.appID = resp.ID
	return f
}

func (f *recommendFixture) useCase(metrics *observability.AdvisorMetrics) *usecase.GenerateRecommendationsUseCase {
	return usecase.NewGenerateRecommendationsUseCase(
		f.apps, f.products, f.cache, f.runs,
		service.NewMetricsCalculator(),
		service.NewRecommendationEngine(5, 2),
		fixedClock{testNow},
		metrics,
		discardLogger(),
	)
}

func TestGenerateRecommendations_Execute(t *testing.T) {
	t.Run("ranks the active catalog and stores the run", func(t *testing.T) {
		f := newRecommendFixture(t)
		inactive := testProduct("p-retired", "5.0")
		inactive.Active = false
		f.products.products = append(f.products.products, inactive)

		resp, err := f.useCase(nil).Execute(context.Background(), dto.GenerateRecommendationsRequest{ApplicationID: f.appID})

		require.NoError(t, err)
		assert.Equal(t, f.appID, resp.ApplicationID)
		assert.Equal(t, 3, resp.CandidateCount)
		require.Len(t, resp.Recommendations, 3)
		assert.Equal(t, "p-cheap", resp.Recommendations[0].ProductID)
		for _, r := range resp.Recommendations {
			assert.Len(t, r.Scenarios, 3)
			assert.Equal(t, "+0%", r.Scenarios[0].StressLevel)
			assert.NotEmpty(t, r.WhyFit)
		}
		assert.Empty(t, resp.Rejected)
		assert.Equal(t, testNow, resp.CreatedAt)

		require.Len(t, f.runs.savedRuns, 1)
		assert.Equal(t, resp.ID, f.runs.savedRuns[0].ID())
		assert.Equal(t, 1, f.cache.setCalls, "cache refilled after a miss")
	})

	t.Run("serves the catalog from cache on a hit", func(t *testing.T) {
		f := newRecommendFixture(t)
		f.cache.hit = true
		f.cache.products = []model.ProductCandidate{testProduct("p-cached", "7.0")}

		resp, err := f.useCase(nil).Execute(context.Background(), dto.GenerateRecommendationsRequest{ApplicationID: f.appID})

		require.NoError(t, err)
		require.Len(t, resp.Recommendations, 1)
		assert.Equal(t, "p-cached", resp.Recommendations[0].ProductID)
		assert.Zero(t, f.products.listCalls)
	})

	t.Run("falls back to storage when the cache fails", func(t *testing.T) {
		f := newRecommendFixture(t)
		f.cache.getErr = errors.New("redis down")

		resp, err := f.useCase(nil).Execute(context.Background(), dto.GenerateRecommendationsRequest{ApplicationID: f.appID})

		require.NoError(t, err)
		assert.Len(t, resp.Recommendations, 3)
		assert.Equal(t, 1, f.products.listCalls)
	})

	t.Run("reports rejected products with their primary reason", func(t *testing.T) {
		f := newRecommendFixture(t)
		short := testProduct("p-short", "6.0")
		short.MaxTermMonths = 120
		f.products.products = append(f.products.products, short)

		resp, err := f.useCase(nil).Execute(context.Background(), dto.GenerateRecommendationsRequest{ApplicationID: f.appID})

		require.NoError(t, err)
		require.Len(t, resp.Rejected, 1)
		assert.Equal(t, "p-short", resp.Rejected[0].ProductID)
		assert.Equal(t, "TENOR_TOO_LONG", resp.Rejected[0].ReasonCode)
		assert.NotEmpty(t, resp.Rejected[0].ReasonDetail)
	})

	t.Run("stores a RecommendationGenerated event with the run", func(t *testing.T) {
		f := newRecommendFixture(t)
		var recorded []event.DomainEvent
		f.runs.saveFunc = func(_ context.Context, run *model.RecommendationRun) error {
			recorded = append(recorded, run.Events()...)
			return nil
		}

		_, err := f.useCase(nil).Execute(context.Background(), dto.GenerateRecommendationsRequest{ApplicationID: f.appID})

		require.NoError(t, err)
		require.Len(t, recorded, 1)
		generated, ok := recorded[0].(event.RecommendationGenerated)
		require.True(t, ok)
		assert.Equal(t, f.appID, generated.ApplicationID)
		assert.Equal(t, []string{"p-cheap", "p-mid", "p-dear"}, generated.TopProductIDs)
	})

	t.Run("propagates application not found", func(t *testing.T) {
		f := newRecommendFixture(t)

		_, err := f.useCase(nil).Execute(context.Background(), dto.GenerateRecommendationsRequest{ApplicationID: "missing"})

		assert.ErrorIs(t, err, port.ErrApplicationNotFound)
		assert.Empty(t, f.runs.savedRuns)
	})

	t.Run("fails when the catalog cannot be read", func(t *testing.T) {
		f := newRecommendFixture(t)
		f.products.listErr = fmt.Errorf("database unavailable")

		_, err := f.useCase(nil).Execute(context.Background(), dto.GenerateRecommendationsRequest{ApplicationID: f.appID})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "load catalog")
	})

	t.Run("fails when the run cannot be stored", func(t *testing.T) {
		f := newRecommendFixture(t)
		f.runs.saveFunc = func(_ context.Context, _ *model.RecommendationRun) error {
			return fmt.Errorf("database unavailable")
		}

		_, err := f.useCase(nil).Execute(context.Background(), dto.GenerateRecommendationsRequest{ApplicationID: f.appID})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "save recommendation run")
	})

	t.Run("records run metrics", func(t *testing.T) {
		f := newRecommendFixture(t)
		reader := sdkmetric.NewManualReader()
		provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
		metrics, err := observability.NewAdvisorMetrics(provider, "advisor-test")
		require.NoError(t, err)

		_, err = f.useCase(metrics).Execute(context.Background(), dto.GenerateRecommendationsRequest{ApplicationID: f.appID})
		require.NoError(t, err)

		var rm metricdata.ResourceMetrics
		require.NoError(t, reader.Collect(context.Background(), &rm))
		found := false
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name == "advisor.recommendation.runs" {
					found = true
				}
			}
		}
		assert.True(t, found)
	})
}

func TestGetRecommendation_Execute(t *testing.T) {
	f := newRecommendFixture(t)
	generated, err := f.useCase(nil).Execute(context.Background(), dto.GenerateRecommendationsRequest{ApplicationID: f.appID})
	require.NoError(t, err)

	uc := usecase.NewGetRecommendationUseCase(f.runs)

	t.Run("returns the stored run", func(t *testing.T) {
		resp, err := uc.Execute(context.Background(), dto.GetRecommendationRequest{RecommendationID: generated.ID})
		require.NoError(t, err)
		assert.Equal(t, generated, resp)
	})

	t.Run("propagates not found", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.GetRecommendationRequest{RecommendationID: "missing"})
		assert.ErrorIs(t, err, port.ErrRecommendationNotFound)
	})

	t.Run("requires an ID", func(t *testing.T) {
		_, err := uc.Execute(context.Background(), dto.GetRecommendationRequest{})
		assert.ErrorIs(t, err, usecase.ErrInvalidInput)
	})
}
