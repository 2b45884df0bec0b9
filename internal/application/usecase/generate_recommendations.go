package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	"github.com/bibbank/mortgage-advisor/internal/domain/service"
	"github.com/bibbank/mortgage-advisor/pkg/observability"
)

const tracerName = "github.com/bibbank/mortgage-advisor/internal/application/usecase"

// GenerateRecommendationsUseCase ranks the active catalog for a stored
// application and keeps the run as an audit record.
type GenerateRecommendationsUseCase struct {
	appRepo    port.ApplicationRepository
	runRepo    port.RecommendationRunRepository
	catalog    activeCatalog
	calculator *service.MetricsCalculator
	engine     *service.RecommendationEngine
	clock      port.Clock
	metrics    *observability.AdvisorMetrics
	logger     *slog.Logger
}

// NewGenerateRecommendationsUseCase wires dependencies. cache and metrics
// may be nil.
func NewGenerateRecommendationsUseCase(
	appRepo port.ApplicationRepository,
	productRepo port.ProductRepository,
	cache port.ProductCache,
	runRepo port.RecommendationRunRepository,
	calculator *service.MetricsCalculator,
	engine *service.RecommendationEngine,
	clock port.Clock,
	metrics *observability.AdvisorMetrics,
	logger *slog.Logger,
) *GenerateRecommendationsUseCase {
	return &GenerateRecommendationsUseCase{
		appRepo:    appRepo,
		runRepo:    runRepo,
		catalog:    activeCatalog{repo: productRepo, cache: cache, logger: logger},
		calculator: calculator,
		engine:     engine,
		clock:      clock,
		metrics:    metrics,
		logger:     logger,
	}
}

// Execute runs the engine and returns the stored run.
func (uc *GenerateRecommendationsUseCase) Execute(
	ctx context.Context,
	req dto.GenerateRecommendationsRequest,
) (resp dto.RecommendationResponse, err error) {
	ctx, span := otel.Tracer(tracerName).Start(ctx, "GenerateRecommendations")
	span.SetAttributes(attribute.String("application_id", req.ApplicationID))
	started := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		uc.metrics.RecordRecommendationRun(ctx, time.Since(started), status,
			len(resp.Recommendations), len(resp.Rejected), len(resp.Failures))
		span.End()
	}()

	if req.ApplicationID == "" {
		return dto.RecommendationResponse{}, fmt.Errorf("%w: application ID is required", ErrInvalidInput)
	}

	// 1. Load the application.
	app, err := uc.appRepo.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return dto.RecommendationResponse{}, fmt.Errorf("find application: %w", err)
	}
	profile := app.Profile()

	// 2. Derive affordability metrics.
	metrics := uc.calculator.Calculate(profile)

	// 3. Load the active catalog.
	products, err := uc.catalog.load(ctx)
	if err != nil {
		return dto.RecommendationResponse{}, fmt.Errorf("load catalog: %w", err)
	}

	// 4. Rank.
	now := uc.clock.Now()
	outcome, err := uc.engine.Recommend(ctx, service.EngineInput{
		Profile:  profile,
		Metrics:  metrics,
		Products: products,
		Today:    now,
	})
	if err != nil {
		return dto.RecommendationResponse{}, fmt.Errorf("recommend: %w", err)
	}
	for _, f := range outcome.Failures {
		uc.logger.WarnContext(ctx, "candidate evaluation failed",
			"application_id", app.ID(), "product_id", f.ProductID, "error", f.Error)
	}

	// 5. Record the run (raises RecommendationGenerated).
	run, err := model.NewRecommendationRun(app.ID(), profile, metrics, outcome, now)
	if err != nil {
		return dto.RecommendationResponse{}, fmt.Errorf("create recommendation run: %w", err)
	}
	if err := uc.runRepo.Save(ctx, run); err != nil {
		return dto.RecommendationResponse{}, fmt.Errorf("save recommendation run: %w", err)
	}
	run.ClearEvents()

	span.SetAttributes(
		attribute.String("recommendation_id", run.ID()),
		attribute.Int("candidates", outcome.CandidateCount),
		attribute.Int("recommended", len(outcome.Recommendations)),
	)
	uc.logger.InfoContext(ctx, "recommendations generated",
		"application_id", app.ID(),
		"recommendation_id", run.ID(),
		"candidates", outcome.CandidateCount,
		"recommended", len(outcome.Recommendations),
		"rejected", len(outcome.Rejected),
		"failed", len(outcome.Failures),
	)

	return toRecommendationResponse(run), nil
}
