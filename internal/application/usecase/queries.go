package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	"github.com/bibbank/mortgage-advisor/internal/domain/service"
)

// GetApplicationUseCase retrieves an application by ID.
type GetApplicationUseCase struct {
	appRepo    port.ApplicationRepository
	calculator *service.MetricsCalculator
}

// NewGetApplicationUseCase wires dependencies.
func NewGetApplicationUseCase(appRepo port.ApplicationRepository, calculator *service.MetricsCalculator) *GetApplicationUseCase {
	return &GetApplicationUseCase{appRepo: appRepo, calculator: calculator}
}

// Execute returns the application with freshly derived metrics.
func (uc *GetApplicationUseCase) Execute(
	ctx context.Context,
	req dto.GetApplicationRequest,
) (dto.ApplicationResponse, error) {
	if req.ApplicationID == "" {
		return dto.ApplicationResponse{}, fmt.Errorf("%w: application ID is required", ErrInvalidInput)
	}
	app, err := uc.appRepo.FindByID(ctx, req.ApplicationID)
	if err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("find application: %w", err)
	}
	return toApplicationResponse(app, uc.calculator.Calculate(app.Profile())), nil
}

// GetRecommendationUseCase retrieves a stored recommendation run.
type GetRecommendationUseCase struct {
	runRepo port.RecommendationRunRepository
}

// NewGetRecommendationUseCase wires dependencies.
func NewGetRecommendationUseCase(runRepo port.RecommendationRunRepository) *GetRecommendationUseCase {
	return &GetRecommendationUseCase{runRepo: runRepo}
}

// Execute returns the run exactly as it was produced.
func (uc *GetRecommendationUseCase) Execute(
	ctx context.Context,
	req dto.GetRecommendationRequest,
) (dto.RecommendationResponse, error) {
	if req.RecommendationID == "" {
		return dto.RecommendationResponse{}, fmt.Errorf("%w: recommendation ID is required", ErrInvalidInput)
	}
	run, err := uc.runRepo.FindByID(ctx, req.RecommendationID)
	if err != nil {
		return dto.RecommendationResponse{}, fmt.Errorf("find recommendation run: %w", err)
	}
	return toRecommendationResponse(run), nil
}

// ListProductsUseCase lists the product catalog.
type ListProductsUseCase struct {
	productRepo port.ProductRepository
	catalog     activeCatalog
}

// NewListProductsUseCase wires dependencies. cache may be nil.
func NewListProductsUseCase(productRepo port.ProductRepository, cache port.ProductCache, logger *slog.Logger) *ListProductsUseCase {
	return &ListProductsUseCase{
		productRepo: productRepo,
		catalog:     activeCatalog{repo: productRepo, cache: cache, logger: logger},
	}
}

// Execute lists active products from the cache, or every product from
// storage when inactive ones are requested.
func (uc *ListProductsUseCase) Execute(
	ctx context.Context,
	req dto.ListProductsRequest,
) (dto.ListProductsResponse, error) {
	var (
		products []model.ProductCandidate
		err      error
	)
	if req.IncludeInactive {
		products, err = uc.productRepo.List(ctx, true)
	} else {
		products, err = uc.catalog.load(ctx)
	}
	if err != nil {
		return dto.ListProductsResponse{}, fmt.Errorf("list products: %w", err)
	}

	resp := dto.ListProductsResponse{
		Products: make([]dto.ProductResponse, 0, len(products)),
		Count:    len(products),
	}
	for _, p := range products {
		resp.Products = append(resp.Products, toProductResponse(p))
	}
	return resp, nil
}
