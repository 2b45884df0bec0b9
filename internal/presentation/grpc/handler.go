package grpc

import (
	"context"
	"errors"
	"log/slog"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
	"github.com/bibbank/mortgage-advisor/internal/application/usecase"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
)

// UseCase is the shape shared by every request/response use case.
type UseCase[Req, Resp any] interface {
	Execute(ctx context.Context, req Req) (Resp, error)
}

// UseCases groups the operations exposed over gRPC.
type UseCases struct {
	SubmitApplication       UseCase[dto.SubmitApplicationRequest, dto.ApplicationResponse]
	GetApplication          UseCase[dto.GetApplicationRequest, dto.ApplicationResponse]
	GenerateRecommendations UseCase[dto.GenerateRecommendationsRequest, dto.RecommendationResponse]
	GetRecommendation       UseCase[dto.GetRecommendationRequest, dto.RecommendationResponse]
	ListProducts            UseCase[dto.ListProductsRequest, dto.ListProductsResponse]
	SimulateSchedule        UseCase[dto.SimulateScheduleRequest, dto.SimulateScheduleResponse]
	SyncCatalog             UseCase[dto.SyncCatalogRequest, dto.SyncCatalogResponse]
}

// Compile-time assertion that AdvisorHandler implements AdvisorServiceServer.
var _ AdvisorServiceServer = (*AdvisorHandler)(nil)

// AdvisorHandler implements AdvisorServiceServer on top of the use cases.
type AdvisorHandler struct {
	UnimplementedAdvisorServiceServer
	uc     UseCases
	logger *slog.Logger
}

func NewAdvisorHandler(uc UseCases, logger *slog.Logger) *AdvisorHandler {
	return &AdvisorHandler{uc: uc, logger: logger}
}

func (h *AdvisorHandler) SubmitApplication(ctx context.Context, req *dto.SubmitApplicationRequest) (*dto.ApplicationResponse, error) {
	return call(ctx, h, "SubmitApplication", h.uc.SubmitApplication, req)
}

func (h *AdvisorHandler) GetApplication(ctx context.Context, req *dto.GetApplicationRequest) (*dto.ApplicationResponse, error) {
	return call(ctx, h, "GetApplication", h.uc.GetApplication, req)
}

func (h *AdvisorHandler) GenerateRecommendations(ctx context.Context, req *dto.GenerateRecommendationsRequest) (*dto.RecommendationResponse, error) {
	return call(ctx, h, "GenerateRecommendations", h.uc.GenerateRecommendations, req)
}

func (h *AdvisorHandler) GetRecommendation(ctx context.Context, req *dto.GetRecommendationRequest) (*dto.RecommendationResponse, error) {
	return call(ctx, h, "GetRecommendation", h.uc.GetRecommendation, req)
}

func (h *AdvisorHandler) ListProducts(ctx context.Context, req *dto.ListProductsRequest) (*dto.ListProductsResponse, error) {
	return call(ctx, h, "ListProducts", h.uc.ListProducts, req)
}

func (h *AdvisorHandler) SimulateSchedule(ctx context.Context, req *dto.SimulateScheduleRequest) (*dto.SimulateScheduleResponse, error) {
	return call(ctx, h, "SimulateSchedule", h.uc.SimulateSchedule, req)
}

// SyncCatalog reloads the catalog on demand. The interceptor restricts it to
// admins.
func (h *AdvisorHandler) SyncCatalog(ctx context.Context, req *dto.SyncCatalogRequest) (*dto.SyncCatalogResponse, error) {
	if req != nil && req.Trigger == "" {
		req.Trigger = "api"
	}
	return call(ctx, h, "SyncCatalog", h.uc.SyncCatalog, req)
}

func call[Req, Resp any](
	ctx context.Context,
	h *AdvisorHandler,
	method string,
	uc UseCase[Req, Resp],
	req *Req,
) (*Resp, error) {
	if uc == nil {
		return nil, status.Errorf(codes.Unimplemented, "method %s not configured", method)
	}
	if req == nil {
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	resp, err := uc.Execute(ctx, *req)
	if err != nil {
		return nil, h.toStatus(ctx, method, err)
	}
	return &resp, nil
}

// toStatus maps use-case errors onto gRPC codes. Internal failures are logged
// and returned without detail.
func (h *AdvisorHandler) toStatus(ctx context.Context, method string, err error) error {
	switch {
	case errors.Is(err, usecase.ErrInvalidInput):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, port.ErrApplicationNotFound),
		errors.Is(err, port.ErrRecommendationNotFound),
		errors.Is(err, port.ErrProductNotFound):
		return status.Error(codes.NotFound, err.Error())
	case errors.Is(err, usecase.ErrEmptyCatalog):
		return status.Error(codes.FailedPrecondition, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, "request canceled")
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, "deadline exceeded")
	}
	h.logger.ErrorContext(ctx, "request failed", "method", method, "error", err)
	return status.Error(codes.Internal, "internal error")
}
