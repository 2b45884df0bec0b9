package grpc

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
	"github.com/bibbank/mortgage-advisor/internal/application/usecase"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
)

// fakeUseCase records the last request and replies with resp or err.
type fakeUseCase[Req, Resp any] struct {
	last  Req
	calls int
	resp  Resp
	err   error
}

func (f *fakeUseCase[Req, Resp]) Execute(_ context.Context, req Req) (Resp, error) {
	f.last = req
	f.calls++
	return f.resp, f.err
}

type fakeUseCases struct {
	submit   *fakeUseCase[dto.SubmitApplicationRequest, dto.ApplicationResponse]
	getApp   *fakeUseCase[dto.GetApplicationRequest, dto.ApplicationResponse]
	generate *fakeUseCase[dto.GenerateRecommendationsRequest, dto.RecommendationResponse]
	getRec   *fakeUseCase[dto.GetRecommendationRequest, dto.RecommendationResponse]
	list     *fakeUseCase[dto.ListProductsRequest, dto.ListProductsResponse]
	simulate *fakeUseCase[dto.SimulateScheduleRequest, dto.SimulateScheduleResponse]
	sync     *fakeUseCase[dto.SyncCatalogRequest, dto.SyncCatalogResponse]
}

func newFakeUseCases() *fakeUseCases {
	return &fakeUseCases{
		submit:   &fakeUseCase[dto.SubmitApplicationRequest, dto.ApplicationResponse]{resp: dto.ApplicationResponse{ID: "app-1"}},
		getApp:   &fakeUseCase[dto.GetApplicationRequest, dto.ApplicationResponse]{resp: dto.ApplicationResponse{ID: "app-1"}},
		generate: &fakeUseCase[dto.GenerateRecommendationsRequest, dto.RecommendationResponse]{resp: dto.RecommendationResponse{ID: "run-1"}},
		getRec:   &fakeUseCase[dto.GetRecommendationRequest, dto.RecommendationResponse]{resp: dto.RecommendationResponse{ID: "run-1"}},
		list:     &fakeUseCase[dto.ListProductsRequest, dto.ListProductsResponse]{},
		simulate: &fakeUseCase[dto.SimulateScheduleRequest, dto.SimulateScheduleResponse]{},
		sync:     &fakeUseCase[dto.SyncCatalogRequest, dto.SyncCatalogResponse]{resp: dto.SyncCatalogResponse{SyncID: "sync-1"}},
	}
}

func (f *fakeUseCases) wire() UseCases {
	return UseCases{
		SubmitApplication:       f.submit,
		GetApplication:          f.getApp,
		GenerateRecommendations: f.generate,
		GetRecommendation:       f.getRec,
		ListProducts:            f.list,
		SimulateSchedule:        f.simulate,
		SyncCatalog:             f.sync,
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestAdvisorHandler_PassesRequestsThrough(t *testing.T) {
	fakes := newFakeUseCases()
	h := NewAdvisorHandler(fakes.wire(), discardLogger())
	ctx := context.Background()

	app, err := h.SubmitApplication(ctx, &dto.SubmitApplicationRequest{Purpose: "HOME_PURCHASE", LoanAmount: decimal.NewFromInt(1e9)})
	require.NoError(t, err)
	assert.Equal(t, "app-1", app.ID)
	assert.Equal(t, "HOME_PURCHASE", fakes.submit.last.Purpose)

	_, err = h.GetApplication(ctx, &dto.GetApplicationRequest{ApplicationID: "app-1"})
	require.NoError(t, err)
	assert.Equal(t, "app-1", fakes.getApp.last.ApplicationID)

	run, err := h.GenerateRecommendations(ctx, &dto.GenerateRecommendationsRequest{ApplicationID: "app-1"})
	require.NoError(t, err)
	assert.Equal(t, "run-1", run.ID)

	_, err = h.GetRecommendation(ctx, &dto.GetRecommendationRequest{RecommendationID: "run-1"})
	require.NoError(t, err)
	assert.Equal(t, "run-1", fakes.getRec.last.RecommendationID)

	_, err = h.ListProducts(ctx, &dto.ListProductsRequest{IncludeInactive: true})
	require.NoError(t, err)
	assert.True(t, fakes.list.last.IncludeInactive)

	_, err = h.SimulateSchedule(ctx, &dto.SimulateScheduleRequest{ProductID: "p", TenorMonths: 12})
	require.NoError(t, err)
	assert.Equal(t, 12, fakes.simulate.last.TenorMonths)

	synced, err := h.SyncCatalog(ctx, &dto.SyncCatalogRequest{})
	require.NoError(t, err)
	assert.Equal(t, "sync-1", synced.SyncID)
	assert.Equal(t, "api", fakes.sync.last.Trigger)
}

func TestAdvisorHandler_ErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code codes.Code
	}{
		{"invalid input", fmt.Errorf("parse profile: %w: bad purpose", usecase.ErrInvalidInput), codes.InvalidArgument},
		{"application not found", fmt.Errorf("find application: %w", port.ErrApplicationNotFound), codes.NotFound},
		{"run not found", port.ErrRecommendationNotFound, codes.NotFound},
		{"product not found", fmt.Errorf("find product: %w", port.ErrProductNotFound), codes.NotFound},
		{"empty catalog", fmt.Errorf("%w: catalog.yaml", usecase.ErrEmptyCatalog), codes.FailedPrecondition},
		{"canceled", fmt.Errorf("load catalog: %w", context.Canceled), codes.Canceled},
		{"deadline", context.DeadlineExceeded, codes.DeadlineExceeded},
		{"anything else", errors.New("connection reset"), codes.Internal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fakes := newFakeUseCases()
			fakes.getApp.err = tt.err
			h := NewAdvisorHandler(fakes.wire(), discardLogger())

			_, err := h.GetApplication(context.Background(), &dto.GetApplicationRequest{ApplicationID: "x"})
			require.Error(t, err)
			assert.Equal(t, tt.code, status.Code(err))
			if tt.code == codes.Internal {
				assert.NotContains(t, err.Error(), "connection reset")
			}
		})
	}
}

func TestAdvisorHandler_NilRequestAndMissingUseCase(t *testing.T) {
	h := NewAdvisorHandler(newFakeUseCases().wire(), discardLogger())
	_, err := h.GetApplication(context.Background(), nil)
	assert.Equal(t, codes.InvalidArgument, status.Code(err))

	bare := NewAdvisorHandler(UseCases{}, discardLogger())
	_, err = bare.ListProducts(context.Background(), &dto.ListProductsRequest{})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}
