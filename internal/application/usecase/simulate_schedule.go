package usecase

import (
	"context"
	"fmt"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	"github.com/bibbank/mortgage-advisor/internal/domain/service"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

// SimulateScheduleUseCase prices one product for an ad-hoc loan.
type SimulateScheduleUseCase struct {
	productRepo port.ProductRepository
	stress      *service.StressRunner
}

// NewSimulateScheduleUseCase wires dependencies.
func NewSimulateScheduleUseCase(productRepo port.ProductRepository, stress *service.StressRunner) *SimulateScheduleUseCase {
	return &SimulateScheduleUseCase{productRepo: productRepo, stress: stress}
}

// Execute returns the schedule at the requested stress level together with
// the summaries of every level.
func (uc *SimulateScheduleUseCase) Execute(
	ctx context.Context,
	req dto.SimulateScheduleRequest,
) (dto.SimulateScheduleResponse, error) {
	// 1. Validate the request.
	if req.ProductID == "" {
		return dto.SimulateScheduleResponse{}, fmt.Errorf("%w: product ID is required", ErrInvalidInput)
	}
	if !req.Principal.IsPositive() {
		return dto.SimulateScheduleResponse{}, fmt.Errorf("%w: principal must be positive", ErrInvalidInput)
	}
	if req.TenorMonths <= 0 {
		return dto.SimulateScheduleResponse{}, fmt.Errorf("%w: tenor months must be positive", ErrInvalidInput)
	}
	if req.PrepaymentMonth < 0 || req.PrepaymentAmount.IsNegative() {
		return dto.SimulateScheduleResponse{}, fmt.Errorf("%w: prepayment must not be negative", ErrInvalidInput)
	}
	level := valueobject.StressBase
	if req.StressLevel != "" {
		var err error
		if level, err = valueobject.NewStressLevel(req.StressLevel); err != nil {
			return dto.SimulateScheduleResponse{}, fmt.Errorf("%w: %w", ErrInvalidInput, err)
		}
	}

	// 2. Load the product.
	product, err := uc.productRepo.FindByID(ctx, req.ProductID)
	if err != nil {
		return dto.SimulateScheduleResponse{}, fmt.Errorf("find product: %w", err)
	}
	if err := product.Validate(); err != nil {
		return dto.SimulateScheduleResponse{}, fmt.Errorf("validate product: %w", err)
	}

	// 3. Simulate.
	in := service.StressInput{
		Principal:            req.Principal,
		TenorMonths:          req.TenorMonths,
		Rates:                product.RateStructure(),
		Fees:                 product.Fees,
		Method:               product.RepaymentMethod,
		GracePrincipalMonths: product.GracePrincipalMonths,
		PropertyValue:        req.PropertyValue,
	}
	if req.PrepaymentMonth > 0 {
		in.Prepayment = &model.PrepaymentInfo{Month: req.PrepaymentMonth, Amount: req.PrepaymentAmount}
	}
	scenarios := uc.stress.Run(in)

	params := in.ScheduleParams(level)
	params.StartDate = req.StartDate
	sched := model.GenerateAmortizationSchedule(params)

	return dto.SimulateScheduleResponse{
		ProductID:      product.ID,
		TenorMonths:    req.TenorMonths,
		StressLevel:    level.String(),
		Rates:          toRatesResponse(in.Rates),
		Schedule:       toScheduleResponse(sched.Payments),
		UpfrontFees:    sched.UpfrontFees,
		TotalInterest:  sched.TotalInterest,
		TotalPrincipal: sched.TotalPrincipal,
		TotalPayments:  sched.TotalPayments,
		TotalFees:      sched.TotalFees,
		TotalInsurance: sched.TotalInsurance,
		APR:            service.ScheduleAPR(req.Principal, sched),
		Scenarios:      toScenarioResponses(scenarios),
		ExitAtPromoEnd: toExitCostResponse(service.ExitAtPromoEnd(in)),
	}, nil
}
