package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/port"
	"github.com/bibbank/mortgage-advisor/internal/domain/service"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

// SubmitApplicationUseCase validates and stores a borrower profile.
type SubmitApplicationUseCase struct {
	appRepo    port.ApplicationRepository
	calculator *service.MetricsCalculator
	clock      port.Clock
	logger     *slog.Logger
}

// NewSubmitApplicationUseCase wires dependencies.
func NewSubmitApplicationUseCase(
	appRepo port.ApplicationRepository,
	calculator *service.MetricsCalculator,
	clock port.Clock,
	logger *slog.Logger,
) *SubmitApplicationUseCase {
	return &SubmitApplicationUseCase{
		appRepo:    appRepo,
		calculator: calculator,
		clock:      clock,
		logger:     logger,
	}
}

// Execute stores the application and returns it with its derived metrics.
func (uc *SubmitApplicationUseCase) Execute(
	ctx context.Context,
	req dto.SubmitApplicationRequest,
) (dto.ApplicationResponse, error) {
	// 1. Parse the request into a domain profile. Unknown optional enums are
	// dropped; only the purpose is strict.
	profile, ignored, err := toProfile(req)
	if err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("parse profile: %w: %w", ErrInvalidInput, err)
	}
	for _, f := range ignored {
		uc.logger.WarnContext(ctx, "ignoring unknown application value", "field", f.field, "value", f.value)
	}

	// 2. Create the aggregate (raises ApplicationSubmitted).
	app, err := model.NewApplication(profile, uc.clock.Now())
	if err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("create application: %w: %w", ErrInvalidInput, err)
	}

	// 3. Persist; the repository writes the pending events to the outbox.
	if err := uc.appRepo.Save(ctx, app); err != nil {
		return dto.ApplicationResponse{}, fmt.Errorf("save application: %w", err)
	}
	app.ClearEvents()

	uc.logger.InfoContext(ctx, "application submitted",
		"application_id", app.ID(),
		"purpose", profile.Purpose.String(),
		"loan_amount", profile.LoanAmount.String(),
	)

	return toApplicationResponse(app, uc.calculator.Calculate(profile)), nil
}

// ignoredField is an optional enum value that did not parse.
type ignoredField struct {
	field string
	value string
}

// profileParser collects the optional values it had to drop.
type profileParser struct {
	ignored []ignoredField
}

func lenient[T any](pp *profileParser, field, raw string, parse func(string) (T, error)) T {
	var zero T
	if raw == "" {
		return zero
	}
	v, err := parse(raw)
	if err != nil {
		pp.ignored = append(pp.ignored, ignoredField{field: field, value: raw})
		return zero
	}
	return v
}

// toProfile parses the string enums of a request. An empty or unrecognized
// optional enum stays at its zero value so the checks that use it are skipped.
func toProfile(req dto.SubmitApplicationRequest) (model.ApplicationProfile, []ignoredField, error) {
	purpose, err := valueobject.NewLoanPurpose(req.Purpose)
	if err != nil {
		return model.ApplicationProfile{}, nil, err
	}

	pp := &profileParser{}
	p := model.ApplicationProfile{
		Purpose:                  purpose,
		LoanAmount:               req.LoanAmount,
		TenorMonths:              req.TenorMonths,
		RepaymentStrategy:        lenient(pp, "repayment_strategy", req.RepaymentStrategy, valueobject.NewRepaymentStrategy),
		PlannedHoldMonths:        req.PlannedHoldMonths,
		ExpectedPrepaymentMonth:  req.ExpectedPrepaymentMonth,
		ExpectedPrepaymentAmount: req.ExpectedPrepaymentAmount,
		NeedDisbursementBy:       req.NeedDisbursementBy,
		GeoLocation:              req.GeoLocation,
		IncomeType:               lenient(pp, "income_type", req.IncomeType, valueobject.NewIncomeType),
		MonthlyIncome:            req.MonthlyIncome,
		ProofStrength:            lenient(pp, "proof_strength", req.ProofStrength, valueobject.NewProofStrength),
		ExistingDebtsMonthly:     req.ExistingDebtsMonthly,
		EstimatedPropertyValue:   req.EstimatedPropertyValue,
		LegalStatus:              lenient(pp, "legal_status", req.LegalStatus, valueobject.NewLegalStatus),
		CreditFlags: model.CreditFlags{
			HasLatePayments: req.HasLatePayments,
			HasBadDebt:      req.HasBadDebt,
		},
		Preferences:  model.Preferences{CostVsStabilityPriority: req.CostVsStabilityPriority},
		StuckReasons: req.StuckReasons,
	}

	for _, in := range req.Incomes {
		p.Incomes = append(p.Incomes, model.IncomeSource{
			Type:          lenient(pp, "incomes.type", in.Type, valueobject.NewIncomeType),
			MonthlyAmount: in.MonthlyAmount,
			ProofStrength: lenient(pp, "incomes.proof_strength", in.ProofStrength, valueobject.NewProofStrength),
		})
	}
	for _, d := range req.Debts {
		p.Debts = append(p.Debts, model.Debt{
			Kind:           d.Kind,
			MonthlyPayment: d.MonthlyPayment,
			Outstanding:    d.Outstanding,
		})
	}
	for _, c := range req.Collaterals {
		p.Collaterals = append(p.Collaterals, model.Collateral{
			Type:           lenient(pp, "collaterals.type", c.Type, valueobject.NewCollateralType),
			EstimatedValue: c.EstimatedValue,
			Province:       c.Province,
			LegalStatus:    lenient(pp, "collaterals.legal_status", c.LegalStatus, valueobject.NewLegalStatus),
		})
	}
	return p, pp.ignored, nil
}
