package usecase

import (
	"errors"

	"github.com/bibbank/mortgage-advisor/internal/application/dto"
	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

// ErrInvalidInput marks errors caused by the caller's request.
var ErrInvalidInput = errors.New("invalid input")

// ---------------------------------------------------------------------------
// Domain -> DTO mappers
// ---------------------------------------------------------------------------

func toApplicationResponse(app *model.Application, metrics model.ApplicationMetrics) dto.ApplicationResponse {
	p := app.Profile()
	return dto.ApplicationResponse{
		ID:                      app.ID(),
		Purpose:                 p.Purpose.String(),
		LoanAmount:              p.LoanAmount,
		TenorMonths:             p.TenorMonths,
		RepaymentStrategy:       p.Strategy().String(),
		PlannedHoldMonths:       p.PlannedHoldMonths,
		ExpectedPrepaymentMonth: p.ExpectedPrepaymentMonth,
		GeoLocation:             p.GeoLocation,
		StuckReasons:            p.StuckReasons,
		Metrics:                 toMetricsResponse(metrics),
		Version:                 app.Version(),
		CreatedAt:               app.CreatedAt(),
		UpdatedAt:               app.UpdatedAt(),
	}
}

func toMetricsResponse(m model.ApplicationMetrics) dto.MetricsResponse {
	return dto.MetricsResponse{
		TotalIncome:       m.TotalIncome,
		TotalDebtPayments: m.TotalDebtPayments,
		PropertyValue:     m.PropertyValue,
		DSR:               m.DSR,
		LTV:               m.LTV,
		DTI:               m.DTI,
	}
}

func toScenarioResponses(set model.ScenarioSet) []dto.ScenarioResponse {
	out := make([]dto.ScenarioResponse, 0, len(set))
	for _, level := range valueobject.StressLevels {
		s := set.Get(level)
		out = append(out, dto.ScenarioResponse{
			StressLevel:                 level.String(),
			APR:                         s.APR,
			MonthlyPaymentFirst12M:      s.MonthlyPaymentFirst12M,
			MonthlyPaymentPostPromo:     s.MonthlyPaymentPostPromo,
			TotalInterest:               s.TotalInterest,
			TotalFees:                   s.TotalFees,
			TotalInsurance:              s.TotalInsurance,
			TotalCostExcludingPrincipal: s.TotalCostExcludingPrincipal,
			TotalOutOfPocket:            s.TotalOutOfPocket,
			PrepaymentFee:               s.PrepaymentFee,
		})
	}
	return out
}

func toRatesResponse(r model.RateStructure) dto.RatesResponse {
	return dto.RatesResponse{
		FixedRatePct:      r.FixedRatePct,
		FixedMonths:       r.FixedMonths,
		FloatingMarginPct: r.FloatingMarginPct,
		ReferenceRatePct:  r.ReferenceRatePct,
	}
}

func toExitCostResponse(e *model.ExitCost) *dto.ExitCostResponse {
	if e == nil {
		return nil
	}
	return &dto.ExitCostResponse{
		PrepaymentMonth:    e.PrepaymentMonth,
		RemainingPrincipal: e.RemainingPrincipal,
		InterestPaid:       e.InterestPaid,
		FeesPaid:           e.FeesPaid,
		PrepaymentFee:      e.PrepaymentFee,
		TotalCostToExit:    e.TotalCostToExit,
	}
}

func toRecommendationResponse(run *model.RecommendationRun) dto.RecommendationResponse {
	outcome := run.Outcome()

	recs := make([]dto.RecommendationResultResponse, 0, len(outcome.Recommendations))
	for _, r := range outcome.Recommendations {
		recs = append(recs, dto.RecommendationResultResponse{
			ProductID:      r.ProductID,
			BankName:       r.BankName,
			ProductName:    r.ProductName,
			FitScore:       r.FitScore,
			ApprovalBucket: string(r.ApprovalBucket),
			Scores: dto.ScoresResponse{
				Cost:      r.Scores.Cost,
				Stability: r.Scores.Stability,
				Approval:  r.Scores.Approval,
				Speed:     r.Scores.Speed,
				Penalties: r.Scores.Penalties,
				Total:     r.Scores.Total,
			},
			WhyFit: r.WhyFit,
			Risks:  r.Risks,
			EstimatedCosts: dto.EstimatedCostsResponse{
				Month1Payment:    r.EstimatedCosts.Month1Payment,
				Year1Total:       r.EstimatedCosts.Year1Total,
				Total3Y:          r.EstimatedCosts.Total3Y,
				Total5Y:          r.EstimatedCosts.Total5Y,
				StressMaxMonthly: r.EstimatedCosts.StressMaxMonthly,
			},
			Scenarios:                 toScenarioResponses(r.Scenarios),
			Rates:                     toRatesResponse(r.Rates),
			RepaymentMethod:           r.RepaymentMethod.String(),
			GracePrincipalMonths:      r.GracePrincipalMonths,
			SuggestedTenorMonths:      r.SuggestedTenorMonths,
			ExitAtPromoEnd:            toExitCostResponse(r.ExitAtPromoEnd),
			EstimatedDisbursementDays: r.EstimatedDisbursementDays,
			DataConfidenceScore:       r.DataConfidenceScore,
			Assumptions:               r.Assumptions,
			NextSteps:                 r.NextSteps,
			CatalogUpdatedAt:          r.CatalogUpdatedAt,
		})
	}

	rejected := make([]dto.RejectedCandidateResponse, 0, len(outcome.Rejected))
	for _, r := range outcome.Rejected {
		all := make([]string, 0, len(r.Reasons))
		for _, code := range r.Reasons {
			all = append(all, code.String())
		}
		rejected = append(rejected, dto.RejectedCandidateResponse{
			ProductID:    r.ProductID,
			BankName:     r.BankName,
			ProductName:  r.ProductName,
			ReasonCode:   r.PrimaryReason().String(),
			ReasonDetail: r.ReasonDetail(),
			AllReasons:   all,
		})
	}

	var failures []dto.CandidateFailureResponse
	for _, f := range outcome.Failures {
		failures = append(failures, dto.CandidateFailureResponse{CandidateID: f.ProductID, Error: f.Error})
	}

	return dto.RecommendationResponse{
		ID:              run.ID(),
		ApplicationID:   run.ApplicationID(),
		Recommendations: recs,
		Rejected:        rejected,
		Failures:        failures,
		NextSteps:       outcome.NextSteps,
		CandidateCount:  outcome.CandidateCount,
		Metrics:         toMetricsResponse(run.Metrics()),
		CreatedAt:       run.CreatedAt(),
	}
}

func toProductResponse(p model.ProductCandidate) dto.ProductResponse {
	return dto.ProductResponse{
		ID:              p.ID,
		BankID:          p.Bank.ID,
		BankName:        p.Bank.Name,
		BankShortName:   p.Bank.ShortName,
		Name:            p.Name,
		Purpose:         p.Purpose.String(),
		MinLoanAmount:   p.MinLoanAmount,
		MaxLoanAmount:   p.MaxLoanAmount,
		MaxLTVPct:       p.MaxLTVPct,
		MinTermMonths:   p.MinTermMonths,
		MaxTermMonths:   p.MaxTermMonths,
		Rates:           toRatesResponse(p.RateStructure()),
		RepaymentMethod: p.RepaymentMethod.String(),
		ProcessingDays:  p.ProcessingDays(),
		DataConfidence:  p.Bank.DataConfidence(),
		ReferenceURL:    p.ReferenceURL,
		Active:          p.Active,
		UpdatedAt:       p.UpdatedAt,
	}
}

func toScheduleResponse(payments []model.MonthlyPayment) []dto.MonthlyPaymentResponse {
	out := make([]dto.MonthlyPaymentResponse, 0, len(payments))
	for _, p := range payments {
		out = append(out, dto.MonthlyPaymentResponse{
			Month:            p.Month,
			DueDate:          p.DueDate,
			Interest:         p.Interest,
			Principal:        p.Principal,
			Prepayment:       p.Prepayment,
			Payment:          p.Payment,
			RemainingBalance: p.RemainingBalance,
			Fees:             p.Fees,
			Insurance:        p.Insurance,
			RateApplied:      p.RateApplied,
			IsGracePeriod:    p.IsGracePeriod,
		})
	}
	return out
}
