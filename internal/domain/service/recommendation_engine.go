package service

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

// DefaultTopN is the number of recommendations returned when unconfigured.
const DefaultTopN = 5

// EngineInput is one recommendation request: a borrower snapshot, its
// precomputed metrics and the catalog to rank.
type EngineInput struct {
	Profile  model.ApplicationProfile
	Metrics  model.ApplicationMetrics
	Products []model.ProductCandidate
	Today    time.Time
}

// RecommendationEngine filters, simulates, scores and ranks products.
type RecommendationEngine struct {
	eligibility *EligibilityFilter
	stress      *StressRunner
	scoring     *ScoringEngine
	topN        int
	workers     int
}

// NewRecommendationEngine creates an engine returning at most topN results
// and evaluating up to workers candidates at once. Non-positive values fall
// back to DefaultTopN and GOMAXPROCS.
func NewRecommendationEngine(topN, workers int) *RecommendationEngine {
	if topN <= 0 {
		topN = DefaultTopN
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &RecommendationEngine{
		eligibility: NewEligibilityFilter(),
		stress:      NewStressRunner(),
		scoring:     NewScoringEngine(),
		topN:        topN,
		workers:     workers,
	}
}

// evaluation is the outcome of one candidate; exactly one pointer is set.
type evaluation struct {
	result    *model.RecommendationResult
	rejected  *model.RejectedCandidate
	failure   *model.CandidateFailure
	scenarios model.ScenarioSet
}

// Recommend evaluates every product concurrently and returns the ranked
// top results, the rejected products with their reasons and any products
// that could not be evaluated. Output is deterministic for identical input.
func (e *RecommendationEngine) Recommend(ctx context.Context, in EngineInput) (model.RecommendationOutcome, error) {
	evals := make([]evaluation, len(in.Products))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i := range in.Products {
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			evals[i] = e.evaluate(in, in.Products[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.RecommendationOutcome{}, fmt.Errorf("evaluate candidates: %w", err)
	}

	out := model.RecommendationOutcome{
		Scenarios:      make(map[string]model.ScenarioSet),
		CandidateCount: len(in.Products),
	}
	var ranked []model.RecommendationResult
	for _, ev := range evals {
		switch {
		case ev.failure != nil:
			out.Failures = append(out.Failures, *ev.failure)
		case ev.rejected != nil:
			out.Rejected = append(out.Rejected, *ev.rejected)
		case ev.result != nil:
			ranked = append(ranked, *ev.result)
			out.Scenarios[ev.result.ProductID] = ev.scenarios
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Scores.Total != ranked[j].Scores.Total {
			return ranked[i].Scores.Total > ranked[j].Scores.Total
		}
		return ranked[i].ProductID < ranked[j].ProductID
	})
	if len(ranked) > e.topN {
		ranked = ranked[:e.topN]
	}
	out.Recommendations = ranked
	out.NextSteps = OverallNextSteps(in.Profile, len(ranked) > 0)
	return out, nil
}

func (e *RecommendationEngine) evaluate(in EngineInput, product model.ProductCandidate) (ev evaluation) {
	defer func() {
		if r := recover(); r != nil {
			ev = evaluation{failure: &model.CandidateFailure{
				ProductID: product.ID,
				Error:     fmt.Sprintf("panic: %v", r),
			}}
		}
	}()

	if err := product.Validate(); err != nil {
		return evaluation{failure: &model.CandidateFailure{ProductID: product.ID, Error: err.Error()}}
	}

	profile := in.Profile
	tenor := OptimalTenor(profile, product)

	if reasons := e.eligibility.Check(profile, in.Metrics, product, tenor); len(reasons) > 0 {
		return evaluation{rejected: &model.RejectedCandidate{
			ProductID:   product.ID,
			BankName:    product.Bank.Name,
			ProductName: product.Name,
			Reasons:     reasons,
		}}
	}

	rates := product.RateStructure()
	stressIn := StressInput{
		Principal:            profile.LoanAmount,
		TenorMonths:          tenor,
		Rates:                rates,
		Fees:                 product.Fees,
		Method:               product.RepaymentMethod,
		GracePrincipalMonths: product.GracePrincipalMonths,
		Prepayment:           profile.Prepayment(),
		PropertyValue:        in.Metrics.PropertyValue,
		HorizonMonths:        ComparisonHorizon(profile, tenor),
	}
	scenarios := e.stress.Run(stressIn)

	scores := e.scoring.Score(ScoreInput{
		Profile:   profile,
		Metrics:   in.Metrics,
		Product:   product,
		Rates:     rates,
		Scenarios: &scenarios,
		Today:     in.Today,
	})

	base := scenarios.Get(valueobject.StressBase)
	whyFit, risks := Explain(profile, product, scores, &base)

	days := product.ProcessingDays()
	if days <= 0 {
		days = defaultSLADays
	}

	return evaluation{
		scenarios: scenarios,
		result: &model.RecommendationResult{
			ProductID:                 product.ID,
			BankName:                  product.Bank.Name,
			ProductName:               product.Name,
			FitScore:                  int(math.Round(scores.Total)),
			ApprovalBucket:            valueobject.ApprovalBucketFromScore(scores.Approval),
			Scores:                    scores,
			WhyFit:                    whyFit,
			Risks:                     risks,
			EstimatedCosts:            EstimateCosts(stressIn, scenarios),
			Scenarios:                 scenarios,
			Rates:                     rates,
			RepaymentMethod:           product.RepaymentMethod,
			GracePrincipalMonths:      product.GracePrincipalMonths,
			SuggestedTenorMonths:      tenor,
			ExitAtPromoEnd:            ExitAtPromoEnd(stressIn),
			EstimatedDisbursementDays: days,
			DataConfidenceScore:       product.Bank.DataConfidence(),
			Assumptions:               Assumptions(product, rates),
			NextSteps:                 ProductNextSteps(profile, product),
			CatalogUpdatedAt:          product.UpdatedAt,
		},
	}
}

// EstimateCosts derives the headline figures from the base schedule: the
// first payment, a year at the first-year average, and the exact sums of the
// first 36 and 60 payments.
func EstimateCosts(in StressInput, scenarios model.ScenarioSet) model.EstimatedCosts {
	sched := model.GenerateAmortizationSchedule(in.ScheduleParams(valueobject.StressBase))
	base := scenarios.Get(valueobject.StressBase)

	costs := model.EstimatedCosts{
		Year1Total:       base.MonthlyPaymentFirst12M.Mul(decimal.NewFromInt(12)),
		Total3Y:          sumPayments(sched.Head(36)),
		Total5Y:          sumPayments(sched.Head(60)),
		StressMaxMonthly: scenarios.Get(valueobject.StressPlus4).MonthlyPaymentPostPromo,
	}
	if sched.Len() > 0 {
		costs.Month1Payment = sched.Payments[0].Payment
	}
	return costs
}

// ExitAtPromoEnd projects paying the loan off in full in the last fixed-rate
// month. It returns nil for products without a fixed period.
func ExitAtPromoEnd(in StressInput) *model.ExitCost {
	fixed := in.Rates.FixedMonths
	if fixed <= 0 {
		return nil
	}

	params := in.ScheduleParams(valueobject.StressBase)
	params.Prepayment = nil
	sched := model.GenerateAmortizationSchedule(params)
	if sched.Len() == 0 {
		return nil
	}

	remaining := in.Principal
	interest := decimal.Zero
	fees := sched.UpfrontFees
	for _, p := range sched.Head(fixed) {
		remaining = p.RemainingBalance
		interest = interest.Add(p.Interest)
		fees = fees.Add(p.Fees)
	}
	prepaymentFee := in.Fees.PrepaymentFee(remaining, fixed)

	return &model.ExitCost{
		PrepaymentMonth:    fixed,
		RemainingPrincipal: remaining,
		InterestPaid:       interest,
		FeesPaid:           fees,
		PrepaymentFee:      prepaymentFee,
		TotalCostToExit:    remaining.Add(interest).Add(fees).Add(prepaymentFee),
	}
}

func sumPayments(ps []model.MonthlyPayment) decimal.Decimal {
	sum := decimal.Zero
	for _, p := range ps {
		sum = sum.Add(p.Payment)
	}
	return sum
}
