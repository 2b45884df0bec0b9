package service_test

import (
	"context"
	"fmt"
	"sort"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/service"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

func engineInput(products []model.ProductCandidate) service.EngineInput {
	profile := newProfile()
	return service.EngineInput{
		Profile:  profile,
		Metrics:  service.NewMetricsCalculator().Calculate(profile),
		Products: products,
		Today:    today,
	}
}

func catalog(n int) []model.ProductCandidate {
	products := make([]model.ProductCandidate, 0, n)
	for i := 0; i < n; i++ {
		rate := fmt.Sprintf("%.1f", 7.0+0.4*float64(i))
		products = append(products, newProduct(fmt.Sprintf("p-%02d", i), rate))
	}
	return products
}

func TestRecommendationEngine_RanksTopN(t *testing.T) {
	engine := service.NewRecommendationEngine(0, 4)

	out, err := engine.Recommend(context.Background(), engineInput(catalog(7)))
	require.NoError(t, err)

	require.Len(t, out.Recommendations, service.DefaultTopN)
	assert.Equal(t, 7, out.CandidateCount)
	assert.Empty(t, out.Rejected)
	assert.Empty(t, out.Failures)
	assert.Len(t, out.Scenarios, 7)

	assert.True(t, sort.SliceIsSorted(out.Recommendations, func(i, j int) bool {
		return out.Recommendations[i].Scores.Total > out.Recommendations[j].Scores.Total
	}))
	assert.Equal(t, "p-00", out.Recommendations[0].ProductID, "cheapest promo ranks first")

	for _, rec := range out.Recommendations {
		assert.Contains(t, out.Scenarios, rec.ProductID)
		assert.Equal(t, 240, rec.SuggestedTenorMonths)
		assert.Equal(t, 14, rec.EstimatedDisbursementDays)
		assert.Equal(t, model.DefaultDataConfidence, rec.DataConfidenceScore)
		assert.NotEmpty(t, rec.WhyFit)
		assert.NotEmpty(t, rec.Assumptions)
		assert.NotEmpty(t, rec.NextSteps)
		require.NotNil(t, rec.ExitAtPromoEnd)
		assert.Equal(t, 12, rec.ExitAtPromoEnd.PrepaymentMonth)
	}
	assert.NotEmpty(t, out.NextSteps)
}

func TestRecommendationEngine_Deterministic(t *testing.T) {
	in := engineInput(catalog(9))

	first, err := service.NewRecommendationEngine(5, 1).Recommend(context.Background(), in)
	require.NoError(t, err)
	second, err := service.NewRecommendationEngine(5, 8).Recommend(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRecommendationEngine_TieBreaksOnProductID(t *testing.T) {
	products := []model.ProductCandidate{newProduct("tie-b", "8"), newProduct("tie-a", "8")}

	out, err := service.NewRecommendationEngine(5, 2).Recommend(context.Background(), engineInput(products))
	require.NoError(t, err)

	require.Len(t, out.Recommendations, 2)
	assert.Equal(t, out.Recommendations[0].Scores.Total, out.Recommendations[1].Scores.Total)
	assert.Equal(t, "tie-a", out.Recommendations[0].ProductID)
	assert.Equal(t, "tie-b", out.Recommendations[1].ProductID)
}

func TestRecommendationEngine_RejectedAndFailed(t *testing.T) {
	strict := newProduct("strict", "7")
	strict.Eligibility.MinIncome = d("80000000")

	broken := newProduct("broken", "7")
	broken.Fees.PrepaymentTiers = model.PrepaymentTiers{{MonthsFrom: 5, MonthsTo: 12, FeePct: d("2")}}

	products := []model.ProductCandidate{newProduct("ok", "8"), strict, broken}

	out, err := service.NewRecommendationEngine(5, 2).Recommend(context.Background(), engineInput(products))
	require.NoError(t, err)

	require.Len(t, out.Recommendations, 1)
	assert.Equal(t, "ok", out.Recommendations[0].ProductID)

	require.Len(t, out.Rejected, 1)
	assert.Equal(t, "strict", out.Rejected[0].ProductID)
	assert.Equal(t, valueobject.ReasonIncomeBelowMin, out.Rejected[0].PrimaryReason())

	require.Len(t, out.Failures, 1)
	assert.Equal(t, "broken", out.Failures[0].ProductID)
	assert.NotEmpty(t, out.Failures[0].Error)

	assert.NotContains(t, out.Scenarios, "strict")
	assert.NotContains(t, out.Scenarios, "broken")
}

func TestRecommendationEngine_NothingEligible(t *testing.T) {
	strict := newProduct("strict", "7")
	strict.Eligibility.MinIncome = d("80000000")

	out, err := service.NewRecommendationEngine(5, 1).Recommend(context.Background(), engineInput([]model.ProductCandidate{strict}))
	require.NoError(t, err)

	assert.Empty(t, out.Recommendations)
	assert.Equal(t, []string{"Prepare income proof and collateral documents to speed up processing"}, out.NextSteps)
}

func TestRecommendationEngine_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := service.NewRecommendationEngine(5, 1).Recommend(ctx, engineInput(catalog(3)))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEstimateCosts(t *testing.T) {
	in := newStressInput()
	scenarios := service.NewStressRunner().Run(in)

	costs := service.EstimateCosts(in, scenarios)

	sched := model.GenerateAmortizationSchedule(in.ScheduleParams(valueobject.StressBase))
	sum := func(n int) decimal.Decimal {
		total := decimal.Zero
		for _, p := range sched.Head(n) {
			total = total.Add(p.Payment)
		}
		return total
	}

	assert.True(t, costs.Month1Payment.Equal(sched.Payments[0].Payment))
	assert.True(t, costs.Total3Y.Equal(sum(36)))
	assert.True(t, costs.Total5Y.Equal(sum(60)))
	assert.True(t, costs.Year1Total.Equal(scenarios.Get(valueobject.StressBase).MonthlyPaymentFirst12M.Mul(d("12"))))
	assert.True(t, costs.StressMaxMonthly.Equal(scenarios.Get(valueobject.StressPlus4).MonthlyPaymentPostPromo))
}

func TestExitAtPromoEnd(t *testing.T) {
	in := newStressInput()
	in.Fees.PrepaymentTiers = model.PrepaymentTiers{
		{MonthsFrom: 1, MonthsTo: 12, FeePct: d("3")},
		{MonthsFrom: 13, FeePct: d("1")},
	}

	exit := service.ExitAtPromoEnd(in)
	require.NotNil(t, exit)

	sched := model.GenerateAmortizationSchedule(in.ScheduleParams(valueobject.StressBase))
	remaining := sched.Payments[11].RemainingBalance

	assert.Equal(t, 12, exit.PrepaymentMonth)
	assert.True(t, exit.RemainingPrincipal.Equal(remaining))
	assert.True(t, exit.PrepaymentFee.Equal(remaining.Mul(d("0.03")).Round(2)))
	assert.True(t, exit.TotalCostToExit.Equal(
		exit.RemainingPrincipal.Add(exit.InterestPaid).Add(exit.FeesPaid).Add(exit.PrepaymentFee)))

	in.Rates.FixedMonths = 0
	assert.Nil(t, service.ExitAtPromoEnd(in))
}
