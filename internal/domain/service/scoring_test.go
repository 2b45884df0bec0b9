package service_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/service"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

var today = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func scoreInput(profile model.ApplicationProfile, product model.ProductCandidate) service.ScoreInput {
	return service.ScoreInput{
		Profile: profile,
		Metrics: service.NewMetricsCalculator().Calculate(profile),
		Product: product,
		Rates:   product.RateStructure(),
		Today:   today,
	}
}

func TestScoringEngine_WeightsFollowStrategy(t *testing.T) {
	tests := []struct {
		name     string
		strategy valueobject.RepaymentStrategy
		want     model.ScoreWeights
	}{
		{"unset", valueobject.RepaymentStrategy{}, service.DefaultWeights},
		{"uncertain", valueobject.RepaymentStrategyUncertain, service.UncertainWeights},
		{"early exit", valueobject.RepaymentStrategyEarlyExit, service.EarlyExitWeights},
		{"long hold", valueobject.RepaymentStrategyLongHold, service.LongHoldWeights},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProfile()
			p.RepaymentStrategy = tt.strategy

			b := service.NewScoringEngine().Score(scoreInput(p, newProduct("p-1", "8")))
			assert.Equal(t, tt.want, b.Weights)

			w := b.Weights
			assert.InDelta(t, 1.0, w.Cost+w.Stability+w.Approval+w.Speed+w.Penalties, 1e-9)
			want := w.Cost*b.Cost + w.Stability*b.Stability + w.Approval*b.Approval + w.Speed*b.Speed + w.Penalties*b.Penalties
			assert.InDelta(t, want, b.Total, 1e-9)
		})
	}
}

func TestScoringEngine_NeutralWithoutScenarios(t *testing.T) {
	b := service.NewScoringEngine().Score(scoreInput(newProfile(), newProduct("p-1", "8")))
	assert.Equal(t, 50.0, b.Cost)
	assert.Equal(t, 50.0, b.Stability)
	assert.Equal(t, 80.0, b.Penalties)
}

func TestScoringEngine_Speed(t *testing.T) {
	engine := service.NewScoringEngine()

	tests := []struct {
		name     string
		slaDays  int
		deadline *time.Time
		want     float64
	}{
		{"fast without deadline", 7, nil, 100},
		{"slow without deadline", 60, nil, 50},
		{"very slow floors at 50", 120, nil, 50},
		{"meets deadline with margin", 14, ptr(today.AddDate(0, 0, 30)), 80 + 16.0/30*20},
		{"misses deadline", 14, ptr(today.AddDate(0, 0, 10)), 30},
		{"far past deadline floors at 0", 60, ptr(today.AddDate(0, 0, 1)), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newProfile()
			p.NeedDisbursementBy = tt.deadline
			product := newProduct("p-1", "8")
			product.SLADaysEstimate = tt.slaDays

			assert.InDelta(t, tt.want, engine.Score(scoreInput(p, product)).Speed, 1e-9)
		})
	}
}

func TestScoringEngine_BankSLAOverridesEstimate(t *testing.T) {
	product := newProduct("p-1", "8")
	product.SLADaysEstimate = 60
	product.Bank.SLA = &model.ProcessingSLA{PreApprovalDays: 2, AppraisalDays: 2, FinalApprovalDays: 2, DisbursementDays: 1}

	b := service.NewScoringEngine().Score(scoreInput(newProfile(), product))
	assert.InDelta(t, 100.0, b.Speed, 1e-9)
}

func TestScoringEngine_ApprovalPenalisesCreditFlags(t *testing.T) {
	engine := service.NewScoringEngine()
	product := newProduct("p-1", "8")

	clean := engine.Score(scoreInput(newProfile(), product)).Approval

	late := newProfile()
	late.CreditFlags.HasLatePayments = true
	assert.InDelta(t, clean-15, engine.Score(scoreInput(late, product)).Approval, 1e-9)

	bad := newProfile()
	bad.CreditFlags.HasBadDebt = true
	assert.InDelta(t, clean-25, engine.Score(scoreInput(bad, product)).Approval, 1e-9)

	strong := newProfile()
	strong.ProofStrength = valueobject.ProofStrengthStrong
	assert.InDelta(t, clean+10, engine.Score(scoreInput(strong, product)).Approval, 1e-9)
}

func TestScoringEngine_EarlyExitPenalties(t *testing.T) {
	product := newProduct("p-1", "8")
	product.Fees.PrepaymentTiers = model.PrepaymentTiers{
		{MonthsFrom: 1, MonthsTo: 12, FeePct: d("3")},
		{MonthsFrom: 13, MonthsTo: 24, FeePct: d("2")},
		{MonthsFrom: 25, MonthsTo: 36, FeePct: d("1")},
		{MonthsFrom: 37, FeePct: d("0")},
	}
	p := newProfile()
	p.RepaymentStrategy = valueobject.RepaymentStrategyEarlyExit

	b := service.NewScoringEngine().Score(scoreInput(p, product))
	assert.InDelta(t, 100-2*(100.0/3), b.Penalties, 1e-9)
}

func TestScoringEngine_CheaperProductScoresHigherCost(t *testing.T) {
	engine := service.NewScoringEngine()
	runner := service.NewStressRunner()
	profile := newProfile()

	costFor := func(rate string) float64 {
		product := newProduct("p-"+rate, rate)
		in := scoreInput(profile, product)
		scenarios := runner.Run(service.StressInput{
			Principal:   profile.LoanAmount,
			TenorMonths: profile.TenorMonths,
			Rates:       in.Rates,
			Fees:        product.Fees,
		})
		in.Scenarios = &scenarios
		return engine.Score(in).Cost
	}

	assert.Greater(t, costFor("6.5"), costFor("9.5"))
}
