package service

import (
	"time"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

// Factor weights per repayment strategy.
var (
	DefaultWeights   = model.ScoreWeights{Cost: 0.35, Stability: 0.25, Approval: 0.20, Speed: 0.10, Penalties: 0.10}
	UncertainWeights = model.ScoreWeights{Cost: 0.30, Stability: 0.20, Approval: 0.20, Speed: 0.10, Penalties: 0.20}
	EarlyExitWeights = model.ScoreWeights{Cost: 0.25, Stability: 0.10, Approval: 0.20, Speed: 0.15, Penalties: 0.30}
	LongHoldWeights  = model.ScoreWeights{Cost: 0.35, Stability: 0.35, Approval: 0.20, Speed: 0.05, Penalties: 0.05}
)

const (
	neutralScore        = 50.0
	noPrepaymentScore   = 80.0
	defaultSLADays      = 30
	approvalBase        = 70.0
	latePaymentPenalty  = 15.0
	badDebtPenalty      = 25.0
	earlyExitCheckpoint = 12
)

// ScoreInput is everything the scoring engine looks at for one product.
// Scenarios is nil when the product could not be simulated.
type ScoreInput struct {
	Profile   model.ApplicationProfile
	Metrics   model.ApplicationMetrics
	Product   model.ProductCandidate
	Rates     model.RateStructure
	Scenarios *model.ScenarioSet
	Today     time.Time
}

// ScoringEngine computes the five-factor score and applies the weights of
// the borrower's repayment strategy.
type ScoringEngine struct{}

// NewScoringEngine returns a new engine.
func NewScoringEngine() *ScoringEngine {
	return &ScoringEngine{}
}

// Score returns the factor breakdown and weighted total for in.
func (e *ScoringEngine) Score(in ScoreInput) model.ScoreBreakdown {
	b := model.ScoreBreakdown{
		Cost:      e.costScore(in),
		Stability: e.stabilityScore(in),
		Approval:  e.approvalScore(in),
		Speed:     e.speedScore(in),
		Penalties: e.penaltiesScore(in),
	}

	// An unset strategy keeps the default weights.
	strategy := in.Profile.RepaymentStrategy
	switch {
	case strategy.Equal(valueobject.RepaymentStrategyUncertain):
		b.Weights = UncertainWeights
	case strategy.Equal(valueobject.RepaymentStrategyEarlyExit):
		b.Weights = EarlyExitWeights
		b.Penalties = e.earlyExitPenaltiesScore(in)
	case strategy.Equal(valueobject.RepaymentStrategyLongHold):
		b.Weights = LongHoldWeights
		b.Stability = e.longHoldStabilityScore(in)
	default:
		b.Weights = DefaultWeights
	}

	w := b.Weights
	b.Total = w.Cost*b.Cost + w.Stability*b.Stability + w.Approval*b.Approval + w.Speed*b.Speed + w.Penalties*b.Penalties
	return b
}

// cost: APR 8% -> 100, 15% -> 0; cost ratio 10% -> 100, 50% -> 0.
func (e *ScoringEngine) costScore(in ScoreInput) float64 {
	if in.Scenarios == nil {
		return neutralScore
	}
	base := in.Scenarios.Get(valueobject.StressBase)

	aprScore := clampScore(100 - (base.APR*100-8)*(100.0/7))

	costRatio := 0.0
	if principal := in.Profile.LoanAmount.InexactFloat64(); principal > 0 {
		costRatio = base.TotalCostExcludingPrincipal.InexactFloat64() / principal
	}
	ratioScore := clampScore(100 - (costRatio-0.10)*(100/0.40))

	return (aprScore + ratioScore) / 2
}

// paymentVolatility is the relative jump from the base first-year payment to
// the +4% post-promo payment.
func paymentVolatility(s model.ScenarioSet) (float64, bool) {
	first := s.Get(valueobject.StressBase).MonthlyPaymentFirst12M.InexactFloat64()
	if first <= 0 {
		return 0, false
	}
	stressed := s.Get(valueobject.StressPlus4).MonthlyPaymentPostPromo.InexactFloat64()
	return (stressed - first) / first, true
}

func (e *ScoringEngine) stabilityScore(in ScoreInput) float64 {
	if in.Scenarios == nil {
		return neutralScore
	}
	vol, _ := paymentVolatility(*in.Scenarios)
	volScore := clampScore(100 - vol*500)
	fixedScore := min(100, float64(in.Product.LongestFixedMonths())*(100.0/24))
	pref := in.Profile.Preferences.CostVsStability()

	return volScore*(1-pref*0.3) + fixedScore*(pref*0.3+0.35)
}

func (e *ScoringEngine) longHoldStabilityScore(in ScoreInput) float64 {
	if in.Scenarios == nil {
		return neutralScore
	}

	score := neutralScore
	margin := in.Rates.FloatingMarginPct.InexactFloat64()
	score += clampScore(100-(margin-1)*(100.0/3)) * 0.3

	if in.Product.Floating.ReferenceSourceURL != "" {
		score += 10
	}
	if in.Product.Floating.HasCapsFloors {
		score += 10
	}
	if vol, ok := paymentVolatility(*in.Scenarios); ok {
		score += clampScore(100-vol*500) * 0.3
	}
	return clampScore(score)
}

func (e *ScoringEngine) approvalScore(in ScoreInput) float64 {
	score := approvalBase

	if maxDSR := in.Product.Eligibility.MaxDSR; maxDSR != nil && *maxDSR > 0 && in.Metrics.DSR != nil {
		score += (*maxDSR - *in.Metrics.DSR) / *maxDSR * 15
	}

	var maxLTV float64
	if in.Product.Eligibility.MaxLTV != nil {
		maxLTV = *in.Product.Eligibility.MaxLTV
	} else if in.Product.MaxLTVPct.IsPositive() {
		maxLTV = in.Product.MaxLTVPct.InexactFloat64() / 100
	}
	if maxLTV > 0 && in.Metrics.LTV != nil {
		score += (maxLTV - *in.Metrics.LTV) / maxLTV * 10
	}

	score += in.Profile.ProofStrength.ApprovalBonus()

	if in.Profile.CreditFlags.HasLatePayments {
		score -= latePaymentPenalty
	}
	if in.Profile.CreditFlags.HasBadDebt {
		score -= badDebtPenalty
	}
	return clampScore(score)
}

// speed: without a deadline 7 days -> 100, 60 days -> 50 (floor 50). With a
// deadline, meeting it scores 80-100 by margin and each day late costs 5.
func (e *ScoringEngine) speedScore(in ScoreInput) float64 {
	sla := in.Product.ProcessingDays()
	if sla <= 0 {
		sla = defaultSLADays
	}

	if in.Profile.NeedDisbursementBy == nil {
		return max(50, min(100, 100-float64(sla-7)*(50.0/53)))
	}

	daysLeft := daysBetween(in.Today, *in.Profile.NeedDisbursementBy)
	if sla <= daysLeft {
		margin := 1.0
		if daysLeft > 0 {
			margin = float64(daysLeft-sla) / float64(daysLeft)
		}
		return min(100, 80+margin*20)
	}
	return max(0, 50-float64(sla-daysLeft)*5)
}

// penalties: realised prepayment fee 0% of the loan -> 100, 3% -> 0.
func (e *ScoringEngine) penaltiesScore(in ScoreInput) float64 {
	if in.Scenarios == nil || in.Profile.ExpectedPrepaymentMonth <= 0 {
		return noPrepaymentScore
	}
	loan := in.Profile.LoanAmount.InexactFloat64()
	if loan <= 0 {
		return noPrepaymentScore
	}
	feePct := in.Scenarios.Get(valueobject.StressBase).PrepaymentFee.InexactFloat64() / loan * 100
	return clampScore(100 - feePct*(100.0/3))
}

// earlyExitPenaltiesScore averages the tier fee at months 12, 24 and 36.
func (e *ScoringEngine) earlyExitPenaltiesScore(in ScoreInput) float64 {
	tiers := in.Product.Fees.PrepaymentTiers
	if len(tiers) == 0 {
		return noPrepaymentScore
	}
	var sum float64
	for i := 1; i <= 3; i++ {
		sum += tiers.FeePctAt(i * earlyExitCheckpoint).InexactFloat64()
	}
	return clampScore(100 - (sum/3)*(100.0/3))
}

func clampScore(v float64) float64 {
	return max(0, min(100, v))
}

// daysBetween counts calendar days from a to b, ignoring the time of day.
func daysBetween(a, b time.Time) int {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}
