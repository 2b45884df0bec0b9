package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/internal/domain/event"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
	"github.com/bibbank/mortgage-advisor/pkg/events"
)

// ---------------------------------------------------------------------------
// Cost summaries
// ---------------------------------------------------------------------------

// LoanCostSummary aggregates one stress scenario over the comparison horizon.
type LoanCostSummary struct {
	APR                         float64
	MonthlyPaymentFirst12M      decimal.Decimal
	MonthlyPaymentPostPromo     decimal.Decimal
	TotalInterest               decimal.Decimal
	TotalFees                   decimal.Decimal
	TotalInsurance              decimal.Decimal
	TotalCostExcludingPrincipal decimal.Decimal
	TotalOutOfPocket            decimal.Decimal
	PrepaymentFee               decimal.Decimal
}

// ScenarioSet holds one summary per stress level, indexed by StressLevel.
type ScenarioSet [valueobject.StressLevelCount]LoanCostSummary

// Get returns the summary for level.
func (s ScenarioSet) Get(level valueobject.StressLevel) LoanCostSummary { return s[level] }

// ---------------------------------------------------------------------------
// Scores
// ---------------------------------------------------------------------------

// ScoreWeights are the factor weights; they sum to 1.
type ScoreWeights struct {
	Cost      float64
	Stability float64
	Approval  float64
	Speed     float64
	Penalties float64
}

// ScoreBreakdown holds the five 0-100 factors and their weighted total.
type ScoreBreakdown struct {
	Cost      float64
	Stability float64
	Approval  float64
	Speed     float64
	Penalties float64
	Total     float64
	Weights   ScoreWeights
}

// ---------------------------------------------------------------------------
// Recommendation output
// ---------------------------------------------------------------------------

// EstimatedCosts are the headline figures shown next to a recommendation.
type EstimatedCosts struct {
	Month1Payment    decimal.Decimal
	Year1Total       decimal.Decimal
	Total3Y          decimal.Decimal
	Total5Y          decimal.Decimal
	StressMaxMonthly decimal.Decimal
}

// ExitCost projects a full payoff at the end of the promotional period.
type ExitCost struct {
	PrepaymentMonth    int
	RemainingPrincipal decimal.Decimal
	InterestPaid       decimal.Decimal
	FeesPaid           decimal.Decimal
	PrepaymentFee      decimal.Decimal
	TotalCostToExit    decimal.Decimal
}

// RecommendationResult is one ranked product.
type RecommendationResult struct {
	ProductID                 string
	BankName                  string
	ProductName               string
	FitScore                  int
	ApprovalBucket            valueobject.ApprovalBucket
	Scores                    ScoreBreakdown
	WhyFit                    []string
	Risks                     []string
	EstimatedCosts            EstimatedCosts
	Scenarios                 ScenarioSet
	Rates                     RateStructure
	RepaymentMethod           valueobject.RepaymentMethod
	GracePrincipalMonths      int
	SuggestedTenorMonths      int
	ExitAtPromoEnd            *ExitCost
	EstimatedDisbursementDays int
	DataConfidenceScore       int
	Assumptions               []string
	NextSteps                 []string
	CatalogUpdatedAt          time.Time
}

// RejectedCandidate is a product that failed eligibility. Reasons are in
// check order; the first is the primary reason.
type RejectedCandidate struct {
	ProductID   string
	BankName    string
	ProductName string
	Reasons     []valueobject.ReasonCode
}

// PrimaryReason returns the first reason code.
func (r RejectedCandidate) PrimaryReason() valueobject.ReasonCode {
	if len(r.Reasons) == 0 {
		return ""
	}
	return r.Reasons[0]
}

// ReasonDetail describes the primary reason.
func (r RejectedCandidate) ReasonDetail() string {
	return r.PrimaryReason().Detail()
}

// CandidateFailure records a product that could not be evaluated.
type CandidateFailure struct {
	ProductID string
	Error     string
}

// RecommendationOutcome is everything one engine run produces.
type RecommendationOutcome struct {
	Recommendations []RecommendationResult
	Rejected        []RejectedCandidate
	Failures        []CandidateFailure
	Scenarios       map[string]ScenarioSet
	NextSteps       []string
	CandidateCount  int
}

// ---------------------------------------------------------------------------
// RecommendationRun aggregate root (audit record)
// ---------------------------------------------------------------------------

// ErrEmptyApplicationID is returned when a run is not tied to an application.
var ErrEmptyApplicationID = errors.New("application ID is required")

// RecommendationRun is the stored result of one engine run against an
// application snapshot.
type RecommendationRun struct {
	events.EventCollector

	id            string
	applicationID string
	snapshot      ApplicationProfile
	metrics       ApplicationMetrics
	outcome       RecommendationOutcome
	createdAt     time.Time
}

// NewRecommendationRun creates a run and records RecommendationGenerated.
func NewRecommendationRun(
	applicationID string,
	snapshot ApplicationProfile,
	metrics ApplicationMetrics,
	outcome RecommendationOutcome,
	now time.Time,
) (*RecommendationRun, error) {
	if applicationID == "" {
		return nil, ErrEmptyApplicationID
	}

	run := &RecommendationRun{
		id:            uuid.New().String(),
		applicationID: applicationID,
		snapshot:      snapshot,
		metrics:       metrics,
		outcome:       outcome,
		createdAt:     now,
	}

	topIDs := make([]string, 0, len(outcome.Recommendations))
	bestFit := 0
	for i, r := range outcome.Recommendations {
		topIDs = append(topIDs, r.ProductID)
		if i == 0 {
			bestFit = r.FitScore
		}
	}
	run.Record(event.NewRecommendationGenerated(
		run.id, applicationID, topIDs,
		outcome.CandidateCount, len(outcome.Rejected), len(outcome.Failures), bestFit,
		now,
	))
	return run, nil
}

// ReconstructRecommendationRun rebuilds a run from persistence without side-effects.
func ReconstructRecommendationRun(
	id, applicationID string,
	snapshot ApplicationProfile,
	metrics ApplicationMetrics,
	outcome RecommendationOutcome,
	createdAt time.Time,
) *RecommendationRun {
	return &RecommendationRun{
		id:            id,
		applicationID: applicationID,
		snapshot:      snapshot,
		metrics:       metrics,
		outcome:       outcome,
		createdAt:     createdAt,
	}
}

func (r *RecommendationRun) ID() string { return r.id }
func (r *RecommendationRun) ApplicationID() string { return r.applicationID }
func (r *RecommendationRun) Snapshot() ApplicationProfile { return r.snapshot }
func (r *RecommendationRun) Metrics() ApplicationMetrics { return r.metrics }
func (r *RecommendationRun) Outcome() RecommendationOutcome { return r.outcome }
func (r *RecommendationRun) CreatedAt() time.Time { return r.createdAt }
