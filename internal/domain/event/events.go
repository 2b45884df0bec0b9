package event

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/pkg/events"
)

// DomainEvent is an alias for the shared pkg/events.DomainEvent interface.
type DomainEvent = events.DomainEvent

const (
	TypeApplicationSubmitted    = "advisor.application.submitted"
	TypeRecommendationGenerated = "advisor.recommendation.generated"
	TypeCatalogSynced           = "advisor.catalog.synced"
)

// ---------------------------------------------------------------------------
// Application Events
// ---------------------------------------------------------------------------

// ApplicationSubmitted is raised when a borrower profile is stored.
type ApplicationSubmitted struct {
	events.BaseEvent
	Purpose     string          `json:"purpose"`
	LoanAmount  decimal.Decimal `json:"loan_amount"`
	TenorMonths int             `json:"tenor_months"`
	Strategy    string          `json:"repayment_strategy"`
}

func NewApplicationSubmitted(
	applicationID, purpose string,
	amount decimal.Decimal, tenorMonths int, strategy string, now time.Time,
) ApplicationSubmitted {
	return ApplicationSubmitted{
		BaseEvent:   events.NewBaseEvent(TypeApplicationSubmitted, applicationID, "Application", now),
		Purpose:     purpose,
		LoanAmount:  amount,
		TenorMonths: tenorMonths,
		Strategy:    strategy,
	}
}

// ---------------------------------------------------------------------------
// Recommendation Events
// ---------------------------------------------------------------------------

// RecommendationGenerated is raised after a recommendation run is stored.
type RecommendationGenerated struct {
	events.BaseEvent
	ApplicationID  string   `json:"application_id"`
	TopProductIDs  []string `json:"top_product_ids"`
	RejectedCount  int      `json:"rejected_count"`
	FailureCount   int      `json:"failure_count"`
	BestFitScore   int      `json:"best_fit_score"`
	CandidateCount int      `json:"candidate_count"`
}

func NewRecommendationGenerated(
	runID, applicationID string,
	topProductIDs []string,
	candidateCount, rejectedCount, failureCount, bestFitScore int,
	now time.Time,
) RecommendationGenerated {
	return RecommendationGenerated{
		BaseEvent:      events.NewBaseEvent(TypeRecommendationGenerated, runID, "RecommendationRun", now),
		ApplicationID:  applicationID,
		TopProductIDs:  topProductIDs,
		CandidateCount: candidateCount,
		RejectedCount:  rejectedCount,
		FailureCount:   failureCount,
		BestFitScore:   bestFitScore,
	}
}

// ---------------------------------------------------------------------------
// Catalog Events
// ---------------------------------------------------------------------------

// CatalogSynced is raised when the product catalog has been reloaded.
type CatalogSynced struct {
	events.BaseEvent
	Source       string `json:"source"`
	Checksum     string `json:"checksum"`
	BankCount    int    `json:"bank_count"`
	ProductCount int    `json:"product_count"`
	Skipped      int    `json:"skipped"`
}

func NewCatalogSynced(syncID, source, checksum string, bankCount, productCount, skipped int, now time.Time) CatalogSynced {
	return CatalogSynced{
		BaseEvent:    events.NewBaseEvent(TypeCatalogSynced, syncID, "Catalog", now),
		Source:       source,
		Checksum:     checksum,
		BankCount:    bankCount,
		ProductCount: productCount,
		Skipped:      skipped,
	}
}
