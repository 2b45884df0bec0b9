package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ---------------------------------------------------------------------------
// Request DTOs
// ---------------------------------------------------------------------------

// IncomeSourceRequest is one itemised income stream.
type IncomeSourceRequest struct {
	Type          string          `json:"type"`
	MonthlyAmount decimal.Decimal `json:"monthly_amount"`
	ProofStrength string          `json:"proof_strength,omitempty"`
}

// DebtRequest is one existing obligation.
type DebtRequest struct {
	Kind           string          `json:"kind"`
	MonthlyPayment decimal.Decimal `json:"monthly_payment"`
	Outstanding    decimal.Decimal `json:"outstanding"`
}

// CollateralRequest is one asset offered as security.
type CollateralRequest struct {
	Type           string          `json:"type"`
	EstimatedValue decimal.Decimal `json:"estimated_value"`
	Province       string          `json:"province,omitempty"`
	LegalStatus    string          `json:"legal_status,omitempty"`
}

// SubmitApplicationRequest carries a borrower profile. Only purpose and loan
// amount are required; everything else narrows or sharpens the ranking.
type SubmitApplicationRequest struct {
	Purpose                  string                `json:"purpose"`
	LoanAmount               decimal.Decimal       `json:"loan_amount"`
	TenorMonths              int                   `json:"tenor_months,omitempty"`
	RepaymentStrategy        string                `json:"repayment_strategy,omitempty"`
	PlannedHoldMonths        int                   `json:"planned_hold_months,omitempty"`
	ExpectedPrepaymentMonth  int                   `json:"expected_prepayment_month,omitempty"`
	ExpectedPrepaymentAmount decimal.Decimal       `json:"expected_prepayment_amount"`
	NeedDisbursementBy       *time.Time            `json:"need_disbursement_by,omitempty"`
	GeoLocation              string                `json:"geo_location,omitempty"`
	IncomeType               string                `json:"income_type,omitempty"`
	MonthlyIncome            decimal.Decimal       `json:"monthly_income"`
	ProofStrength            string                `json:"proof_strength,omitempty"`
	ExistingDebtsMonthly     decimal.Decimal       `json:"existing_debts_monthly"`
	EstimatedPropertyValue   decimal.Decimal       `json:"estimated_property_value"`
	LegalStatus              string                `json:"legal_status,omitempty"`
	HasLatePayments          bool                  `json:"has_late_payments,omitempty"`
	HasBadDebt               bool                  `json:"has_bad_debt,omitempty"`
	Incomes                  []IncomeSourceRequest `json:"incomes,omitempty"`
	Debts                    []DebtRequest         `json:"debts,omitempty"`
	Collaterals              []CollateralRequest   `json:"collaterals,omitempty"`
	CostVsStabilityPriority  *int                  `json:"cost_vs_stability_priority,omitempty"`
	StuckReasons             []string              `json:"stuck_reasons,omitempty"`
}

// GetApplicationRequest identifies an application to retrieve.
type GetApplicationRequest struct {
	ApplicationID string `json:"application_id"`
}

// GenerateRecommendationsRequest asks for a ranked product list for an
// application.
type GenerateRecommendationsRequest struct {
	ApplicationID string `json:"application_id"`
}

// GetRecommendationRequest identifies a stored recommendation run.
type GetRecommendationRequest struct {
	RecommendationID string `json:"recommendation_id"`
}

// ListProductsRequest filters the product catalog.
type ListProductsRequest struct {
	IncludeInactive bool `json:"include_inactive,omitempty"`
}

// SimulateScheduleRequest runs one product against an ad-hoc loan.
type SimulateScheduleRequest struct {
	ProductID        string          `json:"product_id"`
	Principal        decimal.Decimal `json:"principal"`
	TenorMonths      int             `json:"tenor_months"`
	PrepaymentMonth  int             `json:"prepayment_month,omitempty"`
	PrepaymentAmount decimal.Decimal `json:"prepayment_amount"`
	PropertyValue    decimal.Decimal `json:"property_value"`
	// StressLevel picks the schedule returned ("+0%", "+2%", "+4%"); the
	// scenario summaries always cover every level.
	StressLevel string    `json:"stress_level,omitempty"`
	StartDate   time.Time `json:"start_date,omitempty"`
}

// SyncCatalogRequest triggers a catalog reload.
type SyncCatalogRequest struct {
	Trigger string `json:"trigger,omitempty"`
}

// ---------------------------------------------------------------------------
// Response DTOs
// ---------------------------------------------------------------------------

// MetricsResponse are the derived affordability ratios. Absent ratios could
// not be computed.
type MetricsResponse struct {
	TotalIncome       decimal.Decimal `json:"total_income"`
	TotalDebtPayments decimal.Decimal `json:"total_debt_payments"`
	PropertyValue     decimal.Decimal `json:"property_value"`
	DSR               *float64        `json:"dsr,omitempty"`
	LTV               *float64        `json:"ltv,omitempty"`
	DTI               *float64        `json:"dti,omitempty"`
}

// ApplicationResponse is the external representation of an application.
type ApplicationResponse struct {
	ID                      string          `json:"id"`
	Purpose                 string          `json:"purpose"`
	LoanAmount              decimal.Decimal `json:"loan_amount"`
	TenorMonths             int             `json:"tenor_months"`
	RepaymentStrategy       string          `json:"repayment_strategy"`
	PlannedHoldMonths       int             `json:"planned_hold_months,omitempty"`
	ExpectedPrepaymentMonth int             `json:"expected_prepayment_month,omitempty"`
	GeoLocation             string          `json:"geo_location,omitempty"`
	StuckReasons            []string        `json:"stuck_reasons,omitempty"`
	Metrics                 MetricsResponse `json:"metrics"`
	Version                 int             `json:"version"`
	CreatedAt               time.Time       `json:"created_at"`
	UpdatedAt               time.Time       `json:"updated_at"`
}

// ScenarioResponse summarises one stress scenario.
type ScenarioResponse struct {
	StressLevel                 string          `json:"stress_level"`
	APR                         float64         `json:"apr"`
	MonthlyPaymentFirst12M      decimal.Decimal `json:"monthly_payment_first_12m"`
	MonthlyPaymentPostPromo     decimal.Decimal `json:"monthly_payment_post_promo"`
	TotalInterest               decimal.Decimal `json:"total_interest"`
	TotalFees                   decimal.Decimal `json:"total_fees"`
	TotalInsurance              decimal.Decimal `json:"total_insurance"`
	TotalCostExcludingPrincipal decimal.Decimal `json:"total_cost_excluding_principal"`
	TotalOutOfPocket            decimal.Decimal `json:"total_out_of_pocket"`
	PrepaymentFee               decimal.Decimal `json:"prepayment_fee"`
}

// ScoresResponse is the factor breakdown behind a fit score.
type ScoresResponse struct {
	Cost      float64 `json:"cost"`
	Stability float64 `json:"stability"`
	Approval  float64 `json:"approval"`
	Speed     float64 `json:"speed"`
	Penalties float64 `json:"penalties"`
	Total     float64 `json:"total"`
}

// RatesResponse describes the pricing a recommendation was computed with.
type RatesResponse struct {
	FixedRatePct      decimal.Decimal `json:"fixed_rate_pct"`
	FixedMonths       int             `json:"fixed_months"`
	FloatingMarginPct decimal.Decimal `json:"floating_margin_pct"`
	ReferenceRatePct  decimal.Decimal `json:"reference_rate_pct"`
}

// EstimatedCostsResponse are the headline cost figures.
type EstimatedCostsResponse struct {
	Month1Payment    decimal.Decimal `json:"month1_payment"`
	Year1Total       decimal.Decimal `json:"year1_total"`
	Total3Y          decimal.Decimal `json:"total_3y"`
	Total5Y          decimal.Decimal `json:"total_5y"`
	StressMaxMonthly decimal.Decimal `json:"stress_max_monthly"`
}

// ExitCostResponse projects paying off at the end of the promo period.
type ExitCostResponse struct {
	PrepaymentMonth    int             `json:"prepayment_month"`
	RemainingPrincipal decimal.Decimal `json:"remaining_principal"`
	InterestPaid       decimal.Decimal `json:"interest_paid"`
	FeesPaid           decimal.Decimal `json:"fees_paid"`
	PrepaymentFee      decimal.Decimal `json:"prepayment_fee"`
	TotalCostToExit    decimal.Decimal `json:"total_cost_to_exit"`
}

// RecommendationResultResponse is one ranked product.
type RecommendationResultResponse struct {
	ProductID                 string                 `json:"product_id"`
	BankName                  string                 `json:"bank_name"`
	ProductName               string                 `json:"product_name"`
	FitScore                  int                    `json:"fit_score"`
	ApprovalBucket            string                 `json:"approval_bucket"`
	Scores                    ScoresResponse         `json:"scores"`
	WhyFit                    []string               `json:"why_fit"`
	Risks                     []string               `json:"risks"`
	EstimatedCosts            EstimatedCostsResponse `json:"estimated_costs"`
	Scenarios                 []ScenarioResponse     `json:"scenarios"`
	Rates                     RatesResponse          `json:"rates"`
	RepaymentMethod           string                 `json:"repayment_method"`
	GracePrincipalMonths      int                    `json:"grace_principal_months,omitempty"`
	SuggestedTenorMonths      int                    `json:"suggested_tenor_months"`
	ExitAtPromoEnd            *ExitCostResponse      `json:"exit_at_promo_end,omitempty"`
	EstimatedDisbursementDays int                    `json:"estimated_disbursement_days"`
	DataConfidenceScore       int                    `json:"data_confidence_score"`
	Assumptions               []string               `json:"assumptions"`
	NextSteps                 []string               `json:"next_steps"`
	CatalogUpdatedAt          time.Time              `json:"catalog_updated_at"`
}

// RejectedCandidateResponse is a product the borrower does not qualify for.
type RejectedCandidateResponse struct {
	ProductID    string   `json:"product_id"`
	BankName     string   `json:"bank_name"`
	ProductName  string   `json:"product_name"`
	ReasonCode   string   `json:"reason_code"`
	ReasonDetail string   `json:"reason_detail"`
	AllReasons   []string `json:"all_reasons"`
}

// CandidateFailureResponse is a product that could not be evaluated.
type CandidateFailureResponse struct {
	CandidateID string `json:"candidate_id"`
	Error       string `json:"error"`
}

// RecommendationResponse is a stored recommendation run.
type RecommendationResponse struct {
	ID              string                         `json:"id"`
	ApplicationID   string                         `json:"application_id"`
	Recommendations []RecommendationResultResponse `json:"recommendations"`
	Rejected        []RejectedCandidateResponse    `json:"rejected"`
	Failures        []CandidateFailureResponse     `json:"failures,omitempty"`
	NextSteps       []string                       `json:"next_steps"`
	CandidateCount  int                            `json:"candidate_count"`
	Metrics         MetricsResponse                `json:"metrics"`
	CreatedAt       time.Time                      `json:"created_at"`
}

// ProductResponse is the external representation of a catalog product.
type ProductResponse struct {
	ID              string          `json:"id"`
	BankID          string          `json:"bank_id"`
	BankName        string          `json:"bank_name"`
	BankShortName   string          `json:"bank_short_name,omitempty"`
	Name            string          `json:"name"`
	Purpose         string          `json:"purpose"`
	MinLoanAmount   decimal.Decimal `json:"min_loan_amount"`
	MaxLoanAmount   decimal.Decimal `json:"max_loan_amount"`
	MaxLTVPct       decimal.Decimal `json:"max_ltv_pct"`
	MinTermMonths   int             `json:"min_term_months"`
	MaxTermMonths   int             `json:"max_term_months"`
	Rates           RatesResponse   `json:"rates"`
	RepaymentMethod string          `json:"repayment_method"`
	ProcessingDays  int             `json:"processing_days,omitempty"`
	DataConfidence  int             `json:"data_confidence"`
	ReferenceURL    string          `json:"reference_url,omitempty"`
	Active          bool            `json:"active"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// ListProductsResponse wraps a catalog listing.
type ListProductsResponse struct {
	Products []ProductResponse `json:"products"`
	Count    int               `json:"count"`
}

// MonthlyPaymentResponse is one schedule row.
type MonthlyPaymentResponse struct {
	Month            int             `json:"month"`
	DueDate          time.Time       `json:"due_date"`
	Interest         decimal.Decimal `json:"interest"`
	Principal        decimal.Decimal `json:"principal"`
	Prepayment       decimal.Decimal `json:"prepayment"`
	Payment          decimal.Decimal `json:"payment"`
	RemainingBalance decimal.Decimal `json:"remaining_balance"`
	Fees             decimal.Decimal `json:"fees"`
	Insurance        decimal.Decimal `json:"insurance"`
	RateApplied      decimal.Decimal `json:"rate_applied"`
	IsGracePeriod    bool            `json:"is_grace_period,omitempty"`
}

// SimulateScheduleResponse is a product's schedule and stress scenarios for
// an ad-hoc loan.
type SimulateScheduleResponse struct {
	ProductID      string                   `json:"product_id"`
	TenorMonths    int                      `json:"tenor_months"`
	StressLevel    string                   `json:"stress_level"`
	Rates          RatesResponse            `json:"rates"`
	Schedule       []MonthlyPaymentResponse `json:"schedule"`
	UpfrontFees    decimal.Decimal          `json:"upfront_fees"`
	TotalInterest  decimal.Decimal          `json:"total_interest"`
	TotalPrincipal decimal.Decimal          `json:"total_principal"`
	TotalPayments  decimal.Decimal          `json:"total_payments"`
	TotalFees      decimal.Decimal          `json:"total_fees"`
	TotalInsurance decimal.Decimal          `json:"total_insurance"`
	APR            float64                  `json:"apr"`
	Scenarios      []ScenarioResponse       `json:"scenarios"`
	ExitAtPromoEnd *ExitCostResponse        `json:"exit_at_promo_end,omitempty"`
}

// SyncCatalogResponse reports a completed catalog sync.
type SyncCatalogResponse struct {
	SyncID       string    `json:"sync_id"`
	Source       string    `json:"source"`
	Checksum     string    `json:"checksum"`
	BankCount    int       `json:"bank_count"`
	ProductCount int       `json:"product_count"`
	Skipped      int       `json:"skipped"`
	SyncedAt     time.Time `json:"synced_at"`
}
