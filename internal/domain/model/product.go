package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

// DefaultDataConfidence is used when a bank has no confidence score.
const DefaultDataConfidence = 50

// ---------------------------------------------------------------------------
// Bank
// ---------------------------------------------------------------------------

// ProcessingSLA holds a bank's published turnaround times in days.
type ProcessingSLA struct {
	PreApprovalDays   int
	AppraisalDays     int
	FinalApprovalDays int
	DisbursementDays  int
}

// TotalDays is the end-to-end processing time.
func (s ProcessingSLA) TotalDays() int {
	return s.PreApprovalDays + s.AppraisalDays + s.FinalApprovalDays + s.DisbursementDays
}

// Bank is the lender offering a product.
type Bank struct {
	ID                  string
	Name                string
	ShortName           string
	CoverageProvinces   []string
	SLA                 *ProcessingSLA
	DataConfidenceScore int
}

// DataConfidence returns the score, defaulting when unset.
func (b Bank) DataConfidence() int {
	if b.DataConfidenceScore <= 0 {
		return DefaultDataConfidence
	}
	return b.DataConfidenceScore
}

// Covers reports whether the bank lends in province. An empty coverage list
// means nationwide.
func (b Bank) Covers(province string) bool {
	if len(b.CoverageProvinces) == 0 || province == "" {
		return true
	}
	for _, p := range b.CoverageProvinces {
		if p == province {
			return true
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// Product terms
// ---------------------------------------------------------------------------

// PromoOption is one fixed-rate promotional package.
type PromoOption struct {
	FixedRatePct decimal.Decimal
	FixedMonths  int
}

// FloatingTerms describes pricing after the promotional period.
type FloatingTerms struct {
	MarginPct          decimal.Decimal
	ReferenceRatePct   decimal.Decimal
	ReferenceRateName  string
	ReferenceSourceURL string
	HasCapsFloors      bool
}

// EligibilityRules are the hard constraints a borrower must satisfy. Empty
// lists and nil limits mean "no constraint".
type EligibilityRules struct {
	IncomeTypes     []valueobject.IncomeType
	MinIncome       decimal.Decimal
	CollateralTypes []valueobject.CollateralType
	MaxDSR          *float64
	MaxLTV          *float64
}

// AcceptsIncome reports whether t is among the supported income types.
func (r EligibilityRules) AcceptsIncome(t valueobject.IncomeType) bool {
	if len(r.IncomeTypes) == 0 {
		return true
	}
	for _, it := range r.IncomeTypes {
		if it == t {
			return true
		}
	}
	return false
}

// AcceptsAnyCollateral reports whether at least one of types is allowed.
func (r EligibilityRules) AcceptsAnyCollateral(types []valueobject.CollateralType) bool {
	if len(r.CollateralTypes) == 0 || len(types) == 0 {
		return true
	}
	for _, want := range types {
		for _, allowed := range r.CollateralTypes {
			if want == allowed {
				return true
			}
		}
	}
	return false
}

// ---------------------------------------------------------------------------
// ProductCandidate
// ---------------------------------------------------------------------------

// ProductCandidate is a catalog product as seen by the recommendation engine.
type ProductCandidate struct {
	ID                   string
	Bank                 Bank
	Name                 string
	Purpose              valueobject.LoanPurpose
	MinLoanAmount        decimal.Decimal
	MaxLoanAmount        decimal.Decimal
	MaxLTVPct            decimal.Decimal
	MinTermMonths        int
	MaxTermMonths        int
	Eligibility          EligibilityRules
	PromoOptions         []PromoOption
	Floating             FloatingTerms
	Fees                 FeeStructure
	RepaymentMethod      valueobject.RepaymentMethod
	GracePrincipalMonths int
	SLADaysEstimate      int
	ReferenceURL         string
	RateAssumptions      string
	Active               bool
	UpdatedAt            time.Time
}

// Validate checks the invariants the engine relies on.
func (p ProductCandidate) Validate() error {
	if p.ID == "" {
		return errors.New("product ID is required")
	}
	if p.Purpose.IsZero() {
		return fmt.Errorf("product %s: purpose is required", p.ID)
	}
	if p.MinTermMonths < 0 || p.MaxTermMonths < 0 {
		return fmt.Errorf("product %s: term bounds must not be negative", p.ID)
	}
	if p.MaxTermMonths > 0 && p.MinTermMonths > p.MaxTermMonths {
		return fmt.Errorf("product %s: min term %d exceeds max term %d", p.ID, p.MinTermMonths, p.MaxTermMonths)
	}
	for _, o := range p.PromoOptions {
		if o.FixedMonths < 0 || o.FixedRatePct.IsNegative() {
			return fmt.Errorf("product %s: invalid promo option", p.ID)
		}
	}
	if _, err := NewPrepaymentTiers(p.Fees.PrepaymentTiers); err != nil {
		return fmt.Errorf("product %s: %w", p.ID, err)
	}
	return nil
}

// RateStructure builds the pricing from the first promo option and the
// floating terms.
func (p ProductCandidate) RateStructure() RateStructure {
	var promo PromoOption
	if len(p.PromoOptions) > 0 {
		promo = p.PromoOptions[0]
	}
	ref := p.Floating.ReferenceRatePct
	if ref.IsZero() {
		ref = DefaultReferenceRatePct
	}
	return RateStructure{
		FixedRatePct:      promo.FixedRatePct,
		FixedMonths:       promo.FixedMonths,
		FloatingMarginPct: p.Floating.MarginPct,
		ReferenceRatePct:  ref,
	}
}

// LongestFixedMonths returns the longest promotional fixed period offered.
func (p ProductCandidate) LongestFixedMonths() int {
	longest := 0
	for _, o := range p.PromoOptions {
		longest = max(longest, o.FixedMonths)
	}
	return longest
}

// ProcessingDays returns the bank SLA total, else the product estimate, else
// zero when unknown. An SLA block whose stages sum to zero counts as unknown.
func (p ProductCandidate) ProcessingDays() int {
	if p.Bank.SLA != nil && p.Bank.SLA.TotalDays() > 0 {
		return p.Bank.SLA.TotalDays()
	}
	return p.SLADaysEstimate
}

// MaxTerm returns the maximum tenor, defaulting to 360 months.
func (p ProductCandidate) MaxTerm() int {
	if p.MaxTermMonths <= 0 {
		return 360
	}
	return p.MaxTermMonths
}

// MinTerm returns the minimum tenor, defaulting to 12 months.
func (p ProductCandidate) MinTerm() int {
	if p.MinTermMonths <= 0 {
		return 12
	}
	return p.MinTermMonths
}
