package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

// longHoldTargetTenorMonths is the preferred tenor for long-hold borrowers.
const longHoldTargetTenorMonths = 240

// OptimalTenor returns the tenor to price a product at: the borrower's own
// tenor when given, else the product maximum for UNCERTAIN and EARLY_EXIT,
// else 240 months clamped to the product bounds.
func OptimalTenor(profile model.ApplicationProfile, product model.ProductCandidate) int {
	if profile.TenorMonths > 0 {
		return profile.TenorMonths
	}
	minTerm, maxTerm := product.MinTerm(), product.MaxTerm()
	if profile.Strategy().Equal(valueobject.RepaymentStrategyLongHold) {
		return max(minTerm, min(longHoldTargetTenorMonths, maxTerm))
	}
	return maxTerm
}

// EligibilityFilter applies the hard pass/fail rules of a product.
type EligibilityFilter struct{}

// NewEligibilityFilter returns a new filter.
func NewEligibilityFilter() *EligibilityFilter {
	return &EligibilityFilter{}
}

// Check runs every rule and returns the failed ones in check order. The
// product is eligible when the result is empty. Fields the borrower did not
// provide skip the corresponding rule.
func (f *EligibilityFilter) Check(
	profile model.ApplicationProfile,
	metrics model.ApplicationMetrics,
	product model.ProductCandidate,
	tenorMonths int,
) []valueobject.ReasonCode {
	var reasons []valueobject.ReasonCode
	fail := func(code valueobject.ReasonCode) { reasons = append(reasons, code) }

	if !product.Purpose.IsZero() && !profile.Purpose.IsZero() && !product.Purpose.Matches(profile.Purpose) {
		fail(valueobject.ReasonPurposeNotSupported)
	}

	if product.MinTermMonths > 0 && tenorMonths < product.MinTermMonths {
		fail(valueobject.ReasonTenorTooShort)
	}
	if product.MaxTermMonths > 0 && tenorMonths > product.MaxTermMonths {
		fail(valueobject.ReasonTenorTooLong)
	}

	if metrics.PropertyValue.IsPositive() && product.MaxLTVPct.IsPositive() {
		maxLoan := metrics.PropertyValue.Mul(product.MaxLTVPct).Div(decimal.NewFromInt(100))
		if profile.LoanAmount.GreaterThan(maxLoan) {
			fail(valueobject.ReasonLTVExceedsMax)
		}
	}

	if product.MinLoanAmount.IsPositive() && profile.LoanAmount.LessThan(product.MinLoanAmount) {
		fail(valueobject.ReasonLoanAmountTooLow)
	}
	if product.MaxLoanAmount.IsPositive() && profile.LoanAmount.GreaterThan(product.MaxLoanAmount) {
		fail(valueobject.ReasonLoanAmountTooHigh)
	}

	rules := product.Eligibility
	if !profile.IncomeType.IsZero() && !rules.AcceptsIncome(profile.IncomeType) {
		fail(valueobject.ReasonIncomeTypeNotSupported)
	}
	if rules.MinIncome.IsPositive() && metrics.TotalIncome.IsPositive() && metrics.TotalIncome.LessThan(rules.MinIncome) {
		fail(valueobject.ReasonIncomeBelowMin)
	}
	if !rules.AcceptsAnyCollateral(profile.CollateralTypes()) {
		fail(valueobject.ReasonCollateralTypeNotAllowed)
	}
	if !product.Bank.Covers(profile.GeoLocation) {
		fail(valueobject.ReasonGeoNotSupported)
	}
	if rules.MaxDSR != nil && metrics.DSR != nil && *metrics.DSR > *rules.MaxDSR {
		fail(valueobject.ReasonDSRExceedsMax)
	}

	return reasons
}
