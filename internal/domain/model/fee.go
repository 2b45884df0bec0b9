package model

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

// ErrInvalidPrepaymentTiers is returned when a tier list does not tile the
// month axis.
var ErrInvalidPrepaymentTiers = errors.New("invalid prepayment tiers")

var twelve = decimal.NewFromInt(12)

// ---------------------------------------------------------------------------
// PrepaymentTier / PrepaymentTiers
// ---------------------------------------------------------------------------

// PrepaymentTier is a month range with the penalty charged on a payoff inside
// it. MonthsTo == 0 marks the open-ended last tier.
type PrepaymentTier struct {
	MonthsFrom int
	MonthsTo   int
	FeePct     decimal.Decimal
}

// IsOpenEnded reports whether the tier has no upper month bound.
func (t PrepaymentTier) IsOpenEnded() bool { return t.MonthsTo == 0 }

func (t PrepaymentTier) contains(month int) bool {
	return month >= t.MonthsFrom && (t.IsOpenEnded() || month <= t.MonthsTo)
}

// PrepaymentTiers is an ordered, contiguous tier list.
type PrepaymentTiers []PrepaymentTier

// NewPrepaymentTiers sorts and validates tiers. The first tier must start at
// month 1, each tier must start the month after the previous one ends, and
// only the last tier may be open-ended. An empty list is valid.
func NewPrepaymentTiers(tiers []PrepaymentTier) (PrepaymentTiers, error) {
	if len(tiers) == 0 {
		return nil, nil
	}

	sorted := make(PrepaymentTiers, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].MonthsFrom < sorted[j].MonthsFrom })

	if sorted[0].MonthsFrom != 1 {
		return nil, fmt.Errorf("%w: first tier starts at month %d", ErrInvalidPrepaymentTiers, sorted[0].MonthsFrom)
	}
	for i, t := range sorted {
		if t.FeePct.IsNegative() {
			return nil, fmt.Errorf("%w: negative fee in tier %d", ErrInvalidPrepaymentTiers, i+1)
		}
		last := i == len(sorted)-1
		if t.IsOpenEnded() {
			if !last {
				return nil, fmt.Errorf("%w: open-ended tier %d is not last", ErrInvalidPrepaymentTiers, i+1)
			}
			continue
		}
		if t.MonthsTo < t.MonthsFrom {
			return nil, fmt.Errorf("%w: tier %d ends before it starts", ErrInvalidPrepaymentTiers, i+1)
		}
		if !last && sorted[i+1].MonthsFrom != t.MonthsTo+1 {
			return nil, fmt.Errorf("%w: gap or overlap after month %d", ErrInvalidPrepaymentTiers, t.MonthsTo)
		}
	}
	return sorted, nil
}

// FeePctAt returns the fee percentage of the tier containing month, or zero.
func (ts PrepaymentTiers) FeePctAt(month int) decimal.Decimal {
	for _, t := range ts {
		if t.contains(month) {
			return t.FeePct
		}
	}
	return decimal.Zero
}

// Fee returns the prepayment penalty for paying off amount in month.
func (ts PrepaymentTiers) Fee(amount decimal.Decimal, month int) decimal.Decimal {
	pct := ts.FeePctAt(month)
	if pct.IsZero() {
		return decimal.Zero
	}
	return amount.Mul(pct).Div(hundred).Round(2)
}

// ---------------------------------------------------------------------------
// FeeStructure
// ---------------------------------------------------------------------------

// FeeStructure holds every charge a product levies besides interest.
// Percentages are in percent; OriginationMax of zero means uncapped.
type FeeStructure struct {
	OriginationPct        decimal.Decimal
	OriginationMin        decimal.Decimal
	OriginationMax        decimal.Decimal
	AppraisalFee          decimal.Decimal
	DisbursementFee       decimal.Decimal
	DisbursementPct       decimal.Decimal
	MonthlyMaintenanceFee decimal.Decimal
	InsuranceAnnualPct    decimal.Decimal
	InsuranceAnnualAmount decimal.Decimal
	InsuranceBasis        valueobject.InsuranceBasis
	PrepaymentTiers       PrepaymentTiers
}

// UpfrontFees returns the fees charged at disbursement.
func (f FeeStructure) UpfrontFees(principal decimal.Decimal) decimal.Decimal {
	origination := principal.Mul(f.OriginationPct).Div(hundred)
	origination = decimal.Max(origination, f.OriginationMin)
	if f.OriginationMax.IsPositive() {
		origination = decimal.Min(origination, f.OriginationMax)
	}

	total := origination.
		Add(f.AppraisalFee).
		Add(f.DisbursementFee).
		Add(principal.Mul(f.DisbursementPct).Div(hundred))
	return total.Round(2)
}

// MonthlyInsurance returns the insurance premium for one month given the
// start-of-month balance and the collateral value.
func (f FeeStructure) MonthlyInsurance(balance, propertyValue decimal.Decimal) decimal.Decimal {
	if f.InsuranceAnnualAmount.IsPositive() {
		return f.InsuranceAnnualAmount.Div(twelve).Round(2)
	}
	if !f.InsuranceAnnualPct.IsPositive() {
		return decimal.Zero
	}
	base := balance
	if f.InsuranceBasis.IsPropertyValue() && propertyValue.IsPositive() {
		base = propertyValue
	}
	return base.Mul(f.InsuranceAnnualPct).Div(hundred).Div(twelve).Round(2)
}

// PrepaymentFee returns the penalty for paying off remaining in month.
func (f FeeStructure) PrepaymentFee(remaining decimal.Decimal, month int) decimal.Decimal {
	return f.PrepaymentTiers.Fee(remaining, month)
}
