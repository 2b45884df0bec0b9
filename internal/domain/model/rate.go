package model

import (
	"errors"

	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

// DefaultReferenceRatePct is assumed for the floating period when a product
// does not publish its reference rate.
var DefaultReferenceRatePct = decimal.NewFromInt(5)

var hundred = decimal.NewFromInt(100)

// RateStructure is an immutable fixed-then-floating pricing definition. All
// rates are expressed in percent (6.5 = 6.5%).
type RateStructure struct {
	FixedRatePct      decimal.Decimal
	FixedMonths       int
	FloatingMarginPct decimal.Decimal
	ReferenceRatePct  decimal.Decimal
}

// NewRateStructure validates and builds a RateStructure.
func NewRateStructure(fixedRatePct decimal.Decimal, fixedMonths int, marginPct, referencePct decimal.Decimal) (RateStructure, error) {
	if fixedMonths < 0 {
		return RateStructure{}, errors.New("fixed months must not be negative")
	}
	if fixedRatePct.IsNegative() || referencePct.IsNegative() {
		return RateStructure{}, errors.New("rates must not be negative")
	}
	return RateStructure{
		FixedRatePct:      fixedRatePct,
		FixedMonths:       fixedMonths,
		FloatingMarginPct: marginPct,
		ReferenceRatePct:  referencePct,
	}, nil
}

// RateForMonth returns the nominal annual rate, as a decimal fraction, that
// applies to the given 1-based month under the stress level. The stress bump
// only affects the floating period.
func (r RateStructure) RateForMonth(month int, level valueobject.StressLevel) decimal.Decimal {
	if month <= r.FixedMonths {
		return r.FixedRatePct.Div(hundred)
	}
	return r.FloatingRatePct(level).Div(hundred)
}

// FloatingRatePct returns reference + margin + bump, in percent.
func (r RateStructure) FloatingRatePct(level valueobject.StressLevel) decimal.Decimal {
	return r.ReferenceRatePct.Add(r.FloatingMarginPct).Add(level.BumpPct())
}
