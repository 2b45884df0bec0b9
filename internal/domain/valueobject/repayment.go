package valueobject

import (
	"errors"
	"fmt"
)

// ---------------------------------------------------------------------------
// RepaymentStrategy – immutable value object
// ---------------------------------------------------------------------------

// RepaymentStrategy is the borrower's stated intention for how long the loan
// will be held. It drives tenor selection and scoring weights.
type RepaymentStrategy struct {
	value string
}

const (
	strategyUncertain = "UNCERTAIN"
	strategyEarlyExit = "EARLY_EXIT"
	strategyLongHold  = "LONG_HOLD"
)

var (
	RepaymentStrategyUncertain = RepaymentStrategy{value: strategyUncertain}
	RepaymentStrategyEarlyExit = RepaymentStrategy{value: strategyEarlyExit}
	RepaymentStrategyLongHold  = RepaymentStrategy{value: strategyLongHold}
)

var validRepaymentStrategies = map[string]RepaymentStrategy{
	strategyUncertain: RepaymentStrategyUncertain,
	strategyEarlyExit: RepaymentStrategyEarlyExit,
	strategyLongHold:  RepaymentStrategyLongHold,
}

// NewRepaymentStrategy creates a RepaymentStrategy from a raw string.
func NewRepaymentStrategy(s string) (RepaymentStrategy, error) {
	v, ok := validRepaymentStrategies[s]
	if !ok {
		return RepaymentStrategy{}, fmt.Errorf("invalid repayment strategy: %q", s)
	}
	return v, nil
}

// String returns the string representation of the strategy.
func (s RepaymentStrategy) String() string { return s.value }

// IsZero returns true if the strategy has not been initialised.
func (s RepaymentStrategy) IsZero() bool { return s.value == "" }

// Equal returns true when both strategies carry the same value.
func (s RepaymentStrategy) Equal(other RepaymentStrategy) bool { return s.value == other.value }

// ---------------------------------------------------------------------------
// RepaymentMethod – immutable value object
// ---------------------------------------------------------------------------

// RepaymentMethod selects how principal is repaid over the tenor.
type RepaymentMethod struct {
	value string
}

const (
	methodAnnuity        = "annuity"
	methodEqualPrincipal = "equal_principal"
)

var (
	RepaymentMethodAnnuity        = RepaymentMethod{value: methodAnnuity}
	RepaymentMethodEqualPrincipal = RepaymentMethod{value: methodEqualPrincipal}
)

var validRepaymentMethods = map[string]RepaymentMethod{
	methodAnnuity:        RepaymentMethodAnnuity,
	methodEqualPrincipal: RepaymentMethodEqualPrincipal,
}

// NewRepaymentMethod creates a RepaymentMethod from a raw string. An empty
// string yields the annuity method.
func NewRepaymentMethod(s string) (RepaymentMethod, error) {
	if s == "" {
		return RepaymentMethodAnnuity, nil
	}
	v, ok := validRepaymentMethods[s]
	if !ok {
		return RepaymentMethod{}, fmt.Errorf("invalid repayment method: %q", s)
	}
	return v, nil
}

// String returns the string representation of the method.
func (m RepaymentMethod) String() string {
	if m.value == "" {
		return methodAnnuity
	}
	return m.value
}

// IsEqualPrincipal reports whether principal is repaid in equal portions.
func (m RepaymentMethod) IsEqualPrincipal() bool { return m.value == methodEqualPrincipal }

// Equal returns true when both methods carry the same value.
func (m RepaymentMethod) Equal(other RepaymentMethod) bool { return m.String() == other.String() }

// ---------------------------------------------------------------------------
// InsuranceBasis – immutable value object
// ---------------------------------------------------------------------------

// InsuranceBasis selects the amount a percentage insurance premium applies to.
type InsuranceBasis struct {
	value string
}

const (
	basisOnBalance       = "ON_BALANCE"
	basisOnPropertyValue = "ON_PROPERTY_VALUE"
)

var (
	InsuranceBasisOnBalance       = InsuranceBasis{value: basisOnBalance}
	InsuranceBasisOnPropertyValue = InsuranceBasis{value: basisOnPropertyValue}
)

var validInsuranceBases = map[string]InsuranceBasis{
	basisOnBalance:       InsuranceBasisOnBalance,
	basisOnPropertyValue: InsuranceBasisOnPropertyValue,
	"on_balance":         InsuranceBasisOnBalance,
	"on_property_value":  InsuranceBasisOnPropertyValue,
}

// NewInsuranceBasis creates an InsuranceBasis from a raw string. An empty
// string yields the outstanding-balance basis.
func NewInsuranceBasis(s string) (InsuranceBasis, error) {
	if s == "" {
		return InsuranceBasisOnBalance, nil
	}
	v, ok := validInsuranceBases[s]
	if !ok {
		return InsuranceBasis{}, fmt.Errorf("invalid insurance basis: %q", s)
	}
	return v, nil
}

// String returns the string representation of the basis.
func (b InsuranceBasis) String() string {
	if b.value == "" {
		return basisOnBalance
	}
	return b.value
}

// IsPropertyValue reports whether the premium is charged on the property value.
func (b InsuranceBasis) IsPropertyValue() bool { return b.value == basisOnPropertyValue }

// ---------------------------------------------------------------------------
// Sentinel errors
// ---------------------------------------------------------------------------

var (
	ErrUnknownStressLevel = errors.New("unknown stress level")
)
