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
// ApplicationProfile – borrower snapshot consumed by the engine
// ---------------------------------------------------------------------------

// IncomeSource is one monthly income stream.
type IncomeSource struct {
	Type          valueobject.IncomeType
	MonthlyAmount decimal.Decimal
	ProofStrength valueobject.ProofStrength
}

// Debt is an existing obligation.
type Debt struct {
	Kind           string
	MonthlyPayment decimal.Decimal
	Outstanding    decimal.Decimal
}

// Collateral is an asset offered as security.
type Collateral struct {
	Type           valueobject.CollateralType
	EstimatedValue decimal.Decimal
	Province       string
	LegalStatus    valueobject.LegalStatus
}

// Preferences are the borrower's soft priorities.
type Preferences struct {
	// CostVsStabilityPriority runs from 0 (cheapest) to 100 (most stable).
	CostVsStabilityPriority *int
}

// CostVsStability returns the priority as a fraction, defaulting to 0.5.
func (p Preferences) CostVsStability() float64 {
	if p.CostVsStabilityPriority == nil {
		return 0.5
	}
	v := *p.CostVsStabilityPriority
	switch {
	case v < 0:
		v = 0
	case v > 100:
		v = 100
	}
	return float64(v) / 100
}

// CreditFlags are the bureau signals that affect approval odds.
type CreditFlags struct {
	HasLatePayments bool
	HasBadDebt      bool
}

// ApplicationProfile is the validated borrower input. Zero values mean
// "not provided": TenorMonths 0 lets the engine choose, a zero
// IncomeType skips the income-type check, and so on.
type ApplicationProfile struct {
	Purpose                  valueobject.LoanPurpose
	LoanAmount               decimal.Decimal
	TenorMonths              int
	RepaymentStrategy        valueobject.RepaymentStrategy
	PlannedHoldMonths        int
	ExpectedPrepaymentMonth  int
	ExpectedPrepaymentAmount decimal.Decimal
	NeedDisbursementBy       *time.Time
	GeoLocation              string
	IncomeType               valueobject.IncomeType
	MonthlyIncome            decimal.Decimal
	ProofStrength            valueobject.ProofStrength
	ExistingDebtsMonthly     decimal.Decimal
	EstimatedPropertyValue   decimal.Decimal
	LegalStatus              valueobject.LegalStatus
	CreditFlags              CreditFlags
	Incomes                  []IncomeSource
	Debts                    []Debt
	Collaterals              []Collateral
	Preferences              Preferences
	StuckReasons             []string
}

// Validate checks the fields the engine cannot default.
func (p ApplicationProfile) Validate() error {
	if !p.LoanAmount.IsPositive() {
		return errors.New("loan amount must be positive")
	}
	if p.TenorMonths < 0 {
		return errors.New("tenor months must not be negative")
	}
	if p.PlannedHoldMonths < 0 || p.ExpectedPrepaymentMonth < 0 {
		return errors.New("hold and prepayment months must not be negative")
	}
	if p.ExpectedPrepaymentAmount.IsNegative() {
		return errors.New("prepayment amount must not be negative")
	}
	return nil
}

// Strategy returns the repayment strategy, defaulting to UNCERTAIN.
func (p ApplicationProfile) Strategy() valueobject.RepaymentStrategy {
	if p.RepaymentStrategy.IsZero() {
		return valueobject.RepaymentStrategyUncertain
	}
	return p.RepaymentStrategy
}

// Prepayment returns the planned early repayment, or nil when none is planned.
func (p ApplicationProfile) Prepayment() *PrepaymentInfo {
	if p.ExpectedPrepaymentMonth <= 0 {
		return nil
	}
	return &PrepaymentInfo{Month: p.ExpectedPrepaymentMonth, Amount: p.ExpectedPrepaymentAmount}
}

// CollateralTypes lists the types of all pledged collateral.
func (p ApplicationProfile) CollateralTypes() []valueobject.CollateralType {
	types := make([]valueobject.CollateralType, 0, len(p.Collaterals))
	for _, c := range p.Collaterals {
		if !c.Type.IsZero() {
			types = append(types, c.Type)
		}
	}
	return types
}

// ---------------------------------------------------------------------------
// ApplicationMetrics – derived affordability ratios
// ---------------------------------------------------------------------------

// ApplicationMetrics are computed from a profile before the engine runs. A
// nil ratio means it could not be computed.
type ApplicationMetrics struct {
	TotalIncome       decimal.Decimal
	TotalDebtPayments decimal.Decimal
	PropertyValue     decimal.Decimal
	DSR               *float64
	LTV               *float64
	DTI               *float64
}

// ---------------------------------------------------------------------------
// Application aggregate root
// ---------------------------------------------------------------------------

// Application is a persisted borrower application. It is immutable; the
// profile is a value snapshot.
type Application struct {
	events.EventCollector

	id        string
	profile   ApplicationProfile
	version   int
	createdAt time.Time
	updatedAt time.Time
}

// NewApplication validates the profile and records ApplicationSubmitted.
func NewApplication(profile ApplicationProfile, now time.Time) (*Application, error) {
	if err := profile.Validate(); err != nil {
		return nil, err
	}

	app := &Application{
		id:        uuid.New().String(),
		profile:   profile,
		version:   1,
		createdAt: now,
		updatedAt: now,
	}
	app.Record(event.NewApplicationSubmitted(
		app.id,
		profile.Purpose.String(),
		profile.LoanAmount,
		profile.TenorMonths,
		profile.Strategy().String(),
		now,
	))
	return app, nil
}

// ReconstructApplication rebuilds an aggregate from persistence without side-effects.
func ReconstructApplication(id string, profile ApplicationProfile, version int, createdAt, updatedAt time.Time) *Application {
	return &Application{
		id:        id,
		profile:   profile,
		version:   version,
		createdAt: createdAt,
		updatedAt: updatedAt,
	}
}

func (a *Application) ID() string { return a.id }
func (a *Application) Profile() ApplicationProfile { return a.profile }
func (a *Application) Version() int { return a.version }
func (a *Application) CreatedAt() time.Time { return a.createdAt }
func (a *Application) UpdatedAt() time.Time { return a.updatedAt }
