package service

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
)

// MetricsCalculator derives affordability ratios from an application.
type MetricsCalculator struct{}

// NewMetricsCalculator returns a new calculator.
func NewMetricsCalculator() *MetricsCalculator {
	return &MetricsCalculator{}
}

// Calculate returns income, debt service, property value and the DSR, LTV and
// DTI ratios. Itemised amounts and declared totals are compared and the
// larger one wins. Ratios with a zero denominator are left nil.
func (c *MetricsCalculator) Calculate(p model.ApplicationProfile) model.ApplicationMetrics {
	income := decimal.Zero
	for _, src := range p.Incomes {
		income = income.Add(src.MonthlyAmount)
	}
	income = decimal.Max(income, p.MonthlyIncome)

	debtPayments, outstanding := decimal.Zero, decimal.Zero
	for _, d := range p.Debts {
		debtPayments = debtPayments.Add(d.MonthlyPayment)
		outstanding = outstanding.Add(d.Outstanding)
	}
	debtPayments = decimal.Max(debtPayments, p.ExistingDebtsMonthly)

	property := p.EstimatedPropertyValue
	if !property.IsPositive() {
		property = decimal.Zero
		for _, col := range p.Collaterals {
			property = property.Add(col.EstimatedValue)
		}
	}

	m := model.ApplicationMetrics{
		TotalIncome:       income,
		TotalDebtPayments: debtPayments,
		PropertyValue:     property,
	}
	if income.IsPositive() {
		m.DSR = ratio(debtPayments, income)
		m.DTI = ratio(outstanding, income.Mul(decimal.NewFromInt(12)))
	}
	if property.IsPositive() {
		m.LTV = ratio(p.LoanAmount, property)
	}
	return m
}

func ratio(num, den decimal.Decimal) *float64 {
	v := num.Div(den).InexactFloat64()
	return &v
}
