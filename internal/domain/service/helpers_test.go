package service_test

import (
	"github.com/shopspring/decimal"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func ptr[T any](v T) *T { return &v }

// newProduct returns a product that newProfile passes every rule of.
func newProduct(id, fixedRatePct string) model.ProductCandidate {
	return model.ProductCandidate{
		ID:              id,
		Bank:            model.Bank{ID: "bank-vcb", Name: "Vietcombank", ShortName: "VCB"},
		Name:            "Home Loan " + id,
		Purpose:         valueobject.LoanPurposeHomePurchase,
		MinLoanAmount:   d("100000000"),
		MaxLoanAmount:   d("10000000000"),
		MaxLTVPct:       d("70"),
		MinTermMonths:   12,
		MaxTermMonths:   300,
		PromoOptions:    []model.PromoOption{{FixedRatePct: d(fixedRatePct), FixedMonths: 12}},
		Floating:        model.FloatingTerms{MarginPct: d("3.5"), ReferenceRatePct: d("5")},
		Fees:            model.FeeStructure{OriginationPct: d("0.5")},
		SLADaysEstimate: 14,
		Active:          true,
	}
}

func newProfile() model.ApplicationProfile {
	return model.ApplicationProfile{
		Purpose:                valueobject.LoanPurposeHomePurchase,
		LoanAmount:             d("1000000000"),
		TenorMonths:            240,
		IncomeType:             valueobject.IncomeTypeSalary,
		MonthlyIncome:          d("50000000"),
		EstimatedPropertyValue: d("2000000000"),
	}
}
