package service_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/service"
)

func TestMetricsCalculator_Calculate(t *testing.T) {
	calc := service.NewMetricsCalculator()

	t.Run("itemised amounts beat smaller declared totals", func(t *testing.T) {
		p := model.ApplicationProfile{
			LoanAmount:    d("800000000"),
			MonthlyIncome: d("35000000"),
			Incomes: []model.IncomeSource{
				{MonthlyAmount: d("30000000")},
				{MonthlyAmount: d("10000000")},
			},
			Debts: []model.Debt{{MonthlyPayment: d("10000000"), Outstanding: d("240000000")}},
			Collaterals: []model.Collateral{
				{EstimatedValue: d("1000000000")},
				{EstimatedValue: d("600000000")},
			},
		}

		m := calc.Calculate(p)
		assert.True(t, m.TotalIncome.Equal(d("40000000")))
		assert.True(t, m.TotalDebtPayments.Equal(d("10000000")))
		assert.True(t, m.PropertyValue.Equal(d("1600000000")))

		require.NotNil(t, m.DSR)
		assert.InDelta(t, 0.25, *m.DSR, 1e-9)
		require.NotNil(t, m.LTV)
		assert.InDelta(t, 0.5, *m.LTV, 1e-9)
		require.NotNil(t, m.DTI)
		assert.InDelta(t, 0.5, *m.DTI, 1e-9)
	})

	t.Run("declared property value wins over collateral", func(t *testing.T) {
		p := model.ApplicationProfile{
			LoanAmount:             d("500000000"),
			EstimatedPropertyValue: d("2000000000"),
			Collaterals:            []model.Collateral{{EstimatedValue: d("1000000000")}},
		}
		m := calc.Calculate(p)
		assert.True(t, m.PropertyValue.Equal(d("2000000000")))
	})

	t.Run("missing denominators leave ratios nil", func(t *testing.T) {
		m := calc.Calculate(model.ApplicationProfile{LoanAmount: d("500000000")})
		assert.Nil(t, m.DSR)
		assert.Nil(t, m.DTI)
		assert.Nil(t, m.LTV)
	})
}
