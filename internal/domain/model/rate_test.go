package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bibbank/mortgage-advisor/internal/domain/model"
	"github.com/bibbank/mortgage-advisor/internal/domain/valueobject"
)

func TestRateStructure_RateForMonth(t *testing.T) {
	rs, err := model.NewRateStructure(d("6"), 12, d("3.5"), d("5"))
	require.NoError(t, err)

	tests := []struct {
		month int
		level valueobject.StressLevel
		want  string
	}{
		{1, valueobject.StressBase, "0.06"},
		{12, valueobject.StressPlus4, "0.06"},
		{13, valueobject.StressBase, "0.085"},
		{13, valueobject.StressPlus2, "0.105"},
		{240, valueobject.StressPlus4, "0.125"},
	}
	for _, tt := range tests {
		got := rs.RateForMonth(tt.month, tt.level)
		assert.True(t, got.Equal(d(tt.want)), "month %d %s: got %s want %s", tt.month, tt.level, got, tt.want)
	}
}

func TestNewRateStructure_Invalid(t *testing.T) {
	_, err := model.NewRateStructure(d("6"), -1, d("3"), d("5"))
	assert.Error(t, err)

	_, err = model.NewRateStructure(d("-6"), 12, d("3"), d("5"))
	assert.Error(t, err)
}

func TestProductCandidate_RateStructureDefaultsReference(t *testing.T) {
	p := model.ProductCandidate{
		PromoOptions: []model.PromoOption{
			{FixedRatePct: d("6.5"), FixedMonths: 12},
			{FixedRatePct: d("7.5"), FixedMonths: 36},
		},
		Floating: model.FloatingTerms{MarginPct: d("3")},
	}

	rs := p.RateStructure()
	assert.True(t, rs.FixedRatePct.Equal(d("6.5")))
	assert.Equal(t, 12, rs.FixedMonths)
	assert.True(t, rs.ReferenceRatePct.Equal(model.DefaultReferenceRatePct))
	assert.Equal(t, 36, p.LongestFixedMonths())
}
