package testutil

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	if assert.Error(t, err) {
		assert.Contains(t, err.Error(), expected)
	}
}

// AssertDecimalEqual compares decimals by value, ignoring exponent.
func AssertDecimalEqual(t *testing.T, want, got decimal.Decimal, msgAndArgs ...any) bool {
	t.Helper()
	if want.Equal(got) {
		return true
	}
	return assert.Fail(t, "decimals differ: want "+want.String()+", got "+got.String(), msgAndArgs...)
}
