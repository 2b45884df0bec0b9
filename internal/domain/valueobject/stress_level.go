package valueobject

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// StressLevel is one of the fixed rate-shock scenarios applied to the
// floating period of a loan. The set is closed: base, +2 and +4 percentage
// points.
type StressLevel int

const (
	StressBase StressLevel = iota
	StressPlus2
	StressPlus4

	// StressLevelCount is the number of stress levels; scenario tables are
	// arrays of this length indexed by StressLevel.
	StressLevelCount = 3
)

// StressLevels lists every level in ascending bump order.
var StressLevels = [StressLevelCount]StressLevel{StressBase, StressPlus2, StressPlus4}

var stressBumpPct = [StressLevelCount]int64{0, 2, 4}

var stressKeys = [StressLevelCount]string{"+0%", "+2%", "+4%"}

// NewStressLevel parses a scenario key such as "+2%".
func NewStressLevel(key string) (StressLevel, error) {
	for i, k := range stressKeys {
		if k == key {
			return StressLevel(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStressLevel, key)
}

// BumpPct returns the rate bump in percentage points (0, 2 or 4).
func (s StressLevel) BumpPct() decimal.Decimal {
	return decimal.NewFromInt(stressBumpPct[s])
}

// Bump returns the rate bump as a decimal fraction (0, 0.02 or 0.04).
func (s StressLevel) Bump() decimal.Decimal {
	return s.BumpPct().Div(decimal.NewFromInt(100))
}

// String returns the scenario key ("+0%", "+2%", "+4%").
func (s StressLevel) String() string {
	if s < 0 || int(s) >= StressLevelCount {
		return fmt.Sprintf("StressLevel(%d)", int(s))
	}
	return stressKeys[s]
}
