package ledger

import (
	"math"

	"github.com/shopspring/decimal"
)

// The ledger rejects fractional calories and macros with more than one
// decimal, so every outgoing number passes through these.

// RoundCalories rounds half away from zero.
func RoundCalories(v float64) int {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return int(math.Round(v))
}

// RoundMacro rounds to one decimal place.
func RoundMacro(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func roundMacroPtr(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := RoundMacro(*v)
	return &r
}

// Float64 is a convenience for building UpdateLogRequest literals.
func Float64(v float64) *float64 { return &v }
