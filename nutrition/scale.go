package nutrition

import (
	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
)

// ScaleMacros rescales macros recorded for oldCalories to newCalories.
// ok is false when there is no usable ratio: the entry has no protein value
// or oldCalories is not positive. newCalories must be >= 0.
func ScaleMacros(m ledger.Macros, oldCalories int, newCalories float64) (scaled ledger.Macros, ok bool) {
	if m.ProteinG <= 0 || oldCalories <= 0 {
		return m, false
	}
	ratio := newCalories / float64(oldCalories)
	return ledger.Macros{
		ProteinG: ledger.RoundMacro(m.ProteinG * ratio),
		CarbsG:   ledger.RoundMacro(m.CarbsG * ratio),
		FatG:     ledger.RoundMacro(m.FatG * ratio),
		FiberG:   ledger.RoundMacro(m.FiberG * ratio),
	}, true
}

// BuildUpdate produces the full replacement sent when an entry's calories
// are edited. Entries without a macro ratio get a calories-only update.
func BuildUpdate(stored ledger.Macros, oldCalories int, mealType ledger.MealType, newCalories float64) ledger.UpdateLogRequest {
	req := ledger.UpdateLogRequest{MealType: mealType, Calories: ledger.RoundCalories(newCalories)}

	scaled, ok := ScaleMacros(stored, oldCalories, newCalories)
	if !ok {
		return req
	}
	req.Protein = ledger.Float64(scaled.ProteinG)
	req.Carbs = ledger.Float64(scaled.CarbsG)
	req.Fat = ledger.Float64(scaled.FatG)
	req.Fiber = ledger.Float64(scaled.FiberG)
	return req
}
