// Package nutrition derives display values from ledger data. Nothing here
// touches the network or panics.
package nutrition

import (
	"math"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
)

// Percentage of the goal consumed, rounded and clamped to [0, 100]. A goal of
// zero means "not set" and yields 0. Going over goal shows up as a negative
// Remaining, not as a percentage above 100.
func Percentage(totalConsumed, dailyGoal int) int {
	if dailyGoal <= 0 || totalConsumed <= 0 {
		return 0
	}
	p := int(math.Round(float64(totalConsumed) / float64(dailyGoal) * 100))
	return min(p, 100)
}

// SummaryPercentage accepts a nil summary.
func SummaryPercentage(s *ledger.DailySummary) int {
	if s == nil {
		return 0
	}
	return Percentage(s.TotalConsumed, s.DailyGoal)
}

// Remaining may be negative.
func Remaining(dailyGoal, totalConsumed int) int {
	return dailyGoal - totalConsumed
}

func OverGoal(s *ledger.DailySummary) bool {
	return s != nil && s.DailyGoal > 0 && s.Remaining < 0
}

func TotalCalories(meals []ledger.LoggedMeal) int {
	total := 0
	for _, m := range meals {
		total += m.Calories
	}
	return total
}

// TotalMacros sums each macro field. Sums are rounded to one decimal so the
// result matches what the ledger stores.
func TotalMacros(meals []ledger.LoggedMeal) ledger.Macros {
	var t ledger.Macros
	for _, m := range meals {
		t.ProteinG += m.ProteinG
		t.CarbsG += m.CarbsG
		t.FatG += m.FatG
		t.FiberG += m.FiberG
	}
	return ledger.Macros{
		ProteinG: ledger.RoundMacro(t.ProteinG),
		CarbsG:   ledger.RoundMacro(t.CarbsG),
		FatG:     ledger.RoundMacro(t.FatG),
		FiberG:   ledger.RoundMacro(t.FiberG),
	}
}

// Summarize builds a DailySummary from the entries of one day.
func Summarize(date string, dailyGoal int, meals []ledger.LoggedMeal) ledger.DailySummary {
	if meals == nil {
		meals = []ledger.LoggedMeal{}
	}
	total := TotalCalories(meals)
	return ledger.DailySummary{
		DailyGoal:        dailyGoal,
		TotalConsumed:    total,
		Remaining:        Remaining(dailyGoal, total),
		Macros:           TotalMacros(meals),
		LoggedMealsToday: meals,
		EntryDate:        date,
	}
}
