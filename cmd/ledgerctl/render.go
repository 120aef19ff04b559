package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/nutrition"
	"github.com/GG-Muniz/FlavorLab-sub000/store"
)

func grams(v float64) string {
	return decimal.NewFromFloat(v).Round(1).String() + "g"
}

func printSummary(w io.Writer, s *ledger.DailySummary) {
	if s == nil {
		fmt.Fprintln(w, "no summary")
		return
	}
	fmt.Fprintf(w, "%s  %d / %d kcal (%d%%)  remaining %d\n",
		s.EntryDate, s.TotalConsumed, s.DailyGoal, nutrition.SummaryPercentage(s), s.Remaining)
	fmt.Fprintf(w, "protein %s  carbs %s  fat %s  fiber %s\n",
		grams(s.Macros.ProteinG), grams(s.Macros.CarbsG), grams(s.Macros.FatG), grams(s.Macros.FiberG))
	if nutrition.OverGoal(s) {
		fmt.Fprintln(w, "over goal")
	}
}

func printMeals(w io.Writer, meals []ledger.LoggedMeal) {
	if len(meals) == 0 {
		fmt.Fprintln(w, "no entries")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tKCAL\tP\tC\tF")
	for _, m := range meals {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\t%s\t%s\n",
			m.LogID, m.MealType, m.Name, m.Calories, grams(m.ProteinG), grams(m.CarbsG), grams(m.FatG))
	}
	tw.Flush()
}

func printSnapshot(w io.Writer, s store.Snapshot) {
	if s.Degraded {
		fmt.Fprintln(w, "(offline: showing defaults)")
	}
	printSummary(w, s.Summary)
	printMeals(w, s.LoggedMeals)
}

func printTemplates(w io.Writer, s store.Snapshot) {
	if len(s.MealPlans) == 0 {
		fmt.Fprintln(w, "no templates")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTYPE\tNAME\tKCAL\tTODAY")
	for _, t := range s.MealPlans {
		mark := ""
		if s.IsTemplateLoggedToday(t) {
			mark = "eaten"
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%d\t%s\n", t.ID, t.MealType, t.Name, t.Calories, mark)
	}
	tw.Flush()
}

func printHistory(w io.Writer, rows []ledger.DayTotals) {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tKCAL\tGOAL\t%\tMEALS")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\n", r.Date, r.TotalConsumed, r.DailyGoal, r.Percentage, r.MealCount)
	}
	tw.Flush()
}
