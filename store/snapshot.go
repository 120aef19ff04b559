package store

import (
	"strings"
	"time"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
)

// Snapshot is an immutable view of the ledger. Views must not modify the
// slices it carries; the store replaces them wholesale instead.
type Snapshot struct {
	LoggedMeals []ledger.LoggedMeal
	MealPlans   []ledger.MealTemplate
	Summary     *ledger.DailySummary
	IsLoading   bool

	// Degraded is set when the last resync failed and the safe default is
	// installed.
	Degraded bool
	// Version increases every time a resync result is installed.
	Version uint64
}

// DefaultSnapshot is installed when the ledger cannot be read so views
// always have something to render.
func DefaultSnapshot(now time.Time) Snapshot {
	summary := ledger.DefaultSummary(now.Format(ledger.DateLayout))
	return Snapshot{
		LoggedMeals: summary.LoggedMealsToday,
		MealPlans:   []ledger.MealTemplate{},
		Summary:     &summary,
		Degraded:    true,
	}
}

// IsTemplateLoggedToday is best-effort. Entries that carry a template_id are
// matched on it; older entries without one fall back to name and meal type,
// which can confuse two templates sharing a name.
func (s Snapshot) IsTemplateLoggedToday(t ledger.MealTemplate) bool {
	for _, m := range s.LoggedMeals {
		if m.TemplateID != nil {
			if *m.TemplateID == t.ID {
				return true
			}
			continue
		}
		if strings.EqualFold(strings.TrimSpace(m.Name), strings.TrimSpace(t.Name)) &&
			strings.EqualFold(string(m.MealType), string(t.MealType)) {
			return true
		}
	}
	return false
}

func (s Snapshot) findLog(logID uint) (ledger.LoggedMeal, bool) {
	for _, m := range s.LoggedMeals {
		if m.LogID == logID {
			return m, true
		}
	}
	return ledger.LoggedMeal{}, false
}
