// Package ledger holds the wire types of the nutrition ledger API and the
// typed client used to talk to it.
package ledger

import (
	"strings"
	"time"
)

// DateLayout is the calendar date format used on the wire.
const DateLayout = "2006-01-02"

type MealType string

const (
	Breakfast MealType = "breakfast"
	Lunch     MealType = "lunch"
	Dinner    MealType = "dinner"
	Snack     MealType = "snack"
)

// DefaultMealType is used for manual entries logged without a meal type.
const DefaultMealType = Snack

// ParseMealType accepts any casing ("Breakfast", "LUNCH", ...).
func ParseMealType(s string) (MealType, bool) {
	switch mt := MealType(strings.ToLower(strings.TrimSpace(s))); mt {
	case Breakfast, Lunch, Dinner, Snack:
		return mt, true
	}
	return "", false
}

// Source selects which kind of meal the ledger returns from the meals query.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceLogged    Source = "logged"
)

// Macros are gram quantities; zero means unknown.
type Macros struct {
	ProteinG float64 `json:"protein_g"`
	CarbsG   float64 `json:"carbs_g"`
	FatG     float64 `json:"fat_g"`
	FiberG   float64 `json:"fiber_g"`
}

func (m Macros) IsZero() bool {
	return m.ProteinG == 0 && m.CarbsG == 0 && m.FatG == 0 && m.FiberG == 0
}

// LoggedMeal is an entry the user has consumed.
type LoggedMeal struct {
	LogID      uint      `json:"log_id"`
	Name       string    `json:"name"`
	MealType   MealType  `json:"meal_type"`
	Calories   int       `json:"calories"`
	ProteinG   float64   `json:"protein_g"`
	CarbsG     float64   `json:"carbs_g"`
	FatG       float64   `json:"fat_g"`
	FiberG     float64   `json:"fiber_g"`
	LoggedAt   time.Time `json:"logged_at"`
	DateLogged string    `json:"date_logged"`
	TemplateID *uint     `json:"template_id,omitempty"`
}

func (m LoggedMeal) Macros() Macros {
	return Macros{ProteinG: m.ProteinG, CarbsG: m.CarbsG, FatG: m.FatG, FiberG: m.FiberG}
}

// CalorieOnly reports whether the entry was logged without any macro detail.
func (m LoggedMeal) CalorieOnly() bool {
	return m.Calories > 0 && m.Macros().IsZero()
}

// MealTemplate is a reusable meal definition, generated or authored by hand.
type MealTemplate struct {
	ID              uint           `json:"id"`
	Name            string         `json:"name"`
	MealType        MealType       `json:"meal_type"`
	Calories        int            `json:"calories"`
	Description     string         `json:"description"`
	Ingredients     []string       `json:"ingredients,omitempty"`
	Instructions    []string       `json:"instructions,omitempty"`
	Servings        *int           `json:"servings,omitempty"`
	PrepTimeMinutes *int           `json:"prep_time_minutes,omitempty"`
	CookTimeMinutes *int           `json:"cook_time_minutes,omitempty"`
	NutritionInfo   map[string]any `json:"nutrition_info,omitempty"`
}

// DailySummary is the ledger's aggregate for one calendar day.
type DailySummary struct {
	DailyGoal        int          `json:"daily_goal"`
	TotalConsumed    int          `json:"total_consumed"`
	Remaining        int          `json:"remaining"`
	Macros           Macros       `json:"macros"`
	LoggedMealsToday []LoggedMeal `json:"logged_meals_today"`
	EntryDate        string       `json:"entry_date"`
}

// Safe fallback values installed when the ledger cannot be read.
const (
	DefaultDailyGoal = 2000
)

// DefaultSummary is what views render when the ledger is unreachable.
func DefaultSummary(date string) DailySummary {
	return DailySummary{
		DailyGoal:        DefaultDailyGoal,
		TotalConsumed:    0,
		Remaining:        DefaultDailyGoal,
		LoggedMealsToday: []LoggedMeal{},
		EntryDate:        date,
	}
}

type CalorieGoal struct {
	GoalCalories int       `json:"goal_calories"`
	LastUpdated  time.Time `json:"last_updated"`
}

// DayTotals is one calendar row of the history query.
type DayTotals struct {
	Date          string `json:"date"`
	TotalConsumed int    `json:"total_consumed"`
	DailyGoal     int    `json:"daily_goal"`
	Percentage    int    `json:"percentage"`
	Macros        Macros `json:"macros"`
	MealCount     int    `json:"meal_count"`
}

type JournalNote struct {
	Date      string    `json:"date"`
	Text      string    `json:"text"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ChangeEvent is pushed on the ledger change feed after every write.
type ChangeEvent struct {
	Kind  string `json:"kind"`
	Op    string `json:"op"`
	LogID uint   `json:"log_id,omitempty"`
	Date  string `json:"date,omitempty"`
}

// Request bodies.

type LogManualRequest struct {
	Name     string   `json:"name,omitempty" validate:"max=255"`
	MealType MealType `json:"meal_type" binding:"required" validate:"required,oneof=breakfast lunch dinner snack"`
	Calories int      `json:"calories" binding:"gte=0,lte=5000" validate:"gte=0,lte=5000"`
}

// UpdateLogRequest replaces an entry. Nil macro fields are not sent and leave
// the stored value untouched.
type UpdateLogRequest struct {
	MealType MealType `json:"meal_type" binding:"required" validate:"required,oneof=breakfast lunch dinner snack"`
	Calories int      `json:"calories" binding:"gte=0" validate:"gte=0"`
	Protein  *float64 `json:"protein,omitempty" binding:"omitempty,gte=0" validate:"omitempty,gte=0"`
	Carbs    *float64 `json:"carbs,omitempty" binding:"omitempty,gte=0" validate:"omitempty,gte=0"`
	Fat      *float64 `json:"fat,omitempty" binding:"omitempty,gte=0" validate:"omitempty,gte=0"`
	Fiber    *float64 `json:"fiber,omitempty" binding:"omitempty,gte=0" validate:"omitempty,gte=0"`
}

func (r UpdateLogRequest) HasMacros() bool {
	return r.Protein != nil || r.Carbs != nil || r.Fat != nil || r.Fiber != nil
}

type SetGoalRequest struct {
	GoalCalories int `json:"goal_calories" binding:"gt=0,lte=10000" validate:"gt=0,lte=10000"`
}

type MealPlanRequest struct {
	NumDays     int            `json:"num_days" binding:"omitempty,gte=1,lte=14" validate:"omitempty,gte=1,lte=14"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

type MealPlanResponse struct {
	Templates             []MealTemplate `json:"templates"`
	TotalDays             int            `json:"total_days"`
	AverageCaloriesPerDay int            `json:"average_calories_per_day"`
}

type SaveNoteRequest struct {
	Text string `json:"text"`
}
