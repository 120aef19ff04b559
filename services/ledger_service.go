package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/GG-Muniz/FlavorLab-sub000/config"
	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/models"
	"github.com/GG-Muniz/FlavorLab-sub000/nutrition"
	"github.com/GG-Muniz/FlavorLab-sub000/utils"
)

const (
	MaxManualCalories = 5000
	MaxHistoryDays    = 92

	defaultManualName = "Manual entry"
)

// LedgerService owns logged meals and templates. Every write takes the user
// lock, commits, then publishes a change event and checks the goal alert.
type LedgerService struct {
	db     *gorm.DB
	goals  *GoalService
	locks  *UserLocker
	hub    *RealtimeHub
	alerts *AlertBus
	log    *logrus.Logger
	now    func() time.Time
}

func NewLedgerService(db *gorm.DB, goals *GoalService, locks *UserLocker, hub *RealtimeHub, alerts *AlertBus) *LedgerService {
	return &LedgerService{
		db:     db,
		goals:  goals,
		locks:  locks,
		hub:    hub,
		alerts: alerts,
		log:    config.GetLogger(),
		now:    time.Now,
	}
}

func checkMealType(mt ledger.MealType) (ledger.MealType, error) {
	parsed, ok := ledger.ParseMealType(string(mt))
	if !ok {
		return "", invalid("meal_type", "must be one of breakfast, lunch, dinner, snack")
	}
	return parsed, nil
}

func findMeal(db *gorm.DB, userID, id uint, source models.MealSource) (*models.Meal, error) {
	var m models.Meal
	err := db.
		Where("id = ? AND user_id = ? AND source = ?", id, userID, source).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, notFound("meal")
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// write runs fn under the user lock and then notifies listeners for day.
func (s *LedgerService) write(ctx context.Context, userID uint, op string, fn func(tx *gorm.DB) (*models.Meal, error)) (*models.Meal, error) {
	release, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	var out *models.Meal
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		out, err = fn(tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	day := utils.DayStartLocal(s.now())
	if out != nil && out.DateLogged != nil {
		day = utils.DateOnly(*out.DateLogged)
	}
	s.afterWrite(ctx, userID, op, out, day)
	return out, nil
}

func (s *LedgerService) afterWrite(ctx context.Context, userID uint, op string, m *models.Meal, day time.Time) {
	ev := ledger.ChangeEvent{Kind: "ledger.changed", Op: op, Date: day.Format(ledger.DateLayout)}
	if m != nil {
		ev.LogID = m.ID
	}
	s.hub.Broadcast(userID, ev)

	if s.alerts == nil {
		return
	}
	summary, err := s.Summary(ctx, userID, day)
	if err != nil {
		config.LogError(s.log, "ledger", "afterWrite", "summary for alert", userID, err)
		return
	}
	s.alerts.CheckGoal(ctx, userID, day, summary)
}

func (s *LedgerService) LogManual(ctx context.Context, userID uint, req ledger.LogManualRequest) (*ledger.LoggedMeal, error) {
	mt, err := checkMealType(req.MealType)
	if err != nil {
		return nil, err
	}
	if req.Calories < 0 || req.Calories > MaxManualCalories {
		return nil, invalid("calories", "must be between 0 and %d", MaxManualCalories)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = defaultManualName
	}

	now := s.now()
	day := utils.DayStartLocal(now)
	m, err := s.write(ctx, userID, "log", func(tx *gorm.DB) (*models.Meal, error) {
		m := &models.Meal{
			UserID:     userID,
			Name:       name,
			MealType:   string(mt),
			Source:     models.SourceLogged,
			LoggedAt:   &now,
			DateLogged: &day,
			Calories:   req.Calories,
		}
		return m, tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	out := toLoggedMeal(*m)
	return &out, nil
}

// LogFromTemplate copies a template into a new entry for today. The template
// itself is never modified.
func (s *LedgerService) LogFromTemplate(ctx context.Context, userID, templateID uint) (*ledger.LoggedMeal, error) {
	t, err := findMeal(s.db.WithContext(ctx), userID, templateID, models.SourceGenerated)
	if err != nil {
		return nil, err
	}

	now := s.now()
	day := utils.DayStartLocal(now)
	m, err := s.write(ctx, userID, "log", func(tx *gorm.DB) (*models.Meal, error) {
		id := t.ID
		m := &models.Meal{
			UserID:     userID,
			Name:       t.Name,
			MealType:   t.MealType,
			Source:     models.SourceLogged,
			LoggedAt:   &now,
			DateLogged: &day,
			TemplateID: &id,
			Calories:   t.Calories,
			ProteinG:   t.ProteinG,
			CarbsG:     t.CarbsG,
			FatG:       t.FatG,
			FiberG:     t.FiberG,
		}
		return m, tx.Create(m).Error
	})
	if err != nil {
		return nil, err
	}
	out := toLoggedMeal(*m)
	return &out, nil
}

// UpdateLog replaces meal type and calories. Macro fields left nil keep their
// stored value.
func (s *LedgerService) UpdateLog(ctx context.Context, userID, logID uint, req ledger.UpdateLogRequest) (*ledger.LoggedMeal, error) {
	mt, err := checkMealType(req.MealType)
	if err != nil {
		return nil, err
	}
	if req.Calories < 0 {
		return nil, invalid("calories", "must not be negative")
	}
	for name, v := range map[string]*float64{"protein": req.Protein, "carbs": req.Carbs, "fat": req.Fat, "fiber": req.Fiber} {
		if v != nil && *v < 0 {
			return nil, invalid(name, "must not be negative")
		}
	}

	m, err := s.write(ctx, userID, "update", func(tx *gorm.DB) (*models.Meal, error) {
		m, err := findMeal(tx, userID, logID, models.SourceLogged)
		if err != nil {
			return nil, err
		}
		m.MealType = string(mt)
		m.Calories = req.Calories
		if req.Protein != nil {
			m.ProteinG = ledger.RoundMacro(*req.Protein)
		}
		if req.Carbs != nil {
			m.CarbsG = ledger.RoundMacro(*req.Carbs)
		}
		if req.Fat != nil {
			m.FatG = ledger.RoundMacro(*req.Fat)
		}
		if req.Fiber != nil {
			m.FiberG = ledger.RoundMacro(*req.Fiber)
		}
		return m, tx.Save(m).Error
	})
	if err != nil {
		return nil, err
	}
	out := toLoggedMeal(*m)
	return &out, nil
}

func (s *LedgerService) DeleteLog(ctx context.Context, userID, logID uint) error {
	_, err := s.write(ctx, userID, "delete", func(tx *gorm.DB) (*models.Meal, error) {
		m, err := findMeal(tx, userID, logID, models.SourceLogged)
		if err != nil {
			return nil, err
		}
		if err := tx.Unscoped().Delete(m).Error; err != nil {
			return nil, err
		}
		return m, nil
	})
	return err
}

func (s *LedgerService) ListTemplates(ctx context.Context, userID uint) ([]ledger.MealTemplate, error) {
	var rows []models.Meal
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND source = ?", userID, models.SourceGenerated).
		Order("id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]ledger.MealTemplate, 0, len(rows))
	for _, r := range rows {
		out = append(out, toTemplate(r))
	}
	return out, nil
}

// CreateTemplate stores a hand-authored template.
func (s *LedgerService) CreateTemplate(ctx context.Context, userID uint, t ledger.MealTemplate) (*ledger.MealTemplate, error) {
	mt, err := checkMealType(t.MealType)
	if err != nil {
		return nil, err
	}
	t.Name = strings.TrimSpace(t.Name)
	if t.Name == "" {
		return nil, invalid("name", "is required")
	}
	if t.Calories < 0 || t.Calories > MaxManualCalories {
		return nil, invalid("calories", "must be between 0 and %d", MaxManualCalories)
	}
	t.MealType = mt

	m := fromTemplate(userID, t)
	if err := s.db.WithContext(ctx).Create(&m).Error; err != nil {
		return nil, err
	}
	s.hub.Broadcast(userID, ledger.ChangeEvent{Kind: "templates.changed", Op: "create"})
	out := toTemplate(m)
	return &out, nil
}

// ListLogged lists entries of one day, or of every day when day is nil,
// newest first.
func (s *LedgerService) ListLogged(ctx context.Context, userID uint, day *time.Time) ([]ledger.LoggedMeal, error) {
	q := s.db.WithContext(ctx).Where("user_id = ? AND source = ?", userID, models.SourceLogged)
	if day != nil {
		q = q.Where("date_logged = ?", day.Format(ledger.DateLayout))
	}
	var rows []models.Meal
	if err := q.Order("logged_at DESC, id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toLoggedMeals(rows), nil
}

// Summary computes the totals of one day from its entries.
func (s *LedgerService) Summary(ctx context.Context, userID uint, day time.Time) (ledger.DailySummary, error) {
	goal, err := s.goals.Get(ctx, userID)
	if err != nil {
		return ledger.DailySummary{}, err
	}
	meals, err := s.ListLogged(ctx, userID, &day)
	if err != nil {
		return ledger.DailySummary{}, err
	}
	return nutrition.Summarize(utils.DayStartLocal(day).Format(ledger.DateLayout), goal, meals), nil
}

// SetGoal stores the goal and re-checks today's alert.
func (s *LedgerService) SetGoal(ctx context.Context, userID uint, goalCalories int) (*ledger.CalorieGoal, error) {
	release, err := s.locks.Lock(ctx, userID)
	if err != nil {
		return nil, err
	}
	defer release()

	g, err := s.goals.Set(ctx, userID, goalCalories)
	if err != nil {
		return nil, err
	}
	s.afterWrite(ctx, userID, "goal", nil, utils.DayStartLocal(s.now()))
	return g, nil
}

// History returns one row per calendar day in [from, to], including days
// without entries. Rows use the current goal.
func (s *LedgerService) History(ctx context.Context, userID uint, from, to time.Time) ([]ledger.DayTotals, error) {
	from, to = utils.DayStartLocal(from), utils.DayStartLocal(to)
	if to.Before(from) {
		return nil, invalid("to", "must not be before from")
	}
	days := int(to.Sub(from).Hours()/24+0.5) + 1
	if days > MaxHistoryDays {
		return nil, invalid("range", "at most %d days", MaxHistoryDays)
	}

	goal, err := s.goals.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	var rows []models.Meal
	err = s.db.WithContext(ctx).
		Where("user_id = ? AND source = ? AND date_logged BETWEEN ? AND ?",
			userID, models.SourceLogged, from.Format(ledger.DateLayout), to.Format(ledger.DateLayout)).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	byDay := map[string][]ledger.LoggedMeal{}
	for _, r := range rows {
		m := toLoggedMeal(r)
		byDay[m.DateLogged] = append(byDay[m.DateLogged], m)
	}

	out := make([]ledger.DayTotals, 0, days)
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		key := d.Format(ledger.DateLayout)
		meals := byDay[key]
		total := nutrition.TotalCalories(meals)
		out = append(out, ledger.DayTotals{
			Date:          key,
			TotalConsumed: total,
			DailyGoal:     goal,
			Percentage:    nutrition.Percentage(total, goal),
			Macros:        nutrition.TotalMacros(meals),
			MealCount:     len(meals),
		})
	}
	return out, nil
}
