// Package store keeps the client's view of the nutrition ledger consistent.
//
// Every mutation writes to the ledger and then re-reads the whole day
// (summary and templates) before returning. The snapshot is never patched
// locally, so totals always come from the ledger and always match the
// entries they were computed from.
package store

import (
	"context"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/nutrition"
)

// Ledger is the subset of *ledger.Client the store needs.
type Ledger interface {
	FetchDaySummary(ctx context.Context) (*ledger.DailySummary, error)
	FetchTemplates(ctx context.Context) ([]ledger.MealTemplate, error)
	FetchLoggedMeals(ctx context.Context, date time.Time) ([]ledger.LoggedMeal, error)
	FetchSummaryForDate(ctx context.Context, date time.Time) (*ledger.DailySummary, error)
	LogManual(ctx context.Context, name string, mealType ledger.MealType, calories float64) (*ledger.LoggedMeal, error)
	LogFromTemplate(ctx context.Context, templateID uint) (*ledger.LoggedMeal, error)
	UpdateLog(ctx context.Context, logID uint, req ledger.UpdateLogRequest) (*ledger.LoggedMeal, error)
	DeleteLog(ctx context.Context, logID uint) error
	SetGoal(ctx context.Context, goalCalories float64) (*ledger.CalorieGoal, error)
}

// MacroData describes the stored state of an entry being edited.
type MacroData struct {
	Calories int
	ledger.Macros
}

type Store struct {
	ledger Ledger
	log    *logrus.Logger
	now    func() time.Time

	mu        sync.RWMutex
	snap      Snapshot
	installed uint64
	version   uint64
	loading   int

	seq atomic.Uint64

	notifyMu sync.Mutex
	subsMu   sync.Mutex
	subs     map[uint64]func(Snapshot)
	nextSub  uint64

	writes *semaphore.Weighted
	reads  singleflight.Group
}

type Option func(*Store)

func WithLogger(l *logrus.Logger) Option {
	return func(s *Store) { s.log = l }
}

// WithClock sets the clock used to date the default snapshot.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// New returns an empty store. Summary stays nil until the first RefetchAll.
func New(l Ledger, opts ...Option) *Store {
	s := &Store{
		ledger: l,
		log:    logrus.StandardLogger(),
		now:    time.Now,
		snap: Snapshot{
			LoggedMeals: []ledger.LoggedMeal{},
			MealPlans:   []ledger.MealTemplate{},
		},
		subs:   make(map[uint64]func(Snapshot)),
		writes: semaphore.NewWeighted(1),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe registers fn to receive every new snapshot. fn runs on the
// goroutine that changed the store and must not call back into a mutating
// method synchronously.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.subsMu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.subsMu.Lock()
			delete(s.subs, id)
			s.subsMu.Unlock()
		})
	}
}

func (s *Store) publish() {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	snap := s.Snapshot()
	s.subsMu.Lock()
	fns := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subsMu.Unlock()

	for _, fn := range fns {
		fn(snap)
	}
}

func (s *Store) setLoading(delta int) {
	s.mu.Lock()
	s.loading += delta
	s.snap.IsLoading = s.loading > 0
	s.mu.Unlock()
	s.publish()
}

// install replaces the snapshot unless a resync that started later has
// already been installed.
func (s *Store) install(seq uint64, next Snapshot) bool {
	s.mu.Lock()
	if seq <= s.installed {
		s.mu.Unlock()
		return false
	}
	s.installed = seq
	s.version++
	next.Version = s.version
	next.IsLoading = s.loading > 0
	s.snap = next
	s.mu.Unlock()

	s.publish()
	return true
}

// resync reads summary and templates in parallel and installs the result,
// or the default snapshot if either read fails.
func (s *Store) resync(ctx context.Context) error {
	seq := s.seq.Add(1)
	s.setLoading(1)
	defer s.setLoading(-1)

	var (
		summary   *ledger.DailySummary
		templates []ledger.MealTemplate
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.ledger.FetchDaySummary(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		templates, err = s.ledger.FetchTemplates(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			// cancelled by the caller; the last good snapshot stays
			return err
		}
		s.log.WithFields(logrus.Fields{
			"module":   "store",
			"funcName": "resync",
			"kind":     ledger.KindOf(err).String(),
		}).Warn("ledger read failed, installing default snapshot: " + err.Error())
		s.install(seq, DefaultSnapshot(s.now()))
		return err
	}

	if summary == nil {
		d := ledger.DefaultSummary(s.now().Format(ledger.DateLayout))
		summary = &d
	}
	meals := summary.LoggedMealsToday
	if meals == nil {
		meals = []ledger.LoggedMeal{}
		summary.LoggedMealsToday = meals
	}
	if templates == nil {
		templates = []ledger.MealTemplate{}
	}
	s.install(seq, Snapshot{
		LoggedMeals: meals,
		MealPlans:   templates,
		Summary:     summary,
	})
	return nil
}

// RefetchAll replaces the snapshot with a fresh read of the ledger.
// Concurrent calls share one read, which is not tied to any single caller's
// context; a caller that gives up stops waiting without cancelling the read
// for the others. On failure the default snapshot is installed and the read
// error is returned for information only; the store is still safe to render.
func (s *Store) RefetchAll(ctx context.Context) error {
	ch := s.reads.DoChan("refetch", func() (any, error) {
		return nil, s.resync(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// mutate runs one write at a time, each followed by its own resync. The
// resync never joins an in-flight RefetchAll, since that read may have
// started before the write.
func (s *Store) mutate(ctx context.Context, op string, write func(context.Context) error) error {
	if err := s.writes.Acquire(ctx, 1); err != nil {
		return err
	}
	defer s.writes.Release(1)

	if err := write(ctx); err != nil {
		s.log.WithFields(logrus.Fields{
			"module":   "store",
			"funcName": op,
			"kind":     ledger.KindOf(err).String(),
		}).Error(err.Error())
		return err
	}
	_ = s.resync(ctx)
	return nil
}

func invalid(op, msg string) error {
	return &ledger.RemoteLedgerError{Op: op, Kind: ledger.KindValidation, Message: msg}
}

func badCalories(v float64) bool {
	return v < 0 || math.IsNaN(v) || math.IsInf(v, 0)
}

// AddLog records a manual entry under the default meal type.
func (s *Store) AddLog(ctx context.Context, mealName string, calories float64) error {
	if badCalories(calories) {
		return invalid("add-log", "calories must be a non-negative number")
	}
	return s.mutate(ctx, "AddLog", func(ctx context.Context) error {
		_, err := s.ledger.LogManual(ctx, mealName, ledger.DefaultMealType, calories)
		return err
	})
}

// findEntry returns the stored entry for logID, from today's snapshot when it
// is there and from the ledger otherwise.
func (s *Store) findEntry(ctx context.Context, logID uint) (ledger.LoggedMeal, error) {
	if entry, ok := s.Snapshot().findLog(logID); ok {
		return entry, nil
	}
	all, err := s.ledger.FetchLoggedMeals(ctx, time.Time{})
	if err != nil {
		return ledger.LoggedMeal{}, err
	}
	for _, m := range all {
		if m.LogID == logID {
			return m, nil
		}
	}
	return ledger.LoggedMeal{}, &ledger.RemoteLedgerError{
		Op:      "update-log",
		Kind:    ledger.KindNotFound,
		Status:  404,
		Message: "Meal not found",
	}
}

// UpdateLog edits an entry's calories and meal type. Macros are rescaled in
// proportion to the calorie change when the entry has them. macroData may be
// nil, in which case the stored entry is looked up, first in the current
// snapshot and then on the ledger, so entries of any day can be edited.
// An empty mealType keeps the entry's current type. An entry that cannot be
// found is never updated.
func (s *Store) UpdateLog(ctx context.Context, logID uint, mealType ledger.MealType, calories float64, macroData *MacroData) error {
	if badCalories(calories) {
		return invalid("update-log", "calories must be a non-negative number")
	}
	return s.mutate(ctx, "UpdateLog", func(ctx context.Context) error {
		var stored MacroData
		if macroData != nil {
			stored = *macroData
		}
		if macroData == nil || mealType == "" {
			entry, err := s.findEntry(ctx, logID)
			if err != nil {
				return err
			}
			if macroData == nil {
				stored = MacroData{Calories: entry.Calories, Macros: entry.Macros()}
			}
			if mealType == "" {
				mealType = entry.MealType
			}
		}
		if mealType == "" {
			mealType = ledger.DefaultMealType
		}

		req := nutrition.BuildUpdate(stored.Macros, stored.Calories, mealType, calories)
		_, err := s.ledger.UpdateLog(ctx, logID, req)
		return err
	})
}

func (s *Store) DeleteLog(ctx context.Context, logID uint) error {
	return s.mutate(ctx, "DeleteLog", func(ctx context.Context) error {
		return s.ledger.DeleteLog(ctx, logID)
	})
}

// LogMeal logs a template as eaten now.
func (s *Store) LogMeal(ctx context.Context, templateID uint) error {
	return s.mutate(ctx, "LogMeal", func(ctx context.Context) error {
		_, err := s.ledger.LogFromTemplate(ctx, templateID)
		return err
	})
}

func (s *Store) SetGoal(ctx context.Context, goalCalories float64) error {
	if badCalories(goalCalories) {
		return invalid("set-goal", "goal must be a non-negative number")
	}
	return s.mutate(ctx, "SetGoal", func(ctx context.Context) error {
		_, err := s.ledger.SetGoal(ctx, goalCalories)
		return err
	})
}

// GetMealsForDate never fails; an unreadable day is empty.
func (s *Store) GetMealsForDate(ctx context.Context, date time.Time) []ledger.LoggedMeal {
	key := "meals:" + date.Format(ledger.DateLayout)
	v, err, _ := s.reads.Do(key, func() (any, error) {
		return s.ledger.FetchLoggedMeals(ctx, date)
	})
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"module":   "store",
			"funcName": "GetMealsForDate",
			"date":     date.Format(ledger.DateLayout),
		}).Warn(err.Error())
		return []ledger.LoggedMeal{}
	}
	meals, _ := v.([]ledger.LoggedMeal)
	if meals == nil {
		meals = []ledger.LoggedMeal{}
	}
	return meals
}

// GetNutritionSummaryForDate never fails; an unreadable day yields the
// default summary for that date.
func (s *Store) GetNutritionSummaryForDate(ctx context.Context, date time.Time) ledger.DailySummary {
	day := date.Format(ledger.DateLayout)
	v, err, _ := s.reads.Do("summary:"+day, func() (any, error) {
		return s.ledger.FetchSummaryForDate(ctx, date)
	})
	summary, _ := v.(*ledger.DailySummary)
	if err != nil || summary == nil {
		if err != nil {
			s.log.WithFields(logrus.Fields{
				"module":   "store",
				"funcName": "GetNutritionSummaryForDate",
				"date":     day,
			}).Warn(err.Error())
		}
		return ledger.DefaultSummary(day)
	}
	return *summary
}
