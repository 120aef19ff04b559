package services

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/GG-Muniz/FlavorLab-sub000/config"
	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/models"
)

// Pusher delivers a notification to a user's devices.
type Pusher interface {
	PushToUser(ctx context.Context, userID uint, title, body string, data map[string]string)
}

// AlertBus raises at most one goal-exceeded alert per user and day.
// rt and push may be nil.
type AlertBus struct {
	db   *gorm.DB
	rt   *RealtimeHub
	push Pusher
	log  *logrus.Logger
}

func NewAlertBus(db *gorm.DB, rt *RealtimeHub, push Pusher) *AlertBus {
	return &AlertBus{db: db, rt: rt, push: push, log: config.GetLogger()}
}

func goalExceeded(s ledger.DailySummary) bool {
	return s.DailyGoal > 0 && s.TotalConsumed >= s.DailyGoal
}

// CheckGoal is called after every write that changes a day's totals.
func (b *AlertBus) CheckGoal(ctx context.Context, userID uint, day time.Time, s ledger.DailySummary) {
	if b == nil || !goalExceeded(s) {
		return
	}

	var n int64
	err := b.db.WithContext(ctx).Model(&models.Alert{}).
		Where("user_id = ? AND type = ? AND alert_date = ?", userID, models.AlertGoalExceeded, day.Format(ledger.DateLayout)).
		Count(&n).Error
	if err != nil {
		config.LogError(b.log, "alerts", "CheckGoal", "count alerts", userID, err)
		return
	}
	if n > 0 {
		return
	}

	msg := fmt.Sprintf("You reached your daily goal of %d kcal (%d kcal logged).", s.DailyGoal, s.TotalConsumed)
	a := &models.Alert{
		UserID:    userID,
		Type:      models.AlertGoalExceeded,
		Message:   msg,
		AlertDate: day,
		CreatedAt: time.Now(),
	}
	if err := b.db.WithContext(ctx).Create(a).Error; err != nil {
		config.LogError(b.log, "alerts", "CheckGoal", "create alert", userID, err)
		return
	}

	b.rt.Broadcast(userID, map[string]any{
		"kind":  "alert.created",
		"alert": a,
	})
	if b.push != nil {
		b.push.PushToUser(ctx, userID, "Daily goal reached", msg, map[string]string{
			"type":    a.Type,
			"alertId": fmt.Sprintf("%d", a.ID),
			"date":    s.EntryDate,
		})
	}
}
