package services

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/models"
)

const MaxGoalCalories = 10000

type GoalService struct{ db *gorm.DB }

func NewGoalService(db *gorm.DB) *GoalService { return &GoalService{db: db} }

// Get returns 0 when the user never set a goal.
func (s *GoalService) Get(ctx context.Context, userID uint) (int, error) {
	var goal models.CalorieGoal
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&goal).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return goal.GoalCalories, nil
}

// Set upserts the user's goal. Valid goals are in (0, MaxGoalCalories].
func (s *GoalService) Set(ctx context.Context, userID uint, goalCalories int) (*ledger.CalorieGoal, error) {
	if goalCalories <= 0 || goalCalories > MaxGoalCalories {
		return nil, invalid("goal_calories", "must be between 1 and %d", MaxGoalCalories)
	}

	var goal models.CalorieGoal
	err := s.db.WithContext(ctx).Where("user_id = ?", userID).First(&goal).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	goal.UserID = userID
	goal.GoalCalories = goalCalories
	goal.LastUpdated = time.Now()
	if err := s.db.WithContext(ctx).Save(&goal).Error; err != nil {
		return nil, err
	}
	return &ledger.CalorieGoal{GoalCalories: goal.GoalCalories, LastUpdated: goal.LastUpdated}, nil
}
