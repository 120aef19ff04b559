package models

import "time"

// CalorieGoal is one row per user.
type CalorieGoal struct {
	ID           uint `gorm:"primaryKey"`
	UserID       uint `gorm:"uniqueIndex;not null"`
	GoalCalories int  `gorm:"not null"`
	LastUpdated  time.Time
}
