package models

import "time"

const AlertGoalExceeded = "goal_exceeded"

type Alert struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"index"`
	Type      string    `gorm:"size:20"`
	Message   string    `gorm:"type:text"`
	AlertDate time.Time `gorm:"type:date;index"`
	CreatedAt time.Time
}
