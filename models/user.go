package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	Email    string `gorm:"uniqueIndex;not null"`
	FullName string
	// Preferences carries meal-plan inputs such as "calorie_goal" and
	// "health_goals".
	Preferences datatypes.JSONMap
}
