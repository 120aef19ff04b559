package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type MealSource string

const (
	SourceGenerated MealSource = "GENERATED" // templates from a meal plan or authored by hand
	SourceLogged    MealSource = "LOGGED"    // meals the user ate
)

// Meal is both a template and a logged entry, told apart by Source.
type Meal struct {
	gorm.Model
	UserID   uint       `gorm:"index;not null"`
	Name     string     `gorm:"size:255;not null"`
	MealType string     `gorm:"size:20;index;not null"` // breakfast|lunch|dinner|snack
	Source   MealSource `gorm:"size:16;index;not null;default:GENERATED"`

	// set for LOGGED rows only
	LoggedAt   *time.Time
	DateLogged *time.Time `gorm:"type:date;index"`
	TemplateID *uint      `gorm:"index"`

	Calories int
	ProteinG float64
	CarbsG   float64
	FatG     float64
	FiberG   float64

	Description     string `gorm:"type:text"`
	Servings        *int
	PrepTimeMinutes *int
	CookTimeMinutes *int

	Ingredients   datatypes.JSONSlice[string]
	Instructions  datatypes.JSONSlice[string]
	NutritionInfo datatypes.JSONMap
}
