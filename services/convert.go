package services

import (
	"time"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/models"
)

func toLoggedMeal(m models.Meal) ledger.LoggedMeal {
	out := ledger.LoggedMeal{
		LogID:      m.ID,
		Name:       m.Name,
		MealType:   ledger.MealType(m.MealType),
		Calories:   m.Calories,
		ProteinG:   m.ProteinG,
		CarbsG:     m.CarbsG,
		FatG:       m.FatG,
		FiberG:     m.FiberG,
		TemplateID: m.TemplateID,
	}
	if m.LoggedAt != nil {
		out.LoggedAt = *m.LoggedAt
	}
	if m.DateLogged != nil {
		out.DateLogged = m.DateLogged.Format(ledger.DateLayout)
	} else if m.LoggedAt != nil {
		out.DateLogged = m.LoggedAt.In(time.Local).Format(ledger.DateLayout)
	}
	return out
}

func toLoggedMeals(rows []models.Meal) []ledger.LoggedMeal {
	out := make([]ledger.LoggedMeal, 0, len(rows))
	for _, r := range rows {
		out = append(out, toLoggedMeal(r))
	}
	return out
}

func toTemplate(m models.Meal) ledger.MealTemplate {
	t := ledger.MealTemplate{
		ID:              m.ID,
		Name:            m.Name,
		MealType:        ledger.MealType(m.MealType),
		Calories:        m.Calories,
		Description:     m.Description,
		Ingredients:     m.Ingredients,
		Instructions:    m.Instructions,
		Servings:        m.Servings,
		PrepTimeMinutes: m.PrepTimeMinutes,
		CookTimeMinutes: m.CookTimeMinutes,
		NutritionInfo:   map[string]any(m.NutritionInfo),
	}
	if t.NutritionInfo == nil && (m.ProteinG > 0 || m.CarbsG > 0 || m.FatG > 0 || m.FiberG > 0) {
		t.NutritionInfo = map[string]any{
			"protein_g": m.ProteinG,
			"carbs_g":   m.CarbsG,
			"fat_g":     m.FatG,
			"fiber_g":   m.FiberG,
		}
	}
	return t
}

// fromTemplate builds a GENERATED row. Macros found in nutrition_info are
// copied into the macro columns so logging the template carries them.
func fromTemplate(userID uint, t ledger.MealTemplate) models.Meal {
	m := models.Meal{
		UserID:          userID,
		Name:            t.Name,
		MealType:        string(t.MealType),
		Source:          models.SourceGenerated,
		Calories:        max(t.Calories, 0),
		Description:     t.Description,
		Servings:        t.Servings,
		PrepTimeMinutes: t.PrepTimeMinutes,
		CookTimeMinutes: t.CookTimeMinutes,
		Ingredients:     t.Ingredients,
		Instructions:    t.Instructions,
		NutritionInfo:   t.NutritionInfo,
	}
	m.ProteinG = numberField(t.NutritionInfo, "protein_g")
	m.CarbsG = numberField(t.NutritionInfo, "carbs_g")
	m.FatG = numberField(t.NutritionInfo, "fat_g")
	m.FiberG = numberField(t.NutritionInfo, "fiber_g")
	return m
}

func numberField(m map[string]any, key string) float64 {
	switch v := m[key].(type) {
	case float64:
		return ledger.RoundMacro(v)
	case int:
		return float64(v)
	}
	return 0
}
