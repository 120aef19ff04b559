package ledger

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

func normalizeMealType(op string, mt MealType) (MealType, error) {
	if mt == "" {
		return DefaultMealType, nil
	}
	parsed, ok := ParseMealType(string(mt))
	if !ok {
		return "", validationError(op, fmt.Errorf("unknown meal type %q", mt))
	}
	return parsed, nil
}

// LogManual records a calorie-only entry. Calories are rounded to the nearest
// integer before sending.
func (c *Client) LogManual(ctx context.Context, name string, mealType MealType, calories float64) (*LoggedMeal, error) {
	const op = "log-manual"
	mt, err := normalizeMealType(op, mealType)
	if err != nil {
		return nil, err
	}
	req := LogManualRequest{
		Name:     strings.TrimSpace(name),
		MealType: mt,
		Calories: RoundCalories(calories),
	}
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(op, err)
	}

	var out LoggedMeal
	if err := c.do(ctx, op, http.MethodPost, "/meals/log-manual", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) LogFromTemplate(ctx context.Context, templateID uint) (*LoggedMeal, error) {
	var out LoggedMeal
	path := fmt.Sprintf("/meals/log-from-template/%d", templateID)
	if err := c.do(ctx, "log-from-template", http.MethodPost, path, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateLog sends req as a full replacement of the entry. Calories and any
// present macro fields are coerced first.
func (c *Client) UpdateLog(ctx context.Context, logID uint, req UpdateLogRequest) (*LoggedMeal, error) {
	const op = "update-log"
	mt, err := normalizeMealType(op, req.MealType)
	if err != nil {
		return nil, err
	}
	req.MealType = mt
	req.Protein = roundMacroPtr(req.Protein)
	req.Carbs = roundMacroPtr(req.Carbs)
	req.Fat = roundMacroPtr(req.Fat)
	req.Fiber = roundMacroPtr(req.Fiber)
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(op, err)
	}

	var out LoggedMeal
	if err := c.do(ctx, op, http.MethodPut, fmt.Sprintf("/meals/%d", logID), nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) DeleteLog(ctx context.Context, logID uint) error {
	return c.do(ctx, "delete-log", http.MethodDelete, fmt.Sprintf("/meals/%d", logID), nil, nil, nil)
}

// FetchTemplates lists generated and hand-authored meal templates.
func (c *Client) FetchTemplates(ctx context.Context) ([]MealTemplate, error) {
	params := url.Values{"source": {string(SourceGenerated)}}
	var out []MealTemplate
	if err := c.do(ctx, "fetch-templates", http.MethodGet, "/meals", params, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []MealTemplate{}
	}
	return out, nil
}

// FetchLoggedMeals lists logged entries; a zero date lists every day.
func (c *Client) FetchLoggedMeals(ctx context.Context, date time.Time) ([]LoggedMeal, error) {
	params := url.Values{"source": {string(SourceLogged)}}
	if !date.IsZero() {
		params.Set("date", date.Format(DateLayout))
	}
	var out []LoggedMeal
	if err := c.do(ctx, "fetch-logged-meals", http.MethodGet, "/meals", params, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []LoggedMeal{}
	}
	return out, nil
}

func (c *Client) CreateTemplate(ctx context.Context, t MealTemplate) (*MealTemplate, error) {
	const op = "create-template"
	mt, err := normalizeMealType(op, t.MealType)
	if err != nil {
		return nil, err
	}
	t.MealType = mt
	t.Calories = max(t.Calories, 0)

	var out MealTemplate
	if err := c.do(ctx, op, http.MethodPost, "/meals/templates", nil, t, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GenerateMealPlan asks the ledger to generate and store new templates.
func (c *Client) GenerateMealPlan(ctx context.Context, req MealPlanRequest) (*MealPlanResponse, error) {
	const op = "generate-meal-plan"
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(op, err)
	}
	var out MealPlanResponse
	if err := c.do(ctx, op, http.MethodPost, "/users/me/meal-plan", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
