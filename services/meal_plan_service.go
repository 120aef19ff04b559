package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/GG-Muniz/FlavorLab-sub000/config"
	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/models"
)

const (
	defaultPlanDays = 7
	maxPlanDays     = 14
	hfBaseURL       = "https://api-inference.huggingface.co/models/"
	hfModel         = "google/flan-t5-small"
)

// MealPlanService generates meal templates. With a Hugging Face token it asks
// a hosted model for a plan; without one, or when the model answers with
// anything unusable, it falls back to a fixed five-meal day.
type MealPlanService struct {
	db      *gorm.DB
	client  *http.Client
	token   string
	baseURL string
	model   string
	hub     *RealtimeHub
	log     *logrus.Logger
}

func NewMealPlanService(db *gorm.DB, hfToken string, hub *RealtimeHub) *MealPlanService {
	return &MealPlanService{
		db:      db,
		client:  &http.Client{Timeout: 15 * time.Second},
		token:   hfToken,
		baseURL: hfBaseURL,
		model:   hfModel,
		hub:     hub,
		log:     config.GetLogger(),
	}
}

type plannedMeal struct {
	Day         int    `json:"day"`
	MealType    string `json:"meal_type"`
	Name        string `json:"name"`
	Calories    int    `json:"calories"`
	Description string `json:"description"`
}

var mockDay = []plannedMeal{
	{MealType: "breakfast", Name: "Healthy Breakfast Bowl", Calories: 400, Description: "Greek yogurt with granola, fresh berries, and honey"},
	{MealType: "snack", Name: "Morning Snack", Calories: 150, Description: "Apple slices with almond butter"},
	{MealType: "lunch", Name: "Grilled Protein Salad", Calories: 550, Description: "Mixed greens with grilled chicken, vegetables, and balsamic vinaigrette"},
	{MealType: "snack", Name: "Afternoon Snack", Calories: 200, Description: "Hummus with carrot and cucumber sticks"},
	{MealType: "dinner", Name: "Baked Protein with Grains", Calories: 650, Description: "Baked salmon with quinoa and roasted vegetables"},
}

func mockPlan(days int) []plannedMeal {
	out := make([]plannedMeal, 0, days*len(mockDay))
	for d := 1; d <= days; d++ {
		for _, m := range mockDay {
			m.Day = d
			out = append(out, m)
		}
	}
	return out
}

func planDays(req ledger.MealPlanRequest) (int, error) {
	if req.NumDays == 0 {
		return defaultPlanDays, nil
	}
	if req.NumDays < 1 || req.NumDays > maxPlanDays {
		return 0, invalid("num_days", "must be between 1 and %d", maxPlanDays)
	}
	return req.NumDays, nil
}

// plan never fails; model problems are logged and replaced by the mock plan.
func (s *MealPlanService) plan(ctx context.Context, days int, prefs map[string]any) []plannedMeal {
	if s.token == "" {
		return mockPlan(days)
	}
	meals, err := s.askModel(ctx, days, prefs)
	if err != nil {
		s.log.WithFields(logrus.Fields{"module": "mealplan", "funcName": "plan"}).
			Warn("falling back to mock plan: " + err.Error())
		return mockPlan(days)
	}
	return meals
}

func (s *MealPlanService) askModel(ctx context.Context, days int, prefs map[string]any) ([]plannedMeal, error) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Create a %d-day meal plan with breakfast, lunch, dinner and snacks.\n", days)
	if len(prefs) > 0 {
		p, _ := json.Marshal(prefs)
		fmt.Fprintf(&sb, "User preferences: %s\n", p)
	}
	sb.WriteString(`Answer only with a JSON array of objects with keys "day", "meal_type", "name", "calories", "description".`)

	body, _ := json.Marshal(map[string]any{
		"inputs":     sb.String(),
		"parameters": map[string]any{"max_new_tokens": 1024, "temperature": 0.2},
	})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+s.model, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+s.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-wait-for-model", "true")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("hf request error: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read hf response error: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		var hfErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &hfErr) == nil && hfErr.Error != "" {
			return nil, fmt.Errorf("hf api error (%d): %s", resp.StatusCode, hfErr.Error)
		}
		return nil, fmt.Errorf("hf api error (%d)", resp.StatusCode)
	}

	var out []struct {
		GeneratedText string `json:"generated_text"`
	}
	if err := json.Unmarshal(raw, &out); err != nil || len(out) == 0 {
		return nil, fmt.Errorf("unexpected hf response shape")
	}
	return parsePlan(out[0].GeneratedText, days)
}

// parsePlan extracts the JSON array from generated text and drops meals that
// would not pass validation.
func parsePlan(text string, days int) ([]plannedMeal, error) {
	start, end := strings.Index(text, "["), strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no json array in model output")
	}
	var meals []plannedMeal
	if err := json.Unmarshal([]byte(text[start:end+1]), &meals); err != nil {
		return nil, fmt.Errorf("decode model plan: %w", err)
	}

	kept := meals[:0]
	for _, m := range meals {
		mt, ok := ledger.ParseMealType(m.MealType)
		if !ok || strings.TrimSpace(m.Name) == "" || m.Calories <= 0 || m.Calories > MaxManualCalories {
			continue
		}
		if m.Day < 1 || m.Day > days {
			continue
		}
		m.MealType = string(mt)
		m.Name = strings.TrimSpace(m.Name)
		kept = append(kept, m)
	}
	if len(kept) == 0 {
		return nil, fmt.Errorf("model plan has no usable meals")
	}
	return kept, nil
}

// Generate builds a plan and stores every meal as a template.
func (s *MealPlanService) Generate(ctx context.Context, userID uint, req ledger.MealPlanRequest) (*ledger.MealPlanResponse, error) {
	days, err := planDays(req)
	if err != nil {
		return nil, err
	}
	planned := s.plan(ctx, days, req.Preferences)

	rows := make([]models.Meal, 0, len(planned))
	total := 0
	for _, p := range planned {
		rows = append(rows, fromTemplate(userID, ledger.MealTemplate{
			Name:        p.Name,
			MealType:    ledger.MealType(p.MealType),
			Calories:    p.Calories,
			Description: p.Description,
		}))
		total += p.Calories
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return nil, err
	}
	s.hub.Broadcast(userID, ledger.ChangeEvent{Kind: "templates.changed", Op: "generate"})

	out := &ledger.MealPlanResponse{
		Templates:             make([]ledger.MealTemplate, 0, len(rows)),
		TotalDays:             days,
		AverageCaloriesPerDay: total / days,
	}
	for _, r := range rows {
		out.Templates = append(out.Templates, toTemplate(r))
	}
	return out, nil
}
