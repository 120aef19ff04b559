package services

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
)

func TestPlanDays(t *testing.T) {
	tests := []struct {
		in      int
		want    int
		wantErr bool
	}{
		{0, 7, false},
		{1, 1, false},
		{14, 14, false},
		{15, 0, true},
		{-1, 0, true},
	}
	for _, tc := range tests {
		got, err := planDays(ledger.MealPlanRequest{NumDays: tc.in})
		if (err != nil) != tc.wantErr {
			t.Fatalf("planDays(%d) err = %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("planDays(%d) = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestPlanWithoutTokenUsesMock(t *testing.T) {
	s := NewMealPlanService(nil, "", nil)
	meals := s.plan(context.Background(), 3, nil)
	if len(meals) != 3*len(mockDay) {
		t.Fatalf("got %d meals, want %d", len(meals), 3*len(mockDay))
	}
	total := 0
	for _, m := range meals {
		if m.Day == 1 {
			total += m.Calories
		}
	}
	if total != 1950 {
		t.Errorf("day 1 total = %d, want 1950", total)
	}
	if meals[len(meals)-1].Day != 3 {
		t.Errorf("last meal day = %d, want 3", meals[len(meals)-1].Day)
	}
}

func hfServer(t *testing.T, status int, body string) (*httptest.Server, *string) {
	t.Helper()
	var auth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_, _ = io.Copy(io.Discard, r.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv, &auth
}

func TestPlanFromModel(t *testing.T) {
	generated := `Here is your plan: [
		{"day":1,"meal_type":"Breakfast","name":" Oats ","calories":350,"description":"oats"},
		{"day":1,"meal_type":"brunch","name":"Bad type","calories":300},
		{"day":2,"meal_type":"dinner","name":"Out of range","calories":500},
		{"day":1,"meal_type":"dinner","name":"Curry","calories":700}
	] Enjoy!`
	payload, _ := json.Marshal([]map[string]string{{"generated_text": generated}})
	srv, auth := hfServer(t, http.StatusOK, string(payload))

	s := NewMealPlanService(nil, "hf-token", nil)
	s.baseURL = srv.URL + "/"
	s.model = "test-model"

	meals := s.plan(context.Background(), 1, map[string]any{"diet": "vegetarian"})
	if *auth != "Bearer hf-token" {
		t.Errorf("auth header = %q", *auth)
	}
	if len(meals) != 2 {
		t.Fatalf("got %d meals, want 2: %+v", len(meals), meals)
	}
	if meals[0].Name != "Oats" || meals[0].MealType != "breakfast" {
		t.Errorf("first meal = %+v", meals[0])
	}
	if meals[1].Name != "Curry" || meals[1].Calories != 700 {
		t.Errorf("second meal = %+v", meals[1])
	}
}

func TestPlanFallsBackOnModelError(t *testing.T) {
	srv, _ := hfServer(t, http.StatusServiceUnavailable, `{"error":"model is loading"}`)
	s := NewMealPlanService(nil, "hf-token", nil)
	s.baseURL = srv.URL + "/"

	meals := s.plan(context.Background(), 2, nil)
	if len(meals) != 2*len(mockDay) {
		t.Errorf("got %d meals, want mock plan", len(meals))
	}
}

func TestParsePlanRejects(t *testing.T) {
	tests := map[string]string{
		"no array":      "I cannot help with that.",
		"broken json":   `[{"day":1,"name":]`,
		"nothing valid": `[{"day":1,"meal_type":"lunch","name":"","calories":400},{"day":1,"meal_type":"lunch","name":"Huge","calories":9000}]`,
	}
	for name, text := range tests {
		t.Run(name, func(t *testing.T) {
			if _, err := parsePlan(text, 1); err == nil {
				t.Fatal("expected error")
			}
		})
	}
}

func TestParsePlanNormalizesType(t *testing.T) {
	meals, err := parsePlan(`[{"day":1,"meal_type":"  SNACK ","name":"Nuts","calories":180}]`, 1)
	if err != nil {
		t.Fatal(err)
	}
	if meals[0].MealType != "snack" {
		t.Errorf("meal type = %q", meals[0].MealType)
	}
}
