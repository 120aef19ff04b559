package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// recorder captures the last request a test server saw.
type recorder struct {
	method string
	path   string
	query  string
	auth   string
	reqID  string
	body   map[string]any
}

func newServer(t *testing.T, status int, response string) (*httptest.Server, *recorder) {
	t.Helper()
	rec := &recorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.auth = r.Header.Get("Authorization")
		rec.reqID = r.Header.Get("X-Request-ID")
		rec.body = nil
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			if err := json.Unmarshal(raw, &rec.body); err != nil {
				t.Errorf("request body is not json: %s", raw)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, response)
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func newTestClient(url string, opts ...Option) *Client {
	return NewClient(url, "tok-123", append([]Option{WithLogger(quietLogger())}, opts...)...)
}

func TestLogManualRoundsCalories(t *testing.T) {
	srv, rec := newServer(t, http.StatusCreated, `{"log_id": 9, "name": "Oatmeal", "meal_type": "snack", "calories": 313}`)
	c := newTestClient(srv.URL + "/")

	got, err := c.LogManual(context.Background(), "  Oatmeal ", "", 312.6)
	if err != nil {
		t.Fatalf("LogManual: %v", err)
	}
	if rec.method != http.MethodPost || rec.path != "/api/v1/meals/log-manual" {
		t.Fatalf("request = %s %s", rec.method, rec.path)
	}
	if rec.auth != "Bearer tok-123" || rec.reqID == "" {
		t.Fatalf("headers auth=%q request_id=%q", rec.auth, rec.reqID)
	}
	if rec.body["calories"] != float64(313) || rec.body["meal_type"] != "snack" || rec.body["name"] != "Oatmeal" {
		t.Fatalf("body = %v", rec.body)
	}
	if got.LogID != 9 || got.Calories != 313 {
		t.Fatalf("got %+v", got)
	}
}

func TestLogManualValidatesLocally(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{}`)
	c := newTestClient(srv.URL)

	_, err := c.LogManual(context.Background(), "x", "brunch", 100)
	if !IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}
	_, err = c.LogManual(context.Background(), "x", Lunch, 9000)
	if !IsValidation(err) {
		t.Fatalf("err = %v, want validation", err)
	}
	if rec.method != "" {
		t.Fatalf("invalid request reached the server")
	}
}

func TestUpdateLogPayload(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"log_id": 4, "calories": 600}`)
	c := newTestClient(srv.URL)

	req := UpdateLogRequest{
		MealType: "LUNCH",
		Calories: 600,
		Protein:  Float64(30.04),
		Carbs:    Float64(75),
		Fat:      Float64(15),
		Fiber:    Float64(7.45),
	}
	if _, err := c.UpdateLog(context.Background(), 4, req); err != nil {
		t.Fatalf("UpdateLog: %v", err)
	}
	if rec.method != http.MethodPut || rec.path != "/api/v1/meals/4" {
		t.Fatalf("request = %s %s", rec.method, rec.path)
	}
	want := map[string]any{
		"meal_type": "lunch",
		"calories":  float64(600),
		"protein":   30.0,
		"carbs":     75.0,
		"fat":       15.0,
		"fiber":     7.5,
	}
	for k, v := range want {
		if rec.body[k] != v {
			t.Errorf("body[%s] = %v, want %v", k, rec.body[k], v)
		}
	}
}

func TestUpdateLogOmitsMissingMacros(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"log_id": 4}`)
	c := newTestClient(srv.URL)

	if _, err := c.UpdateLog(context.Background(), 4, UpdateLogRequest{MealType: Dinner, Calories: 600}); err != nil {
		t.Fatalf("UpdateLog: %v", err)
	}
	for _, k := range []string{"protein", "carbs", "fat", "fiber"} {
		if _, ok := rec.body[k]; ok {
			t.Errorf("payload carries %s: %v", k, rec.body)
		}
	}
}

func TestDeleteLogNoContent(t *testing.T) {
	srv, rec := newServer(t, http.StatusNoContent, "")
	c := newTestClient(srv.URL)

	if err := c.DeleteLog(context.Background(), 12); err != nil {
		t.Fatalf("DeleteLog: %v", err)
	}
	if rec.method != http.MethodDelete || rec.path != "/api/v1/meals/12" {
		t.Fatalf("request = %s %s", rec.method, rec.path)
	}
}

func TestErrorMessages(t *testing.T) {
	cases := []struct {
		name     string
		status   int
		body     string
		wantKind ErrorKind
		wantMsg  string
	}{
		{"error field", http.StatusNotFound, `{"error": "Meal not found"}`, KindNotFound, "Meal not found"},
		{"detail field", http.StatusBadRequest, `{"detail": "Invalid meal type"}`, KindValidation, "Invalid meal type"},
		{"unparsable", http.StatusBadGateway, `<html>oops</html>`, KindServer, "remote ledger request failed with status 502"},
		{"unauthorized", http.StatusUnauthorized, `{"error": "Invalid token"}`, KindUnauthorized, "Invalid token"},
		{"gateway timeout", http.StatusGatewayTimeout, ``, KindTimedOut, "remote ledger request failed with status 504"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv, _ := newServer(t, tc.status, tc.body)
			c := newTestClient(srv.URL)

			err := c.DeleteLog(context.Background(), 1)
			var le *RemoteLedgerError
			if !errors.As(err, &le) {
				t.Fatalf("err = %T %v", err, err)
			}
			if le.Kind != tc.wantKind || le.Message != tc.wantMsg || le.Status != tc.status {
				t.Fatalf("got kind=%s msg=%q status=%d", le.Kind, le.Message, le.Status)
			}
		})
	}
}

func TestUnparsableSuccessBody(t *testing.T) {
	srv, _ := newServer(t, http.StatusOK, `not json`)
	c := newTestClient(srv.URL)

	_, err := c.FetchDaySummary(context.Background())
	if KindOf(err) != KindServer {
		t.Fatalf("err = %v", err)
	}
}

func TestTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	c := newTestClient(srv.URL, WithTimeout(50*time.Millisecond))

	_, err := c.FetchDaySummary(context.Background())
	var le *RemoteLedgerError
	if !errors.As(err, &le) || le.Kind != KindTimedOut {
		t.Fatalf("err = %v, want timed out", err)
	}
	if !le.Retryable() {
		t.Fatalf("timeouts should be retryable")
	}
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	err := newTestClient(url).DeleteLog(context.Background(), 1)
	if KindOf(err) != KindNetwork {
		t.Fatalf("err = %v, want network", err)
	}
}

func TestFetchSummaryAndTemplates(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"daily_goal": 1800, "total_consumed": 0, "remaining": 1800, "entry_date": "2025-03-14"}`)
	c := newTestClient(srv.URL)

	day := time.Date(2025, 3, 14, 0, 0, 0, 0, time.Local)
	s, err := c.FetchSummaryForDate(context.Background(), day)
	if err != nil {
		t.Fatalf("FetchSummaryForDate: %v", err)
	}
	if rec.path != "/api/v1/calorie/summary" || rec.query != "target_date=2025-03-14" {
		t.Fatalf("request = %s?%s", rec.path, rec.query)
	}
	if s.LoggedMealsToday == nil || s.DailyGoal != 1800 {
		t.Fatalf("summary = %+v", s)
	}

	srv2, rec2 := newServer(t, http.StatusOK, `null`)
	templates, err := newTestClient(srv2.URL).FetchTemplates(context.Background())
	if err != nil {
		t.Fatalf("FetchTemplates: %v", err)
	}
	if templates == nil || len(templates) != 0 {
		t.Fatalf("templates = %#v", templates)
	}
	if !strings.Contains(rec2.query, "source=generated") {
		t.Fatalf("query = %s", rec2.query)
	}
}

func TestSetGoalRoundsAndValidates(t *testing.T) {
	srv, rec := newServer(t, http.StatusOK, `{"goal_calories": 1851}`)
	c := newTestClient(srv.URL)

	if _, err := c.SetGoal(context.Background(), 1850.5); err != nil {
		t.Fatalf("SetGoal: %v", err)
	}
	if rec.body["goal_calories"] != float64(1851) {
		t.Fatalf("body = %v", rec.body)
	}
	if _, err := c.SetGoal(context.Background(), 0); !IsValidation(err) {
		t.Fatalf("zero goal err = %v", err)
	}
	if _, err := c.SetGoal(context.Background(), 20000); !IsValidation(err) {
		t.Fatalf("huge goal err = %v", err)
	}
}

func TestGetNoteMissing(t *testing.T) {
	srv, _ := newServer(t, http.StatusNotFound, `{"error": "Note not found"}`)
	n, err := newTestClient(srv.URL).GetNote(context.Background(), time.Now())
	if err != nil || n != nil {
		t.Fatalf("got %+v, %v", n, err)
	}
}
