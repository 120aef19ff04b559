package ledger

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// FetchDaySummary returns today's summary as computed by the ledger.
func (c *Client) FetchDaySummary(ctx context.Context) (*DailySummary, error) {
	return c.fetchSummary(ctx, "fetch-day-summary", nil)
}

func (c *Client) FetchSummaryForDate(ctx context.Context, date time.Time) (*DailySummary, error) {
	params := url.Values{"target_date": {date.Format(DateLayout)}}
	return c.fetchSummary(ctx, "fetch-summary-for-date", params)
}

func (c *Client) fetchSummary(ctx context.Context, op string, params url.Values) (*DailySummary, error) {
	var out DailySummary
	if err := c.do(ctx, op, http.MethodGet, "/calorie/summary", params, nil, &out); err != nil {
		return nil, err
	}
	if out.LoggedMealsToday == nil {
		out.LoggedMealsToday = []LoggedMeal{}
	}
	return &out, nil
}

// SetGoal rounds goalCalories to an integer before sending.
func (c *Client) SetGoal(ctx context.Context, goalCalories float64) (*CalorieGoal, error) {
	const op = "set-goal"
	req := SetGoalRequest{GoalCalories: RoundCalories(goalCalories)}
	if err := c.validate.Struct(req); err != nil {
		return nil, validationError(op, err)
	}
	var out CalorieGoal
	if err := c.do(ctx, op, http.MethodPut, "/calorie/goal", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// FetchHistory returns one row per day in [from, to].
func (c *Client) FetchHistory(ctx context.Context, from, to time.Time) ([]DayTotals, error) {
	params := url.Values{
		"from": {from.Format(DateLayout)},
		"to":   {to.Format(DateLayout)},
	}
	var out []DayTotals
	if err := c.do(ctx, "fetch-history", http.MethodGet, "/calorie/history", params, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}
