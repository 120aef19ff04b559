package utils

import (
	"fmt"
	"time"

	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
)

// DayStartLocal is midnight of t's calendar day in the server's zone.
func DayStartLocal(t time.Time) time.Time {
	tt := t.In(time.Local)
	return time.Date(tt.Year(), tt.Month(), tt.Day(), 0, 0, 0, 0, time.Local)
}

// ParseDay parses YYYY-MM-DD in the server's zone. An empty string is today.
func ParseDay(s string) (time.Time, error) {
	if s == "" {
		return DayStartLocal(time.Now()), nil
	}
	d, err := time.ParseInLocation(ledger.DateLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return d, nil
}

// DateOnly keeps t's calendar fields and moves it to local midnight. Use it
// for values read from date columns, which come back in UTC.
func DateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}
