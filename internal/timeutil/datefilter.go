// Package timeutil holds the day arithmetic shared by the aggregator and the engine.
package timeutil

import (
	"math"
	"time"
)

// DayKeyLayout is the layout used to bucket timestamps by calendar day
const DayKeyLayout = "2006-01-02"

// DayKey returns the calendar day of t formatted as YYYY-MM-DD
func DayKey(t time.Time) string {
	return t.Format(DayKeyLayout)
}

// DaysAgo returns how many whole 24-hour periods separate t from now.
// Times in the future return a negative value.
func DaysAgo(t, now time.Time) int {
	return int(math.Floor(now.Sub(t).Hours() / 24))
}

// LastDays returns the rolling window covering the n days that end at now
func LastDays(now time.Time, n int) (start, end time.Time) {
	if n < 1 {
		n = 1
	}
	return now.Add(-time.Duration(n) * 24 * time.Hour), now
}

// IsInRange checks if the given time t falls within the range [start, end] (inclusive)
func IsInRange(t, start, end time.Time) bool {
	return (t.Equal(start) || t.After(start)) && (t.Equal(end) || t.Before(end))
}
