package timeutil

import (
	"testing"
	"time"
)

// Helper function to create test times with specific dates
func makeTime(year int, month time.Month, day, hour, min, sec int) time.Time {
	return time.Date(year, month, day, hour, min, sec, 0, time.Local)
}

func TestDaysAgo(t *testing.T) {
	now := makeTime(2024, time.March, 20, 12, 0, 0)

	tests := []struct {
		name string
		t    time.Time
		want int
	}{
		{"same instant", now, 0},
		{"earlier today", now.Add(-3 * time.Hour), 0},
		{"23h59m ago", now.Add(-(24*time.Hour - time.Minute)), 0},
		{"exactly one day", now.Add(-24 * time.Hour), 1},
		{"six and a half days", now.Add(-156 * time.Hour), 6},
		{"exactly seven days", now.Add(-7 * 24 * time.Hour), 7},
		{"thirteen days", now.Add(-13*24*time.Hour - time.Hour), 13},
		{"one hour ahead", now.Add(time.Hour), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DaysAgo(tt.t, now); got != tt.want {
				t.Errorf("DaysAgo(%v) = %d, want %d", tt.t, got, tt.want)
			}
		})
	}
}

func TestLastDays(t *testing.T) {
	now := makeTime(2024, time.March, 20, 12, 0, 0)

	start, end := LastDays(now, 90)
	if !end.Equal(now) {
		t.Errorf("expected end %v, got %v", now, end)
	}
	if got := now.Sub(start); got != 90*24*time.Hour {
		t.Errorf("expected 90 day window, got %v", got)
	}

	start, _ = LastDays(now, 0)
	if got := now.Sub(start); got != 24*time.Hour {
		t.Errorf("expected window clamped to one day, got %v", got)
	}
}

func TestIsInRange(t *testing.T) {
	start := makeTime(2024, time.January, 15, 0, 0, 0)
	end := makeTime(2024, time.January, 15, 23, 59, 59)

	tests := []struct {
		name     string
		testTime time.Time
		expected bool
	}{
		{"exactly at start", start, true},
		{"exactly at end", end, true},
		{"in middle of range", makeTime(2024, time.January, 15, 12, 0, 0), true},
		{"one nanosecond before start", start.Add(-time.Nanosecond), false},
		{"one nanosecond after end", end.Add(time.Nanosecond), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := IsInRange(tt.testTime, start, end)
			if result != tt.expected {
				t.Errorf("IsInRange(%v, %v, %v) = %v, expected %v",
					tt.testTime, start, end, result, tt.expected)
			}
		})
	}
}

func TestDayKey(t *testing.T) {
	if got := DayKey(makeTime(2024, time.February, 9, 23, 0, 0)); got != "2024-02-09" {
		t.Errorf("DayKey = %q", got)
	}
}
