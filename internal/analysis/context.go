// Package analysis turns a metric bundle into the five analysis tasks sent to
// the generator, and maps what comes back into insights.
package analysis

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/xolan/tally/internal/stats"
)

// Number of items of each list carried into a context
const (
	recentDays    = 30
	topClients    = 10
	topChannels   = 10
	topCategories = 10
)

// PredictionsContext feeds revenue and workload forecasting
type PredictionsContext struct {
	Summary           string                 `json:"summary"`
	TotalRevenue      float64                `json:"total_revenue"`
	AverageHourlyRate float64                `json:"average_hourly_rate"`
	BillableRate      float64                `json:"billable_rate"`
	Utilization       float64                `json:"utilization"`
	Trend             stats.Trend            `json:"trend"`
	Weeks             []stats.WeekPoint      `json:"weeks"`
	Projects          []stats.ProjectMetrics `json:"projects"`
}

// AnomaliesContext feeds detection of unusual days and shifts
type AnomaliesContext struct {
	Summary             string                 `json:"summary"`
	AverageDailyMinutes float64                `json:"average_daily_minutes"`
	AverageDailyRevenue float64                `json:"average_daily_revenue"`
	RecentDays          []stats.DayPoint       `json:"recent_days"`
	Trend               stats.Trend            `json:"trend"`
	Channels            []stats.ChannelMetrics `json:"channels"`
}

// RecommendationsContext feeds concrete improvement advice
type RecommendationsContext struct {
	Summary             string                 `json:"summary"`
	BillableRate        float64                `json:"billable_rate"`
	Utilization         float64                `json:"utilization"`
	ClientConcentration float64                `json:"client_concentration"`
	AverageHourlyRate   float64                `json:"average_hourly_rate"`
	Challenges          []string               `json:"challenges"`
	Channels            []stats.ChannelMetrics `json:"channels"`
	Clients             []stats.ClientMetrics  `json:"clients"`
}

// PatternsContext feeds work rhythm analysis
type PatternsContext struct {
	Summary      string                  `json:"summary"`
	Hours        []HourSlot              `json:"hours"`
	Weekdays     []WeekdaySlot           `json:"weekdays"`
	PeakHour     int                     `json:"peak_hour"`
	PeakWeekday  string                  `json:"peak_weekday,omitempty"`
	Correlations stats.Correlations      `json:"correlations"`
	Categories   []stats.CategoryMetrics `json:"categories"`
}

// OpportunitiesContext feeds growth and revenue-recovery ideas
type OpportunitiesContext struct {
	Summary           string                 `json:"summary"`
	AverageHourlyRate float64                `json:"average_hourly_rate"`
	Opportunities     []string               `json:"opportunities"`
	Underutilized     []stats.RetainerUsage  `json:"underutilized"`
	Clients           []stats.ClientMetrics  `json:"clients"`
	Channels          []stats.ChannelMetrics `json:"channels"`
}

// HourSlot is a non-empty hour of the time-of-day distribution
type HourSlot struct {
	Hour int `json:"hour"`
	stats.Bucket
}

// WeekdaySlot is a non-empty day of the day-of-week distribution
type WeekdaySlot struct {
	Weekday string `json:"weekday"`
	stats.Bucket
}

// Contexts holds one payload per analysis task
type Contexts struct {
	Predictions     PredictionsContext
	Anomalies       AnomaliesContext
	Recommendations RecommendationsContext
	Patterns        PatternsContext
	Opportunities   OpportunitiesContext
}

// BuildContexts derives the task payloads from b. The bundle is not modified.
func BuildContexts(b stats.MetricBundle) Contexts {
	overview := Overview(b)

	return Contexts{
		Predictions: PredictionsContext{
			Summary: overview + " " + trendSentence(b.Trend) +
				fmt.Sprintf(" %d weeks of history are included.", len(b.Weeks)),
			TotalRevenue:      round2(b.TotalRevenue),
			AverageHourlyRate: round2(b.AverageHourlyRate),
			BillableRate:      round2(b.BillableRate),
			Utilization:       round2(b.Utilization),
			Trend:             b.Trend,
			Weeks:             clone(b.Weeks),
			Projects:          clone(b.Projects),
		},
		Anomalies: AnomaliesContext{
			Summary:             overview + " " + trendSentence(b.Trend),
			AverageDailyMinutes: round2(average(b.TotalMinutes, b.ActiveDays)),
			AverageDailyRevenue: round2(averageFloat(b.TotalRevenue, b.ActiveDays)),
			RecentDays:          tail(b.Days, recentDays),
			Trend:               b.Trend,
			Channels:            head(b.Channels, topChannels),
		},
		Recommendations: RecommendationsContext{
			Summary:             overview + " " + challengesSentence(b.Challenges),
			BillableRate:        round2(b.BillableRate),
			Utilization:         round2(b.Utilization),
			ClientConcentration: round2(b.ClientConcentration),
			AverageHourlyRate:   round2(b.AverageHourlyRate),
			Challenges:          clone(b.Challenges),
			Channels:            head(b.Channels, topChannels),
			Clients:             head(b.Clients, topClients),
		},
		Patterns: PatternsContext{
			Summary:      overview + " " + peakSentence(b),
			Hours:        hourSlots(b.Hours),
			Weekdays:     weekdaySlots(b.Weekdays),
			PeakHour:     b.PeakHour,
			PeakWeekday:  weekdayName(b.PeakWeekday),
			Correlations: b.Correlations,
			Categories:   head(b.Categories, topCategories),
		},
		Opportunities: OpportunitiesContext{
			Summary:           overview + " " + retainerSentence(b.Underutilized),
			AverageHourlyRate: round2(b.AverageHourlyRate),
			Opportunities:     clone(b.Opportunities),
			Underutilized:     clone(b.Underutilized),
			Clients:           head(b.Clients, topClients),
			Channels:          head(b.Channels, topChannels),
		},
	}
}

// Overview is a one-paragraph narrative of the headline numbers
func Overview(b stats.MetricBundle) string {
	return fmt.Sprintf(
		"Across %d active days and %d entries, %.1f hours were tracked, %.1f%% billable, earning %.2f at %.2f per billable hour. Utilization is %.1f%% of a %.1f hour daily target.",
		b.ActiveDays, b.EntryCount, float64(b.TotalMinutes)/60, b.BillableRate,
		b.TotalRevenue, b.AverageHourlyRate, b.Utilization, b.TargetDailyHours,
	)
}

func trendSentence(t stats.Trend) string {
	return fmt.Sprintf("Revenue over the last 7 days is %.2f against %.2f the week before (%+.1f%%, %s).",
		t.CurrentRevenue, t.PreviousRevenue, t.RevenueChange, t.Direction)
}

func challengesSentence(challenges []string) string {
	if len(challenges) == 0 {
		return "No rule-based challenges were detected."
	}
	return fmt.Sprintf("Detected challenges: %s.", strings.Join(challenges, "; "))
}

func peakSentence(b stats.MetricBundle) string {
	if b.PeakHour < 0 {
		return "There is no time-of-day pattern yet."
	}
	return fmt.Sprintf("Most time is logged around %02d:00 and on %s.", b.PeakHour, weekdayName(b.PeakWeekday))
}

func retainerSentence(r []stats.RetainerUsage) string {
	if len(r) == 0 {
		return "All retainers are at least 80% used."
	}
	var unused float64
	for _, u := range r {
		unused += u.UnusedValue
	}
	return fmt.Sprintf("%d retainers are underused, leaving %.2f of prepaid value unworked.", len(r), unused)
}

func hourSlots(hours [24]stats.Bucket) []HourSlot {
	out := []HourSlot{}
	for h, b := range hours {
		if b.EntryCount > 0 {
			out = append(out, HourSlot{Hour: h, Bucket: roundBucket(b)})
		}
	}
	return out
}

func weekdaySlots(days [7]stats.Bucket) []WeekdaySlot {
	out := []WeekdaySlot{}
	for d, b := range days {
		if b.EntryCount > 0 {
			out = append(out, WeekdaySlot{Weekday: time.Weekday(d).String(), Bucket: roundBucket(b)})
		}
	}
	return out
}

func weekdayName(d int) string {
	if d < 0 || d > 6 {
		return ""
	}
	return time.Weekday(d).String()
}

func roundBucket(b stats.Bucket) stats.Bucket {
	b.Revenue = round2(b.Revenue)
	return b
}

func average(total, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

func averageFloat(total float64, n int) float64 {
	if n == 0 {
		return 0
	}
	return total / float64(n)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func clone[T any](s []T) []T {
	out := make([]T, len(s))
	copy(out, s)
	return out
}

func head[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[:n]
	}
	return clone(s)
}

func tail[T any](s []T, n int) []T {
	if len(s) > n {
		s = s[len(s)-n:]
	}
	return clone(s)
}
