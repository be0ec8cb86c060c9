package analysis

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"

	"github.com/xolan/tally/internal/llm"
	"github.com/xolan/tally/internal/stats"
)

// Static weekly reports used when the generator is not consulted or fails
const (
	SummaryUnavailable = "# Weekly Summary\n\nUnable to generate the weekly summary right now. Please try again later.\n"
	SummaryNoActivity  = "# Weekly Summary\n\nNo activity was tracked in the last 7 days. Log some time to get a weekly review.\n"
)

// WeeklyContext is the reduced metric set sent for the weekly review
type WeeklyContext struct {
	Summary       string                 `json:"summary"`
	Hours         float64                `json:"hours"`
	BillableHours float64                `json:"billable_hours"`
	BillableRate  float64                `json:"billable_rate"`
	Revenue       float64                `json:"revenue"`
	ActiveDays    int                    `json:"active_days"`
	Trend         stats.Trend            `json:"trend"`
	TopClients    []stats.ClientMetrics  `json:"top_clients"`
	TopChannels   []stats.ChannelMetrics `json:"top_channels"`
	Challenges    []string               `json:"challenges"`
	Opportunities []string               `json:"opportunities"`
}

// WeeklySummary is the structured review returned by the generator
type WeeklySummary struct {
	ExecutiveSummary   string
	Achievements       []string
	AttentionItems     []string
	NextWeekPriorities []string
	StrategicInsight   string
}

// BuildWeeklyContext reduces a 7-day bundle to the weekly review payload
func BuildWeeklyContext(b stats.MetricBundle) WeeklyContext {
	return WeeklyContext{
		Summary:       Overview(b) + " " + trendSentence(b.Trend),
		Hours:         round2(float64(b.TotalMinutes) / 60),
		BillableHours: round2(float64(b.BillableMinutes) / 60),
		BillableRate:  round2(b.BillableRate),
		Revenue:       round2(b.TotalRevenue),
		ActiveDays:    b.ActiveDays,
		Trend:         b.Trend,
		TopClients:    head(b.Clients, 5),
		TopChannels:   head(b.Channels, 5),
		Challenges:    clone(b.Challenges),
		Opportunities: clone(b.Opportunities),
	}
}

// WeeklyMessages renders the conversation for the weekly review
func WeeklyMessages(wc WeeklyContext) ([]llm.Message, error) {
	return Messages(weeklySummaryInstruction, wc)
}

// ParseWeeklySummary reads the generator response, tolerating missing keys and
// strings where lists are expected
func ParseWeeklySummary(raw map[string]any) WeeklySummary {
	return WeeklySummary{
		ExecutiveSummary:   firstString(raw, "executive_summary", "summary"),
		Achievements:       stringList(raw["achievements"]),
		AttentionItems:     stringList(first(raw, "attention_items", "concerns")),
		NextWeekPriorities: stringList(first(raw, "next_week_priorities", "priorities")),
		StrategicInsight:   firstString(raw, "strategic_insight", "insight"),
	}
}

// IsEmpty reports whether the generator returned nothing usable
func (s WeeklySummary) IsEmpty() bool {
	return s.ExecutiveSummary == "" && len(s.Achievements) == 0 &&
		len(s.AttentionItems) == 0 && len(s.NextWeekPriorities) == 0 && s.StrategicInsight == ""
}

// Markdown renders the review with a fixed set of sections
func (s WeeklySummary) Markdown(wc WeeklyContext) string {
	var sb strings.Builder
	sb.WriteString("# Weekly Summary\n\n")

	sb.WriteString("## Executive Summary\n\n")
	sb.WriteString(orDefault(s.ExecutiveSummary, "No summary available.") + "\n\n")

	sb.WriteString("## Key Metrics\n\n")
	fmt.Fprintf(&sb, "- Hours tracked: %.1f\n", wc.Hours)
	fmt.Fprintf(&sb, "- Billable hours: %.1f (%.1f%%)\n", wc.BillableHours, wc.BillableRate)
	fmt.Fprintf(&sb, "- Revenue: %.2f\n", wc.Revenue)
	fmt.Fprintf(&sb, "- Active days: %d\n", wc.ActiveDays)
	fmt.Fprintf(&sb, "- Week over week: %+.1f%% (%s)\n\n", wc.Trend.RevenueChange, wc.Trend.Direction)

	writeList(&sb, "Achievements", s.Achievements)
	writeList(&sb, "Needs Attention", s.AttentionItems)
	writeList(&sb, "Next Week Priorities", s.NextWeekPriorities)

	sb.WriteString("## Strategic Insight\n\n")
	sb.WriteString(orDefault(s.StrategicInsight, "No strategic insight available.") + "\n")
	return sb.String()
}

func writeList(sb *strings.Builder, heading string, items []string) {
	sb.WriteString("## " + heading + "\n\n")
	if len(items) == 0 {
		sb.WriteString("- None\n\n")
		return
	}
	for _, item := range items {
		sb.WriteString("- " + item + "\n")
	}
	sb.WriteString("\n")
}

func stringList(v any) []string {
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			return []string{s}
		}
	case []any:
		out := []string{}
		for _, item := range val {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				out = append(out, strings.TrimSpace(s))
			}
		}
		return out
	}
	return []string{}
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

// SummaryHTML converts a markdown summary to an HTML fragment
func SummaryHTML(markdown string) (string, error) {
	var buf bytes.Buffer
	if err := goldmark.Convert([]byte(markdown), &buf); err != nil {
		return "", fmt.Errorf("failed to render summary html: %w", err)
	}
	return buf.String(), nil
}
