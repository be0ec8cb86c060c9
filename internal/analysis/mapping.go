package analysis

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/xolan/tally/internal/insight"
)

const maxDerivedTitle = 80

// MapInsights extracts task.ResultKey from raw and converts each record into an
// insight. A missing key, a non-array value or a non-object item yields nothing
// for that part; it is never an error.
func MapInsights(raw map[string]any, task Task, newID func() string) []insight.Insight {
	items, ok := raw[task.ResultKey].([]any)
	if !ok {
		return []insight.Insight{}
	}

	out := make([]insight.Insight, 0, len(items))
	for _, item := range items {
		record, ok := item.(map[string]any)
		if !ok {
			continue
		}
		in, ok := mapRecord(record, task)
		if !ok {
			continue
		}
		in.ID = newID()
		out = append(out, in)
	}
	return out
}

func mapRecord(r map[string]any, task Task) (insight.Insight, bool) {
	title := firstString(r, "title", "name", "headline")
	description := firstString(r, "description", "details", "summary", "message")
	if title == "" && description == "" {
		return insight.Insight{}, false
	}
	if title == "" {
		title = deriveTitle(description)
	}
	if description == "" {
		description = title
	}

	in := insight.Insight{
		Type:        task.DefaultType,
		Title:       title,
		Description: description,
		Impact:      firstString(r, "impact", "expected_impact"),
		Actions:     parseActions(r),
		Confidence:  parseConfidence(first(r, "confidence", "probability"), task.DefaultConfidence),
		Priority:    parsePriority(firstString(r, "priority", "severity", "urgency")),
		Source:      task.Name,
	}
	in.Category = parseCategory(firstString(r, "category"), title+" "+description)

	if in.Type == insight.TypeAnomaly && in.Priority == insight.PriorityCritical {
		in.Type = insight.TypeWarning
	}

	if v, ok := toFloat(first(r, "predicted_value", "forecast", "value")); ok {
		in.PredictedValue = &v
	}
	if t, ok := parseDate(firstString(r, "predicted_date", "date")); ok {
		in.PredictedDate = &t
	}
	in.Comparison = parseComparison(r["comparison"])
	in.Visualization = firstString(r, "visualization", "chart")
	in.DataPoints = parseDataPoints(r["data_points"])

	return in, true
}

// parseConfidence accepts numbers or numeric strings. Values in (1, 100] are
// read as percentages. The result is clamped to [0, 1].
func parseConfidence(v any, fallback float64) float64 {
	c, ok := toFloat(v)
	if !ok {
		return fallback
	}
	if c > 1 && c <= 100 {
		c /= 100
	}
	return math.Max(0, math.Min(1, c))
}

func parsePriority(s string) insight.Priority {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical", "urgent":
		return insight.PriorityCritical
	case "high", "major":
		return insight.PriorityHigh
	case "medium", "moderate":
		return insight.PriorityMedium
	case "low", "minor", "info":
		return insight.PriorityLow
	default:
		return insight.PriorityMedium
	}
}

var categoryKeywords = []struct {
	category insight.Category
	words    []string
}{
	{insight.CategoryRevenue, []string{"revenue", "profit", "billing"}},
	{insight.CategoryGrowth, []string{"growth", "expand", "opportunity"}},
	{insight.CategoryRisk, []string{"risk", "warning", "issue"}},
	{insight.CategoryEfficiency, []string{"efficien", "optimize", "improve"}},
}

func parseCategory(field, text string) insight.Category {
	if c, ok := insight.ParseCategory(field); ok {
		return c
	}
	text = strings.ToLower(text)
	for _, k := range categoryKeywords {
		for _, w := range k.words {
			if strings.Contains(text, w) {
				return k.category
			}
		}
	}
	return insight.CategoryProductivity
}

func parseActions(r map[string]any) []string {
	v := first(r, "actions", "action_items", "steps", "recommendations")
	actions := []string{}
	switch val := v.(type) {
	case string:
		if s := strings.TrimSpace(val); s != "" {
			actions = append(actions, s)
		}
	case []any:
		for _, item := range val {
			switch a := item.(type) {
			case string:
				if s := strings.TrimSpace(a); s != "" {
					actions = append(actions, s)
				}
			case map[string]any:
				if s := firstString(a, "action", "title", "description", "step"); s != "" {
					actions = append(actions, s)
				}
			}
		}
	}
	return actions
}

func parseComparison(v any) *insight.Comparison {
	m, ok := v.(map[string]any)
	if !ok {
		return nil
	}
	before, okBefore := toFloat(first(m, "before", "previous", "current"))
	after, okAfter := toFloat(first(m, "after", "projected", "expected"))
	if !okBefore && !okAfter {
		return nil
	}
	return &insight.Comparison{Before: before, After: after}
}

func parseDataPoints(v any) []insight.DataPoint {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	var points []insight.DataPoint
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		value, ok := toFloat(first(m, "value", "y"))
		if !ok {
			continue
		}
		points = append(points, insight.DataPoint{Label: firstString(m, "label", "x", "name"), Value: value})
	}
	return points
}

var dateLayouts = []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func deriveTitle(description string) string {
	if i := strings.IndexAny(description, ".!?\n"); i > 0 {
		description = description[:i]
	}
	runes := []rune(strings.TrimSpace(description))
	if len(runes) > maxDerivedTitle {
		return string(runes[:maxDerivedTitle-3]) + "..."
	}
	return string(runes)
}

// first returns the value of the first key present in r
func first(r map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

// firstString returns the first non-empty string value among keys
func firstString(r map[string]any, keys ...string) string {
	for _, k := range keys {
		if s, ok := r[k].(string); ok {
			if s = strings.TrimSpace(s); s != "" {
				return s
			}
		}
	}
	return ""
}

func toFloat(v any) (float64, bool) {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	case int:
		f = float64(val)
	case int64:
		f = float64(val)
	case json.Number:
		n, err := val.Float64()
		if err != nil {
			return 0, false
		}
		f = n
	case string:
		s := strings.TrimSuffix(strings.TrimSpace(val), "%")
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return 0, false
		}
		f = n
	default:
		return 0, false
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
