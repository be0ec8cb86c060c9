// Package insight defines the common insight shape produced by every analysis
// task, plus ranking and the fixed insight sets used when analysis cannot run.
package insight

import (
	"strings"
	"time"
)

// Type classifies what kind of finding an insight is
type Type string

const (
	TypePrediction     Type = "prediction"
	TypeAnomaly        Type = "anomaly"
	TypeRecommendation Type = "recommendation"
	TypeAnalysis       Type = "analysis"
	TypeWarning        Type = "warning"
	TypeOpportunity    Type = "opportunity"
)

// Category groups insights by business area
type Category string

const (
	CategoryProductivity Category = "productivity"
	CategoryRevenue      Category = "revenue"
	CategoryEfficiency   Category = "efficiency"
	CategoryGrowth       Category = "growth"
	CategoryRisk         Category = "risk"
)

// Categories lists every known category
var Categories = []Category{CategoryProductivity, CategoryRevenue, CategoryEfficiency, CategoryGrowth, CategoryRisk}

// ParseCategory returns the known category matching s, ignoring case
func ParseCategory(s string) (Category, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return "", false
}

// Priority orders insights by urgency
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// Rank returns the sort position of the priority, lower is more urgent.
// Unknown priorities sort with medium.
func (p Priority) Rank() int {
	switch p {
	case PriorityCritical:
		return 0
	case PriorityHigh:
		return 1
	case PriorityLow:
		return 3
	default:
		return 2
	}
}

// Comparison is a before/after pair attached to an insight
type Comparison struct {
	Before float64 `json:"before"`
	After  float64 `json:"after"`
}

// DataPoint is a labelled value an insight can carry for charting
type DataPoint struct {
	Label string  `json:"label"`
	Value float64 `json:"value"`
}

// Insight is one actionable finding
type Insight struct {
	ID          string   `json:"id"`
	Type        Type     `json:"type"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Impact      string   `json:"impact,omitempty"`
	Actions     []string `json:"actions"`
	Confidence  float64  `json:"confidence"`

	PredictedValue *float64    `json:"predicted_value,omitempty"`
	PredictedDate  *time.Time  `json:"predicted_date,omitempty"`
	Comparison     *Comparison `json:"comparison,omitempty"`
	Visualization  string      `json:"visualization,omitempty"`
	DataPoints     []DataPoint `json:"data_points,omitempty"`

	// Source names the task that produced the insight
	Source string `json:"source,omitempty"`
}

// dedupeKey identifies insights that say the same thing
func (i Insight) dedupeKey() string {
	return strings.Join(strings.Fields(strings.ToLower(i.Title)), " ") + "|" + string(i.Category)
}
