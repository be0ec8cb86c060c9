// Package views contains the tab views of the tally TUI.
package views

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xolan/tally/internal/service"
)

// loadTimeout bounds a single background load
const loadTimeout = 3 * time.Minute

// InsightSource produces the ranked insight feed
type InsightSource interface {
	Generate(ctx context.Context, userID, scopeID string) *service.Report
}

// SummarySource produces the weekly summary markdown
type SummarySource interface {
	GenerateWeeklySummary(ctx context.Context, userID, scopeID string) string
}

// MetricsSource computes metrics without calling the generator
type MetricsSource interface {
	ForWindow(ctx context.Context, userID, scopeID string, days int) (*service.StatsResult, error)
}

// Scope identifies whose data a view shows
type Scope struct {
	UserID  string
	ScopeID string
}

func (s Scope) String() string {
	return s.UserID + "/" + s.ScopeID
}

// formatHours formats minutes as hours with one decimal
func formatHours(minutes int) string {
	return fmt.Sprintf("%.1fh", float64(minutes)/60)
}

func formatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

func formatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

func pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// truncate shortens s to width runes, marking the cut with an ellipsis
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width == 1 {
		return "…"
	}
	return string(r[:width-1]) + "…"
}

// wrap breaks s into lines of at most width runes on word boundaries
func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	var b strings.Builder
	lineLen := 0
	for i, word := range strings.Fields(s) {
		n := len([]rune(word))
		if i > 0 {
			if lineLen+1+n > width {
				b.WriteString("\n")
				lineLen = 0
			} else {
				b.WriteString(" ")
				lineLen++
			}
		}
		b.WriteString(word)
		lineLen += n
	}
	return b.String()
}
