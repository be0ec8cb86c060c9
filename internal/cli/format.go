// Package cli provides the CLI presentation layer for tally.
// It handles command-line output formatting and user interaction.
package cli

import (
	"fmt"
	"strings"

	"github.com/xolan/tally/internal/insight"
	"github.com/xolan/tally/internal/storage"
)

// FormatHours formats minutes as hours with one decimal, e.g. "7.5h"
func FormatHours(minutes int) string {
	return fmt.Sprintf("%.1fh", float64(minutes)/60)
}

// FormatMoney formats an amount with two decimals
func FormatMoney(v float64) string {
	return fmt.Sprintf("%.2f", v)
}

// FormatPercent formats a 0-100 value with one decimal
func FormatPercent(v float64) string {
	return fmt.Sprintf("%.1f%%", v)
}

// Pluralize returns the singular or plural form of a word based on count
func Pluralize(word string, count int) string {
	if count == 1 {
		return word
	}
	return word + "s"
}

// Truncate shortens s to max runes, ending with "..." when cut
func Truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// FormatParseWarning formats a ParseWarning with file, line number,
// truncated content (max 50 chars) and error description
func FormatParseWarning(w storage.ParseWarning) string {
	return fmt.Sprintf("  %s line %d: %s (error: %s)", w.File, w.LineNumber, Truncate(w.Content, 50), w.Error)
}

// FormatInsight renders one insight as an indented block headed by its rank
func FormatInsight(rank int, in insight.Insight) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%2d. [%s] %s\n", rank, strings.ToUpper(string(in.Priority)), in.Title)
	fmt.Fprintf(&b, "    %s · %s · %.0f%% confidence\n", in.Type, in.Category, in.Confidence*100)
	if in.Description != "" {
		fmt.Fprintf(&b, "    %s\n", in.Description)
	}
	if in.Impact != "" {
		fmt.Fprintf(&b, "    Impact: %s\n", in.Impact)
	}
	if in.PredictedValue != nil {
		fmt.Fprintf(&b, "    Predicted value: %s\n", FormatMoney(*in.PredictedValue))
	}
	if in.PredictedDate != nil {
		fmt.Fprintf(&b, "    Predicted date: %s\n", in.PredictedDate.Format("2006-01-02"))
	}
	if c := in.Comparison; c != nil {
		fmt.Fprintf(&b, "    Change: %s -> %s\n", FormatMoney(c.Before), FormatMoney(c.After))
	}
	for _, a := range in.Actions {
		fmt.Fprintf(&b, "    - %s\n", a)
	}
	return b.String()
}
