package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/xolan/tally/internal/insight"
)

// Styles contains all the styles used in the TUI
type Styles struct {
	// Base styles
	App lipgloss.Style

	// Tab bar
	TabBar      lipgloss.Style
	TabActive   lipgloss.Style
	TabInactive lipgloss.Style

	// Content area
	ViewTitle lipgloss.Style
	Muted     lipgloss.Style

	// Status bar
	StatusBar  lipgloss.Style
	StatusKey  lipgloss.Style
	StatusHelp lipgloss.Style

	// Insight list
	ItemSelected lipgloss.Style
	ItemNormal   lipgloss.Style
	ItemType     lipgloss.Style
	ItemCategory lipgloss.Style
	Confidence   lipgloss.Style

	// Priority badges
	PriorityCritical lipgloss.Style
	PriorityHigh     lipgloss.Style
	PriorityMedium   lipgloss.Style
	PriorityLow      lipgloss.Style

	// Detail pane
	Detail      lipgloss.Style
	DetailTitle lipgloss.Style
	Action      lipgloss.Style

	// Metrics
	StatLabel lipgloss.Style
	StatValue lipgloss.Style

	// Dialog
	Dialog lipgloss.Style

	// Errors and warnings
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
}

// DefaultStyles returns the default TUI styles
func DefaultStyles() Styles {
	// Color palette
	primary := lipgloss.Color("99")     // Purple
	secondary := lipgloss.Color("39")   // Cyan
	accent := lipgloss.Color("212")     // Pink
	muted := lipgloss.Color("240")      // Gray
	text := lipgloss.Color("252")       // Light gray
	success := lipgloss.Color("82")     // Green
	warning := lipgloss.Color("214")    // Orange
	errorColor := lipgloss.Color("196") // Red

	badge := lipgloss.NewStyle().Bold(true).Width(10)

	return Styles{
		App: lipgloss.NewStyle().Padding(1, 2),

		TabBar: lipgloss.NewStyle().
			MarginBottom(1).
			BorderBottom(true).
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(muted),
		TabActive: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			Padding(0, 2),
		TabInactive: lipgloss.NewStyle().
			Foreground(muted).
			Padding(0, 2),

		ViewTitle: lipgloss.NewStyle().
			Foreground(primary).
			Bold(true).
			MarginBottom(1),
		Muted: lipgloss.NewStyle().
			Foreground(muted),

		StatusBar: lipgloss.NewStyle().
			Foreground(text).
			Background(lipgloss.Color("236")).
			Padding(0, 1),
		StatusKey: lipgloss.NewStyle().
			Foreground(secondary).
			Bold(true),
		StatusHelp: lipgloss.NewStyle().
			Foreground(muted),

		ItemSelected: lipgloss.NewStyle().
			Background(lipgloss.Color("237")).
			Bold(true),
		ItemNormal: lipgloss.NewStyle(),
		ItemType: lipgloss.NewStyle().
			Foreground(secondary).
			Width(15),
		ItemCategory: lipgloss.NewStyle().
			Foreground(primary),
		Confidence: lipgloss.NewStyle().
			Foreground(accent).
			Width(5).
			Align(lipgloss.Right),

		PriorityCritical: badge.Foreground(errorColor),
		PriorityHigh:     badge.Foreground(warning),
		PriorityMedium:   badge.Foreground(secondary),
		PriorityLow:      badge.Foreground(muted),

		Detail: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(muted).
			Padding(0, 1).
			MarginTop(1),
		DetailTitle: lipgloss.NewStyle().
			Foreground(text).
			Bold(true),
		Action: lipgloss.NewStyle().
			Foreground(success),

		StatLabel: lipgloss.NewStyle().
			Foreground(muted).
			Width(24),
		StatValue: lipgloss.NewStyle().
			Foreground(text).
			Bold(true),

		Dialog: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(primary).
			Padding(1, 2).
			Width(50),

		Error: lipgloss.NewStyle().
			Foreground(errorColor),
		Warning: lipgloss.NewStyle().
			Foreground(warning),
		Success: lipgloss.NewStyle().
			Foreground(success),
	}
}

// Priority returns the badge style for p; unknown priorities render as medium
func (s Styles) Priority(p insight.Priority) lipgloss.Style {
	switch p {
	case insight.PriorityCritical:
		return s.PriorityCritical
	case insight.PriorityHigh:
		return s.PriorityHigh
	case insight.PriorityLow:
		return s.PriorityLow
	default:
		return s.PriorityMedium
	}
}
