package ui

import (
	"testing"

	"github.com/charmbracelet/lipgloss"

	"github.com/xolan/tally/internal/insight"
)

func TestDefaultStyles(t *testing.T) {
	styles := DefaultStyles()

	tests := []struct {
		name  string
		style lipgloss.Style
	}{
		{"App", styles.App},
		{"TabBar", styles.TabBar},
		{"TabActive", styles.TabActive},
		{"TabInactive", styles.TabInactive},
		{"ViewTitle", styles.ViewTitle},
		{"Muted", styles.Muted},
		{"StatusBar", styles.StatusBar},
		{"StatusKey", styles.StatusKey},
		{"StatusHelp", styles.StatusHelp},
		{"ItemSelected", styles.ItemSelected},
		{"ItemNormal", styles.ItemNormal},
		{"ItemType", styles.ItemType},
		{"ItemCategory", styles.ItemCategory},
		{"Confidence", styles.Confidence},
		{"PriorityCritical", styles.PriorityCritical},
		{"PriorityHigh", styles.PriorityHigh},
		{"PriorityMedium", styles.PriorityMedium},
		{"PriorityLow", styles.PriorityLow},
		{"Detail", styles.Detail},
		{"DetailTitle", styles.DetailTitle},
		{"Action", styles.Action},
		{"StatLabel", styles.StatLabel},
		{"StatValue", styles.StatValue},
		{"Dialog", styles.Dialog},
		{"Error", styles.Error},
		{"Warning", styles.Warning},
		{"Success", styles.Success},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rendered := tt.style.Render("test")
			if rendered == "" {
				t.Errorf("expected non-empty rendered output for style %s", tt.name)
			}
		})
	}
}

func TestStyles_Priority(t *testing.T) {
	styles := DefaultStyles()

	tests := []struct {
		priority insight.Priority
		want     lipgloss.Style
	}{
		{insight.PriorityCritical, styles.PriorityCritical},
		{insight.PriorityHigh, styles.PriorityHigh},
		{insight.PriorityMedium, styles.PriorityMedium},
		{insight.PriorityLow, styles.PriorityLow},
		{insight.Priority("whenever"), styles.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(string(tt.priority), func(t *testing.T) {
			got := styles.Priority(tt.priority).GetForeground()
			if got != tt.want.GetForeground() {
				t.Errorf("Priority(%q) foreground = %v, want %v", tt.priority, got, tt.want.GetForeground())
			}
		})
	}
}
