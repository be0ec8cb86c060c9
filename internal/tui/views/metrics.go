package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/tally/internal/service"
	"github.com/xolan/tally/internal/tui/ui"
)

// Metric windows selectable from the metrics view
const (
	WeekDays    = 7
	MonthDays   = 30
	QuarterDays = 90
)

// MetricsModel is the model for the metrics view
type MetricsModel struct {
	source MetricsSource
	scope  Scope
	styles ui.Styles
	keys   ui.KeyMap

	// UI state
	width   int
	height  int
	days    int
	result  *service.StatsResult
	loading bool
	err     error
}

// NewMetricsModel creates a new metrics view model
func NewMetricsModel(source MetricsSource, scope Scope, styles ui.Styles, keys ui.KeyMap) MetricsModel {
	return MetricsModel{
		source: source,
		scope:  scope,
		styles: styles,
		keys:   keys,
		days:   MonthDays,
	}
}

// metricsLoadedMsg is sent when metrics are loaded
type metricsLoadedMsg struct {
	days   int
	result *service.StatsResult
	err    error
}

// Init implements tea.Model
func (m *MetricsModel) Init() tea.Cmd {
	return m.load()
}

// Update implements tea.Model
func (m MetricsModel) Update(msg tea.Msg) (MetricsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Week):
			m.days = WeekDays
			return m, m.load()
		case key.Matches(msg, m.keys.Month):
			m.days = MonthDays
			return m, m.load()
		case key.Matches(msg, m.keys.Quarter):
			m.days = QuarterDays
			return m, m.load()
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		}

	case metricsLoadedMsg:
		if msg.days != m.days {
			return m, nil
		}
		m.loading = false
		m.err = msg.err
		m.result = msg.result
	}

	return m, nil
}

// View implements tea.Model
func (m MetricsModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.ViewTitle.Render(fmt.Sprintf("Metrics, last %d days", m.days)))
	b.WriteString("\n")

	if m.loading {
		b.WriteString("Loading...")
		return b.String()
	}
	if m.err != nil {
		b.WriteString(m.styles.Error.Render(fmt.Sprintf("Error: %v", m.err)))
		return b.String()
	}
	if m.result == nil {
		b.WriteString("No data")
		return b.String()
	}

	bundle := m.result.Bundle
	if bundle.IsEmpty() {
		b.WriteString(m.styles.Muted.Render("No time tracked in this period."))
		return b.String()
	}

	b.WriteString(m.renderStatLine("Hours tracked:", formatHours(bundle.TotalMinutes)))
	b.WriteString(m.renderStatLine("Billable hours:", formatHours(bundle.BillableMinutes)))
	b.WriteString(m.renderStatLine("Billable rate:", formatPercent(bundle.BillableRate)))
	b.WriteString(m.renderStatLine("Revenue:", formatMoney(bundle.TotalRevenue)))
	b.WriteString(m.renderStatLine("Average hourly rate:", formatMoney(bundle.AverageHourlyRate)))
	b.WriteString(m.renderStatLine("Utilization:", formatPercent(bundle.Utilization)))
	b.WriteString(m.renderStatLine("Active days:", fmt.Sprintf("%d %s", bundle.ActiveDays, pluralize("day", bundle.ActiveDays))))
	b.WriteString(m.renderStatLine("Week over week:", fmt.Sprintf("%+.1f%% (%s)", bundle.Trend.RevenueChange, bundle.Trend.Direction)))

	if len(bundle.Clients) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.ViewTitle.Render("By Client"))
		b.WriteString("\n")
		for _, c := range bundle.Clients {
			b.WriteString(fmt.Sprintf("  %-24s %8s %12s\n",
				truncate(c.Name, 24), formatHours(c.Minutes), formatMoney(c.Revenue)))
		}
	}

	if len(bundle.Challenges) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.ViewTitle.Render("Challenges"))
		b.WriteString("\n")
		for _, c := range bundle.Challenges {
			b.WriteString(m.styles.Warning.Render("  ! ") + c + "\n")
		}
	}
	if len(bundle.Opportunities) > 0 {
		b.WriteString("\n")
		b.WriteString(m.styles.ViewTitle.Render("Opportunities"))
		b.WriteString("\n")
		for _, o := range bundle.Opportunities {
			b.WriteString(m.styles.Success.Render("  + ") + o + "\n")
		}
	}

	return b.String()
}

// SetSize sets the view dimensions
func (m *MetricsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Days returns the selected window
func (m MetricsModel) Days() int {
	return m.days
}

// load creates a command to load metrics
func (m *MetricsModel) load() tea.Cmd {
	m.loading = true
	source, scope, days := m.source, m.scope, m.days
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		result, err := source.ForWindow(ctx, scope.UserID, scope.ScopeID, days)
		return metricsLoadedMsg{days: days, result: result, err: err}
	}
}

func (m MetricsModel) renderStatLine(label, value string) string {
	return m.styles.StatLabel.Render(label) + " " + m.styles.StatValue.Render(value) + "\n"
}
