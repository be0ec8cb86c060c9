// Package tui provides the terminal insight feed for tally.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/xolan/tally/internal/service"
	"github.com/xolan/tally/internal/tui/ui"
	"github.com/xolan/tally/internal/tui/views"
)

// Tab represents a view tab
type Tab int

const (
	TabInsights Tab = iota
	TabSummary
	TabMetrics
)

var tabNames = []string{"Insights", "Summary", "Metrics"}

// Sources are the data providers behind the views
type Sources struct {
	Insights views.InsightSource
	Summary  views.SummarySource
	Metrics  views.MetricsSource
}

// SourcesFrom adapts the application services
func SourcesFrom(services *service.Services) Sources {
	return Sources{
		Insights: services.Insights,
		Summary:  services.Insights,
		Metrics:  services.Stats,
	}
}

// Model is the root TUI model
type Model struct {
	scope views.Scope

	// UI state
	activeTab Tab
	width     int
	height    int
	showHelp  bool

	// View models
	insightsView views.InsightsModel
	summaryView  views.SummaryModel
	metricsView  views.MetricsModel

	styles ui.Styles
	keys   ui.KeyMap
}

// New creates a new TUI model for one user scope
func New(sources Sources, userID, scopeID string) Model {
	styles := ui.DefaultStyles()
	keys := ui.DefaultKeyMap()
	scope := views.Scope{UserID: userID, ScopeID: scopeID}

	return Model{
		scope:        scope,
		activeTab:    TabInsights,
		styles:       styles,
		keys:         keys,
		insightsView: views.NewInsightsModel(sources.Insights, scope, styles, keys),
		summaryView:  views.NewSummaryModel(sources.Summary, scope, styles, keys),
		metricsView:  views.NewMetricsModel(sources.Metrics, scope, styles, keys),
	}
}

// Init implements tea.Model
func (m Model) Init() tea.Cmd {
	return m.insightsView.Init()
}

// Update implements tea.Model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit

		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil

		case key.Matches(msg, m.keys.NextTab):
			return m.switchTab(Tab((int(m.activeTab) + 1) % len(tabNames)))

		case key.Matches(msg, m.keys.PrevTab):
			return m.switchTab(Tab((int(m.activeTab) - 1 + len(tabNames)) % len(tabNames)))

		case key.Matches(msg, m.keys.Tab1):
			return m.switchTab(TabInsights)

		case key.Matches(msg, m.keys.Tab2):
			return m.switchTab(TabSummary)

		case key.Matches(msg, m.keys.Tab3):
			return m.switchTab(TabMetrics)
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		contentHeight := m.height - 6 // tabs, status bar and padding
		m.insightsView.SetSize(m.width-4, contentHeight)
		m.summaryView.SetSize(m.width-4, contentHeight)
		m.metricsView.SetSize(m.width-4, contentHeight)
		return m, nil
	}

	// Key presses go to the active view, results go to the view that asked
	if _, isKey := msg.(tea.KeyMsg); isKey {
		return m.updateActive(msg)
	}
	return m.updateAll(msg)
}

func (m Model) updateActive(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.activeTab {
	case TabInsights:
		m.insightsView, cmd = m.insightsView.Update(msg)
	case TabSummary:
		m.summaryView, cmd = m.summaryView.Update(msg)
	case TabMetrics:
		m.metricsView, cmd = m.metricsView.Update(msg)
	}
	return m, cmd
}

func (m Model) updateAll(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds [3]tea.Cmd
	m.insightsView, cmds[0] = m.insightsView.Update(msg)
	m.summaryView, cmds[1] = m.summaryView.Update(msg)
	m.metricsView, cmds[2] = m.metricsView.Update(msg)
	return m, tea.Batch(cmds[:]...)
}

// switchTab activates tab and lazily loads views that have no data yet
func (m Model) switchTab(tab Tab) (tea.Model, tea.Cmd) {
	m.activeTab = tab
	var cmd tea.Cmd
	switch tab {
	case TabSummary:
		cmd = m.summaryView.Init()
	case TabMetrics:
		cmd = m.metricsView.Init()
	}
	return m, cmd
}

// View implements tea.Model
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	switch m.activeTab {
	case TabInsights:
		b.WriteString(m.insightsView.View())
	case TabSummary:
		b.WriteString(m.summaryView.View())
	case TabMetrics:
		b.WriteString(m.metricsView.View())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatusBar())

	if m.showHelp {
		return m.renderHelpOverlay()
	}

	return m.styles.App.Render(b.String())
}

// ActiveTab returns the selected tab
func (m Model) ActiveTab() Tab {
	return m.activeTab
}

// renderTabs renders the tab bar
func (m Model) renderTabs() string {
	var tabs []string
	for i, name := range tabNames {
		if Tab(i) == m.activeTab {
			tabs = append(tabs, m.styles.TabActive.Render(name))
		} else {
			tabs = append(tabs, m.styles.TabInactive.Render(name))
		}
	}
	return m.styles.TabBar.Render(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

// renderStatusBar renders the status bar at the bottom
func (m Model) renderStatusBar() string {
	var parts []string

	switch m.activeTab {
	case TabInsights:
		parts = append(parts, m.renderKeyHelp("j/k", "move"))
		parts = append(parts, m.renderKeyHelp("enter", "details"))
	case TabSummary:
		parts = append(parts, m.renderKeyHelp("j/k", "scroll"))
	case TabMetrics:
		parts = append(parts, m.renderKeyHelp("w/m/a", "window"))
	}
	parts = append(parts, m.renderKeyHelp("r", "refresh"))
	parts = append(parts, m.renderKeyHelp("1-3", "views"))
	parts = append(parts, m.renderKeyHelp("?", "help"))
	parts = append(parts, m.renderKeyHelp("q", "quit"))

	content := strings.Join(parts, "  ")

	padding := m.width - 4 - lipgloss.Width(content)
	if padding > 0 {
		content += strings.Repeat(" ", padding)
	}

	return m.styles.StatusBar.Render(content)
}

// renderKeyHelp renders a single key help item
func (m Model) renderKeyHelp(key, desc string) string {
	return fmt.Sprintf("%s %s",
		m.styles.StatusKey.Render(key),
		m.styles.StatusHelp.Render(desc))
}

// renderHelpOverlay renders the keyboard shortcut dialog
func (m Model) renderHelpOverlay() string {
	var help strings.Builder

	help.WriteString(m.styles.ViewTitle.Render("Keyboard Shortcuts"))
	help.WriteString("\n\n")

	help.WriteString(m.styles.StatLabel.Render("Global:"))
	help.WriteString("\n")
	help.WriteString("  Tab/1-3    Switch views\n")
	help.WriteString("  r          Refresh current view\n")
	help.WriteString("  ?          Toggle help\n")
	help.WriteString("  q          Quit\n")
	help.WriteString("\n")

	switch m.activeTab {
	case TabInsights:
		help.WriteString(m.styles.StatLabel.Render("Insights:"))
		help.WriteString("\n")
		help.WriteString("  j/k        Navigate up/down\n")
		help.WriteString("  enter      Toggle details\n")
		help.WriteString("  esc        Hide details\n")
	case TabSummary:
		help.WriteString(m.styles.StatLabel.Render("Summary:"))
		help.WriteString("\n")
		help.WriteString("  j/k        Scroll\n")
		help.WriteString("  space/b    Page down/up\n")
	case TabMetrics:
		help.WriteString(m.styles.StatLabel.Render("Metrics:"))
		help.WriteString("\n")
		help.WriteString("  w          Last 7 days\n")
		help.WriteString("  m          Last 30 days\n")
		help.WriteString("  a          Last 90 days\n")
	}

	help.WriteString("\n")
	help.WriteString(m.styles.StatLabel.Render("Press ? to close"))

	return m.styles.App.Render(m.styles.Dialog.Render(help.String()))
}

// Run starts the TUI application
func Run(services *service.Services, userID, scopeID string) error {
	model := New(SourcesFrom(services), userID, scopeID)
	p := tea.NewProgram(model, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
