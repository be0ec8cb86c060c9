package views

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/tally/internal/tui/ui"
)

// SummaryModel shows the weekly summary in a scrollable viewport
type SummaryModel struct {
	source SummarySource
	scope  Scope
	styles ui.Styles
	keys   ui.KeyMap

	viewport viewport.Model
	summary  string
	loading  bool
	loaded   bool
}

// NewSummaryModel creates a new weekly summary view model
func NewSummaryModel(source SummarySource, scope Scope, styles ui.Styles, keys ui.KeyMap) SummaryModel {
	return SummaryModel{
		source:   source,
		scope:    scope,
		styles:   styles,
		keys:     keys,
		viewport: viewport.New(80, 20),
	}
}

type summaryLoadedMsg struct {
	summary string
}

// Init loads the summary the first time the tab is opened
func (m *SummaryModel) Init() tea.Cmd {
	if m.loaded || m.loading {
		return nil
	}
	return m.load()
}

// Update implements tea.Model
func (m SummaryModel) Update(msg tea.Msg) (SummaryModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, m.keys.Refresh) {
			return m, m.load()
		}
	case summaryLoadedMsg:
		m.loading = false
		m.loaded = true
		m.summary = msg.summary
		m.viewport.SetContent(m.summary)
		m.viewport.GotoTop()
		return m, nil
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model
func (m SummaryModel) View() string {
	var b strings.Builder
	b.WriteString(m.styles.ViewTitle.Render("Weekly Summary"))
	b.WriteString("\n")

	switch {
	case m.loading && !m.loaded:
		b.WriteString("Writing your weekly summary...")
	case !m.loaded:
		b.WriteString("No data")
	default:
		b.WriteString(m.viewport.View())
	}
	return b.String()
}

// SetSize sets the view dimensions
func (m *SummaryModel) SetSize(width, height int) {
	m.viewport.Width = width
	m.viewport.Height = max(1, height-2)
}

// Summary returns the loaded markdown
func (m SummaryModel) Summary() string {
	return m.summary
}

func (m *SummaryModel) load() tea.Cmd {
	m.loading = true
	source, scope := m.source, m.scope
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return summaryLoadedMsg{summary: source.GenerateWeeklySummary(ctx, scope.UserID, scope.ScopeID)}
	}
}
