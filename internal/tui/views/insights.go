package views

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/tally/internal/insight"
	"github.com/xolan/tally/internal/service"
	"github.com/xolan/tally/internal/tui/ui"
)

// InsightsModel is the ranked insight feed with a detail pane
type InsightsModel struct {
	source InsightSource
	scope  Scope
	styles ui.Styles
	keys   ui.KeyMap

	// UI state
	width      int
	height     int
	spinner    spinner.Model
	loading    bool
	report     *service.Report
	cursor     int
	showDetail bool
	generation int
}

// NewInsightsModel creates a new insights view model
func NewInsightsModel(source InsightSource, scope Scope, styles ui.Styles, keys ui.KeyMap) InsightsModel {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = styles.StatusKey
	return InsightsModel{
		source:     source,
		scope:      scope,
		styles:     styles,
		keys:       keys,
		spinner:    sp,
		loading:    true,
		showDetail: true,
	}
}

// insightsLoadedMsg carries a finished run; stale generations are ignored
type insightsLoadedMsg struct {
	generation int
	report     *service.Report
}

// Init implements tea.Model
func (m InsightsModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(m.generation), m.spinner.Tick)
}

// Update implements tea.Model
func (m InsightsModel) Update(msg tea.Msg) (InsightsModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Refresh):
			return m, m.load()
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.insights())-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			m.showDetail = !m.showDetail
		case key.Matches(msg, m.keys.Back):
			m.showDetail = false
		}
		return m, nil

	case insightsLoadedMsg:
		if msg.generation != m.generation {
			return m, nil
		}
		m.loading = false
		m.report = msg.report
		if m.cursor >= len(m.insights()) {
			m.cursor = max(0, len(m.insights())-1)
		}
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model
func (m InsightsModel) View() string {
	var b strings.Builder

	b.WriteString(m.styles.ViewTitle.Render("Insights for " + m.scope.String()))
	b.WriteString("\n")

	if m.loading && m.report == nil {
		b.WriteString(m.spinner.View() + " Analyzing your time data...")
		return b.String()
	}
	if m.report == nil {
		b.WriteString("No data")
		return b.String()
	}

	b.WriteString(m.renderHeader())
	b.WriteString("\n\n")

	items := m.insights()
	if len(items) == 0 {
		b.WriteString(m.styles.Muted.Render("No insights were generated for this period."))
		return b.String()
	}

	b.WriteString(m.renderList(items))
	if m.showDetail && m.cursor < len(items) {
		b.WriteString(m.renderDetail(items[m.cursor]))
	}
	return b.String()
}

// SetSize sets the view dimensions
func (m *InsightsModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// Selected returns the highlighted insight
func (m InsightsModel) Selected() (insight.Insight, bool) {
	items := m.insights()
	if m.cursor < 0 || m.cursor >= len(items) {
		return insight.Insight{}, false
	}
	return items[m.cursor], true
}

// Loading reports whether a run is in flight
func (m InsightsModel) Loading() bool {
	return m.loading
}

func (m InsightsModel) insights() []insight.Insight {
	if m.report == nil {
		return nil
	}
	return m.report.Insights
}

// load starts a new background run, superseding any in flight
func (m *InsightsModel) load() tea.Cmd {
	m.generation++
	m.loading = true
	return tea.Batch(m.fetch(m.generation), m.spinner.Tick)
}

func (m InsightsModel) fetch(generation int) tea.Cmd {
	source, scope := m.source, m.scope
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return insightsLoadedMsg{
			generation: generation,
			report:     source.Generate(ctx, scope.UserID, scope.ScopeID),
		}
	}
}

func (m InsightsModel) renderHeader() string {
	r := m.report
	parts := []string{
		fmt.Sprintf("%d %s", len(r.Insights), pluralize("insight", len(r.Insights))),
		"generated " + r.GeneratedAt.Format("Jan 02 15:04"),
	}
	header := m.styles.Muted.Render(strings.Join(parts, " · "))
	if r.State == service.StateDegraded {
		header += "  " + m.styles.Warning.Render("degraded: "+r.Reason)
	}
	if m.loading {
		header += "  " + m.spinner.View() + m.styles.Muted.Render(" refreshing")
	}
	return header
}

func (m InsightsModel) renderList(items []insight.Insight) string {
	titleWidth := m.width - 40
	if titleWidth < 20 {
		titleWidth = 20
	}

	// keep the cursor visible when the list is taller than the view
	visible := len(items)
	if m.height > 0 {
		visible = max(3, m.height/2)
	}
	start := 0
	if m.cursor >= visible {
		start = m.cursor - visible + 1
	}
	end := min(len(items), start+visible)

	var b strings.Builder
	for i := start; i < end; i++ {
		in := items[i]
		style := m.styles.ItemNormal
		if i == m.cursor {
			style = m.styles.ItemSelected
		}
		line := fmt.Sprintf("%s %s %s %s",
			m.styles.Priority(in.Priority).Render(strings.ToUpper(string(in.Priority))),
			m.styles.ItemType.Render(string(in.Type)),
			fmt.Sprintf("%-*s", titleWidth, truncate(in.Title, titleWidth)),
			m.styles.Confidence.Render(fmt.Sprintf("%.0f%%", in.Confidence*100)),
		)
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}
	return b.String()
}

func (m InsightsModel) renderDetail(in insight.Insight) string {
	width := m.width - 8
	if width < 30 {
		width = 30
	}

	var b strings.Builder
	b.WriteString(m.styles.DetailTitle.Render(in.Title))
	b.WriteString("\n")
	b.WriteString(m.styles.ItemCategory.Render(string(in.Category)))
	b.WriteString(m.styles.Muted.Render(fmt.Sprintf(" · %s · from %s", in.Type, in.Source)))
	b.WriteString("\n")
	if in.Description != "" {
		b.WriteString("\n" + wrap(in.Description, width) + "\n")
	}
	if in.Impact != "" {
		b.WriteString("\n" + m.styles.StatLabel.Render("Impact") + wrap(in.Impact, width-24) + "\n")
	}
	if in.PredictedValue != nil {
		b.WriteString(m.styles.StatLabel.Render("Predicted value") + m.styles.StatValue.Render(formatMoney(*in.PredictedValue)) + "\n")
	}
	if in.PredictedDate != nil {
		b.WriteString(m.styles.StatLabel.Render("Predicted date") + m.styles.StatValue.Render(in.PredictedDate.Format("2006-01-02")) + "\n")
	}
	if c := in.Comparison; c != nil {
		b.WriteString(m.styles.StatLabel.Render("Comparison") +
			m.styles.StatValue.Render(fmt.Sprintf("%.2f → %.2f", c.Before, c.After)) + "\n")
	}
	if len(in.Actions) > 0 {
		b.WriteString("\n")
		for _, a := range in.Actions {
			b.WriteString(m.styles.Action.Render("→ ") + wrap(a, width-2) + "\n")
		}
	}
	return m.styles.Detail.Render(strings.TrimRight(b.String(), "\n"))
}
