package views

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/xolan/tally/internal/insight"
	"github.com/xolan/tally/internal/service"
	"github.com/xolan/tally/internal/stats"
	"github.com/xolan/tally/internal/tui/ui"
)

type fakeInsights struct {
	report *service.Report
	calls  int
}

func (f *fakeInsights) Generate(_ context.Context, userID, scopeID string) *service.Report {
	f.calls++
	r := *f.report
	r.UserID, r.ScopeID = userID, scopeID
	return &r
}

type fakeSummary struct{ calls int }

func (f *fakeSummary) GenerateWeeklySummary(context.Context, string, string) string {
	f.calls++
	return "# Weekly Summary\n\n## Executive Summary\n\nSteady week.\n"
}

type fakeMetrics struct {
	err  error
	days []int
}

func (f *fakeMetrics) ForWindow(_ context.Context, _, _ string, days int) (*service.StatsResult, error) {
	f.days = append(f.days, days)
	if f.err != nil {
		return nil, f.err
	}
	return &service.StatsResult{
		Period: "test",
		Bundle: stats.MetricBundle{
			EntryCount:      4,
			TotalMinutes:    600,
			BillableMinutes: 480,
			BillableRate:    80,
			TotalRevenue:    1200,
			ActiveDays:      2,
			Clients:         []stats.ClientMetrics{{Name: "Acme", Minutes: 600, Revenue: 1200}},
			Challenges:      []string{"Acme accounts for 100.0% of revenue"},
			Opportunities:   []string{"Most time is logged around 09:00"},
		},
	}, nil
}

var testScope = Scope{UserID: "u1", ScopeID: "s1"}

func sampleReport() *service.Report {
	predicted := 4200.0
	return &service.Report{
		State:       service.StateDone,
		GeneratedAt: time.Date(2024, 3, 20, 18, 0, 0, 0, time.UTC),
		Insights: []insight.Insight{
			{
				ID: "a", Type: insight.TypeWarning, Category: insight.CategoryRisk,
				Priority: insight.PriorityCritical, Title: "Acme is most of your revenue",
				Description: "One client carries the business.", Confidence: 0.9,
				Actions: []string{"Pitch two new clients"}, Source: "anomalies",
			},
			{
				ID: "b", Type: insight.TypePrediction, Category: insight.CategoryRevenue,
				Priority: insight.PriorityMedium, Title: "Revenue will reach 4200",
				Confidence: 0.7, PredictedValue: &predicted, Source: "predictions",
			},
		},
	}
}

// collect runs cmd and any batched commands, returning every message produced
func collect(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var out []tea.Msg
		for _, c := range batch {
			out = append(out, collect(c)...)
		}
		return out
	}
	return []tea.Msg{msg}
}

func find[T tea.Msg](msgs []tea.Msg) (T, bool) {
	for _, m := range msgs {
		if v, ok := m.(T); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}

func press(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func loadedInsights(t *testing.T, src *fakeInsights) InsightsModel {
	t.Helper()
	m := NewInsightsModel(src, testScope, ui.DefaultStyles(), ui.DefaultKeyMap())
	m.SetSize(100, 40)
	msg, ok := find[insightsLoadedMsg](collect(m.Init()))
	if !ok {
		t.Fatal("Init did not produce insightsLoadedMsg")
	}
	m, _ = m.Update(msg)
	return m
}

func TestInsightsModel_Loading(t *testing.T) {
	m := NewInsightsModel(&fakeInsights{report: sampleReport()}, testScope, ui.DefaultStyles(), ui.DefaultKeyMap())

	if !m.Loading() {
		t.Error("expected model to start loading")
	}
	if !strings.Contains(m.View(), "Analyzing") {
		t.Errorf("expected loading text, got:\n%s", m.View())
	}
}

func TestInsightsModel_Loaded(t *testing.T) {
	src := &fakeInsights{report: sampleReport()}
	m := loadedInsights(t, src)

	if m.Loading() {
		t.Error("expected loading to finish")
	}
	view := m.View()
	for _, want := range []string{"Insights for u1/s1", "2 insights", "CRITICAL", "Acme is most of your revenue", "Revenue will reach 4200", "Pitch two new clients"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestInsightsModel_Navigation(t *testing.T) {
	m := loadedInsights(t, &fakeInsights{report: sampleReport()})

	sel, _ := m.Selected()
	if sel.ID != "a" {
		t.Fatalf("initial selection = %q, want a", sel.ID)
	}

	m, _ = m.Update(press('j'))
	sel, _ = m.Selected()
	if sel.ID != "b" {
		t.Errorf("after j selection = %q, want b", sel.ID)
	}
	if !strings.Contains(m.View(), "4200.00") {
		t.Error("expected detail pane to show predicted value")
	}

	// cursor stops at the last item
	m, _ = m.Update(press('j'))
	sel, _ = m.Selected()
	if sel.ID != "b" {
		t.Errorf("cursor moved past end: %q", sel.ID)
	}

	m, _ = m.Update(press('k'))
	sel, _ = m.Selected()
	if sel.ID != "a" {
		t.Errorf("after k selection = %q, want a", sel.ID)
	}
}

func TestInsightsModel_ToggleDetail(t *testing.T) {
	m := loadedInsights(t, &fakeInsights{report: sampleReport()})

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if strings.Contains(m.View(), "Pitch two new clients") {
		t.Error("expected details hidden after esc")
	}

	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "Pitch two new clients") {
		t.Error("expected details shown after enter")
	}
}

func TestInsightsModel_Refresh(t *testing.T) {
	src := &fakeInsights{report: sampleReport()}
	m := loadedInsights(t, src)

	m, cmd := m.Update(press('r'))
	if !m.Loading() {
		t.Error("expected refresh to start loading")
	}
	msg, ok := find[insightsLoadedMsg](collect(cmd))
	if !ok {
		t.Fatal("refresh did not produce insightsLoadedMsg")
	}
	m, _ = m.Update(msg)

	if src.calls != 2 {
		t.Errorf("Generate called %d times, want 2", src.calls)
	}
	if m.Loading() {
		t.Error("expected loading to finish after refresh")
	}
}

func TestInsightsModel_IgnoresStaleResults(t *testing.T) {
	src := &fakeInsights{report: sampleReport()}
	m := NewInsightsModel(src, testScope, ui.DefaultStyles(), ui.DefaultKeyMap())
	stale, _ := find[insightsLoadedMsg](collect(m.Init()))

	m, _ = m.Update(press('r'))
	m, _ = m.Update(stale)

	if !m.Loading() {
		t.Error("stale result should not end the newer load")
	}
}

func TestInsightsModel_Degraded(t *testing.T) {
	report := &service.Report{
		State:    service.StateDegraded,
		Reason:   "no time entries",
		Insights: insight.OnboardingInsights(),
	}
	m := loadedInsights(t, &fakeInsights{report: report})

	view := m.View()
	if !strings.Contains(view, "degraded: no time entries") {
		t.Errorf("expected degraded notice:\n%s", view)
	}
}

func TestInsightsModel_Empty(t *testing.T) {
	m := loadedInsights(t, &fakeInsights{report: &service.Report{State: service.StateDone}})

	if !strings.Contains(m.View(), "No insights were generated") {
		t.Errorf("expected empty text:\n%s", m.View())
	}
	if _, ok := m.Selected(); ok {
		t.Error("expected no selection")
	}
}

func TestSummaryModel(t *testing.T) {
	src := &fakeSummary{}
	m := NewSummaryModel(src, testScope, ui.DefaultStyles(), ui.DefaultKeyMap())
	m.SetSize(80, 20)

	if !strings.Contains(m.View(), "No data") {
		t.Errorf("expected no data before load:\n%s", m.View())
	}

	msg, ok := find[summaryLoadedMsg](collect(m.Init()))
	if !ok {
		t.Fatal("Init did not produce summaryLoadedMsg")
	}
	m, _ = m.Update(msg)

	if !strings.Contains(m.View(), "Steady week.") {
		t.Errorf("expected summary text:\n%s", m.View())
	}
	if m.Init() != nil {
		t.Error("expected Init to skip loading once loaded")
	}

	_, cmd := m.Update(press('r'))
	collect(cmd)
	if src.calls != 2 {
		t.Errorf("GenerateWeeklySummary called %d times, want 2", src.calls)
	}
}

func TestMetricsModel(t *testing.T) {
	src := &fakeMetrics{}
	m := NewMetricsModel(src, testScope, ui.DefaultStyles(), ui.DefaultKeyMap())

	msg, ok := find[metricsLoadedMsg](collect(m.Init()))
	if !ok {
		t.Fatal("Init did not produce metricsLoadedMsg")
	}
	m, _ = m.Update(msg)

	view := m.View()
	for _, want := range []string{"last 30 days", "10.0h", "80.0%", "1200.00", "Acme", "Challenges", "Opportunities"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q:\n%s", want, view)
		}
	}
}

func TestMetricsModel_WindowKeys(t *testing.T) {
	tests := []struct {
		key  rune
		want int
	}{
		{'w', WeekDays},
		{'m', MonthDays},
		{'a', QuarterDays},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			src := &fakeMetrics{}
			m := NewMetricsModel(src, testScope, ui.DefaultStyles(), ui.DefaultKeyMap())

			m, cmd := m.Update(press(tt.key))
			collect(cmd)

			if m.Days() != tt.want {
				t.Errorf("Days() = %d, want %d", m.Days(), tt.want)
			}
			if len(src.days) != 1 || src.days[0] != tt.want {
				t.Errorf("ForWindow days = %v, want [%d]", src.days, tt.want)
			}
		})
	}
}

func TestMetricsModel_Error(t *testing.T) {
	m := NewMetricsModel(&fakeMetrics{err: errors.New("store offline")}, testScope, ui.DefaultStyles(), ui.DefaultKeyMap())

	msg, _ := find[metricsLoadedMsg](collect(m.Init()))
	m, _ = m.Update(msg)

	if !strings.Contains(m.View(), "store offline") {
		t.Errorf("expected error in view:\n%s", m.View())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"short", 10, "short"},
		{"exactly10!", 10, "exactly10!"},
		{"much longer text", 8, "much lo…"},
		{"héllo wörld", 6, "héllo…"},
		{"x", 0, ""},
		{"xyz", 1, "…"},
	}

	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}

func TestWrap(t *testing.T) {
	got := wrap("one two three four", 9)
	want := "one two\nthree\nfour"
	if got != want {
		t.Errorf("wrap() = %q, want %q", got, want)
	}
}

func TestFormatters(t *testing.T) {
	if got := formatHours(90); got != "1.5h" {
		t.Errorf("formatHours(90) = %q", got)
	}
	if got := formatPercent(12.345); got != "12.3%" {
		t.Errorf("formatPercent = %q", got)
	}
	if got := pluralize("day", 1); got != "day" {
		t.Errorf("pluralize(day, 1) = %q", got)
	}
	if got := pluralize("day", 2); got != "days" {
		t.Errorf("pluralize(day, 2) = %q", got)
	}
}
