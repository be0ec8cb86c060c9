package analysis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolan/tally/internal/entry"
	"github.com/xolan/tally/internal/llm"
	"github.com/xolan/tally/internal/stats"
)

// fakeGenerator answers by result key found in the system instruction
type fakeGenerator struct {
	mu        sync.Mutex
	calls     []string
	responses map[string]map[string]any
	errs      map[string]error
	panics    map[string]bool
	block     map[string]bool
}

func (f *fakeGenerator) Complete(ctx context.Context, messages []llm.Message, _ llm.Options) (map[string]any, error) {
	key := resultKey(messages)
	f.mu.Lock()
	f.calls = append(f.calls, key)
	f.mu.Unlock()

	if f.panics[key] {
		panic("boom")
	}
	if f.block[key] {
		select {}
	}
	if err := f.errs[key]; err != nil {
		return nil, err
	}
	return f.responses[key], nil
}

func resultKey(messages []llm.Message) string {
	if len(messages) == 0 {
		return ""
	}
	for _, task := range Tasks() {
		if strings.Contains(messages[0].Content, fmt.Sprintf("%q array", task.ResultKey)) {
			return task.ResultKey
		}
	}
	return "weekly"
}

func oneItem(key, title string) map[string]any {
	return map[string]any{key: []any{map[string]any{"title": title, "priority": "high"}}}
}

func testBundle() stats.MetricBundle {
	now := time.Date(2024, time.March, 20, 18, 0, 0, 0, time.UTC)
	var entries []entry.Entry
	for i := 0; i < 40; i++ {
		entries = append(entries, entry.Entry{
			ID:              fmt.Sprintf("e%02d", i),
			StartTime:       now.AddDate(0, 0, -i).Add(-time.Duration(i%5) * time.Hour),
			DurationMinutes: 60 + i,
			Billable:        i%3 != 0,
			HourlyRate:      100,
			Channel:         []string{"dev", "email"}[i%2],
			ClientID:        "c1",
		})
	}
	clients := []entry.Client{{ID: "c1", Name: "Acme", RetainerHours: entry.Float(200)}}
	return stats.Aggregate(entries, clients, nil, stats.Options{Now: now})
}

func TestBuildContexts(t *testing.T) {
	b := testBundle()
	before := b.Days[0]

	first := BuildContexts(b)
	second := BuildContexts(b)

	assert.Equal(t, first, second)
	assert.Equal(t, before, b.Days[0])
	assert.LessOrEqual(t, len(first.Anomalies.RecentDays), recentDays)
	assert.Equal(t, b.Days[len(b.Days)-1], first.Anomalies.RecentDays[len(first.Anomalies.RecentDays)-1])
	assert.NotEmpty(t, first.Recommendations.Challenges)
	assert.NotEmpty(t, first.Opportunities.Underutilized)
	assert.NotEmpty(t, first.Predictions.Weeks)
	assert.NotEmpty(t, first.Patterns.Hours)
	for _, s := range []string{
		first.Predictions.Summary, first.Anomalies.Summary, first.Recommendations.Summary,
		first.Patterns.Summary, first.Opportunities.Summary,
	} {
		assert.Contains(t, s, "active days")
	}

	first.Recommendations.Challenges[0] = "changed"
	assert.NotEqual(t, "changed", b.Challenges[0])
}

func TestRunner_RunAll(t *testing.T) {
	gen := &fakeGenerator{responses: map[string]map[string]any{}}
	for _, task := range Tasks() {
		gen.responses[task.ResultKey] = oneItem(task.ResultKey, task.Name+" insight")
	}

	r := NewRunner(gen, nil)
	outcomes := r.RunAll(context.Background(), Tasks(), BuildContexts(testBundle()))

	require.Len(t, outcomes, 5)
	for i, task := range Tasks() {
		assert.Equal(t, task.Name, outcomes[i].Task)
		assert.NoError(t, outcomes[i].Err)
		require.Len(t, outcomes[i].Insights, 1)
		assert.Equal(t, task.Name+" insight", outcomes[i].Insights[0].Title)
	}
	assert.Len(t, gen.calls, 5)
}

func TestRunner_FailuresAreIsolated(t *testing.T) {
	gen := &fakeGenerator{
		responses: map[string]map[string]any{
			"predictions":     oneItem("predictions", "p"),
			"recommendations": oneItem("recommendations", "r"),
			"opportunities":   {"opportunities": "not a list"},
		},
		errs:   map[string]error{"anomalies": errors.New("upstream down")},
		panics: map[string]bool{"patterns": true},
	}

	r := NewRunner(gen, nil)
	outcomes := r.RunAll(context.Background(), Tasks(), BuildContexts(testBundle()))

	byTask := map[string]Outcome{}
	for _, o := range outcomes {
		byTask[o.Task] = o
	}
	assert.Len(t, byTask["predictions"].Insights, 1)
	assert.Len(t, byTask["recommendations"].Insights, 1)
	assert.Error(t, byTask["anomalies"].Err)
	assert.Empty(t, byTask["anomalies"].Insights)
	assert.Error(t, byTask["patterns"].Err)
	assert.Empty(t, byTask["patterns"].Insights)
	assert.NoError(t, byTask["opportunities"].Err)
	assert.Empty(t, byTask["opportunities"].Insights)
}

func TestRunner_Timeout(t *testing.T) {
	gen := &fakeGenerator{block: map[string]bool{"predictions": true}}
	r := NewRunner(gen, nil, WithTimeout(20*time.Millisecond))

	start := time.Now()
	out := r.Run(context.Background(), Tasks()[0], BuildContexts(testBundle()))

	assert.ErrorIs(t, out.Err, context.DeadlineExceeded)
	assert.Empty(t, out.Insights)
	assert.Less(t, time.Since(start), time.Second)
}

func TestRunner_Disabled(t *testing.T) {
	r := NewRunner(llm.Disabled{}, nil)
	outcomes := r.RunAll(context.Background(), Tasks(), BuildContexts(testBundle()))

	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, llm.ErrDisabled)
		assert.Empty(t, o.Insights)
	}
}

func TestMessages(t *testing.T) {
	msgs, err := Messages("instruction", PatternsContext{Summary: "hello"})
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	assert.Equal(t, llm.RoleSystem, msgs[0].Role)
	assert.Equal(t, "instruction", msgs[0].Content)
	assert.Contains(t, msgs[1].Content, `"summary": "hello"`)
}

func TestWeeklySummary(t *testing.T) {
	wc := BuildWeeklyContext(testBundle())
	s := ParseWeeklySummary(map[string]any{
		"executive_summary":    "A steady week.",
		"achievements":         []any{"Shipped the redesign", 42},
		"attention_items":      "Invoice Acme",
		"next_week_priorities": []any{},
	})

	assert.False(t, s.IsEmpty())
	assert.Equal(t, []string{"Shipped the redesign"}, s.Achievements)
	assert.Equal(t, []string{"Invoice Acme"}, s.AttentionItems)

	md := s.Markdown(wc)
	for _, heading := range []string{
		"# Weekly Summary", "## Executive Summary", "## Key Metrics", "## Achievements",
		"## Needs Attention", "## Next Week Priorities", "## Strategic Insight",
	} {
		assert.Contains(t, md, heading)
	}
	assert.Contains(t, md, "- Invoice Acme")
	assert.Contains(t, md, "No strategic insight available.")

	assert.True(t, ParseWeeklySummary(map[string]any{}).IsEmpty())
}

func TestSummaryHTML(t *testing.T) {
	html, err := SummaryHTML("# Weekly Summary\n\n## Achievements\n\n- Shipped the beta\n")
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>Weekly Summary</h1>")
	assert.Contains(t, html, "<h2>Achievements</h2>")
	assert.Contains(t, html, "<li>Shipped the beta</li>")
}
