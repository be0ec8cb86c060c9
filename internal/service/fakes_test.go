package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/xolan/tally/internal/entry"
	"github.com/xolan/tally/internal/llm"
)

var testNow = time.Date(2024, time.March, 20, 18, 0, 0, 0, time.UTC)

type fakeStore struct {
	entries  []entry.Entry
	clients  []entry.Client
	projects []entry.Project

	entriesErr  error
	clientsErr  error
	projectsErr error
	panicOn     string

	mu    sync.Mutex
	since []time.Time
}

func (f *fakeStore) FetchTimeEntries(_ context.Context, _, _ string, since time.Time) ([]entry.Entry, error) {
	f.mu.Lock()
	f.since = append(f.since, since)
	f.mu.Unlock()
	if f.panicOn == "entries" {
		panic("store exploded")
	}
	if f.entriesErr != nil {
		return nil, f.entriesErr
	}
	var out []entry.Entry
	for _, e := range f.entries {
		if !e.StartTime.Before(since) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeStore) FetchActiveClients(context.Context, string) ([]entry.Client, error) {
	return f.clients, f.clientsErr
}

func (f *fakeStore) FetchActiveOrPlanningProjects(context.Context, string) ([]entry.Project, error) {
	return f.projects, f.projectsErr
}

func (f *fakeStore) Close() error { return nil }

// fakeGenerator answers per result key found in the system instruction
type fakeGenerator struct {
	respond func(key string) (map[string]any, error)
	calls   atomic.Int32
}

func (f *fakeGenerator) Complete(_ context.Context, messages []llm.Message, _ llm.Options) (map[string]any, error) {
	f.calls.Add(1)
	return f.respond(keyOf(messages))
}

var resultKeys = []string{"predictions", "anomalies", "recommendations", "patterns", "opportunities"}

func keyOf(messages []llm.Message) string {
	if len(messages) == 0 {
		return ""
	}
	for _, k := range resultKeys {
		if strings.Contains(messages[0].Content, fmt.Sprintf("%q array", k)) {
			return k
		}
	}
	return "weekly"
}

func items(key string, n int, priority string) map[string]any {
	list := make([]any, n)
	for i := range list {
		list[i] = map[string]any{
			"title":      fmt.Sprintf("%s %d", key, i),
			"priority":   priority,
			"confidence": 0.5 + float64(i)/100,
		}
	}
	return map[string]any{key: list}
}

func sampleEntries() []entry.Entry {
	var out []entry.Entry
	for i := 0; i < 30; i++ {
		out = append(out, entry.Entry{
			ID:              fmt.Sprintf("e%02d", i),
			UserID:          "u1",
			ScopeID:         "s1",
			StartTime:       testNow.AddDate(0, 0, -i).Add(-4 * time.Hour),
			DurationMinutes: 90,
			Billable:        i%4 != 0,
			HourlyRate:      110,
			Channel:         "dev",
			ClientID:        "c1",
		})
	}
	return out
}
