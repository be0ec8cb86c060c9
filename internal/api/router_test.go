package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xolan/tally/internal/analysis"
	"github.com/xolan/tally/internal/cache"
	"github.com/xolan/tally/internal/insight"
	"github.com/xolan/tally/internal/service"
)

type fakeEngine struct {
	state        service.State
	summary      string
	panics       bool
	insightCalls atomic.Int32
	summaryCalls atomic.Int32
}

func (f *fakeEngine) Generate(_ context.Context, userID, scopeID string) *service.Report {
	f.insightCalls.Add(1)
	if f.panics {
		panic("engine bug")
	}
	state := f.state
	if state == "" {
		state = service.StateDone
	}
	return &service.Report{
		UserID:      userID,
		ScopeID:     scopeID,
		State:       state,
		GeneratedAt: time.Date(2024, 3, 20, 18, 0, 0, 0, time.UTC),
		Insights: []insight.Insight{{
			ID:         "i1",
			Type:       insight.TypeRecommendation,
			Category:   insight.CategoryRevenue,
			Priority:   insight.PriorityHigh,
			Title:      "Raise your rate",
			Confidence: 0.8,
		}},
	}
}

func (f *fakeEngine) GenerateWeeklySummary(context.Context, string, string) string {
	f.summaryCalls.Add(1)
	if f.summary != "" {
		return f.summary
	}
	return "# Weekly Summary\n\n## Executive Summary\n\nGood week.\n"
}

type brokenCache struct{}

func (brokenCache) Get(context.Context, string) ([]byte, error) {
	return nil, errors.New("connection reset")
}
func (brokenCache) Set(context.Context, string, []byte, time.Duration) error {
	return errors.New("connection reset")
}
func (brokenCache) Delete(context.Context, ...string) error { return nil }
func (brokenCache) Close() error                            { return nil }

func do(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, sonic.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestHealthz(t *testing.T) {
	h := NewRouter(&fakeEngine{}, nil, WithVersion("1.2.3")).Handler()

	rec := do(t, h, "/healthz")

	require.Equal(t, http.StatusOK, rec.Code)
	body := decode[HealthStatus](t, rec)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "1.2.3", body.Version)
	assert.Equal(t, "disabled", body.Cache)
	assert.NotEmpty(t, rec.Header().Get("Content-Type"))
}

func TestInsights(t *testing.T) {
	engine := &fakeEngine{}
	h := NewRouter(engine, nil).Handler()

	rec := do(t, h, "/v1/users/u1/scopes/s1/insights")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	body := decode[InsightsResponse](t, rec)
	assert.Equal(t, "u1", body.UserID)
	assert.Equal(t, "s1", body.ScopeID)
	assert.Equal(t, service.StateDone, body.State)
	assert.False(t, body.Cached)
	require.Len(t, body.Insights, 1)
	assert.Equal(t, "Raise your rate", body.Insights[0].Title)
}

func TestInsights_Cached(t *testing.T) {
	engine := &fakeEngine{}
	store := cache.NewMemory()
	h := NewRouter(engine, nil, WithCache(store, time.Minute)).Handler()

	first := do(t, h, "/v1/users/u1/scopes/s1/insights")
	second := do(t, h, "/v1/users/u1/scopes/s1/insights")

	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, int32(1), engine.insightCalls.Load())
	assert.False(t, decode[InsightsResponse](t, first).Cached)
	cached := decode[InsightsResponse](t, second)
	assert.True(t, cached.Cached)
	assert.Equal(t, "Raise your rate", cached.Insights[0].Title)

	// other scopes are cached separately
	do(t, h, "/v1/users/u1/scopes/s2/insights")
	assert.Equal(t, int32(2), engine.insightCalls.Load())
}

func TestInsights_DegradedNotCached(t *testing.T) {
	engine := &fakeEngine{state: service.StateDegraded}
	h := NewRouter(engine, nil, WithCache(cache.NewMemory(), time.Minute)).Handler()

	do(t, h, "/v1/users/u1/scopes/s1/insights")
	do(t, h, "/v1/users/u1/scopes/s1/insights")

	assert.Equal(t, int32(2), engine.insightCalls.Load())
}

func TestInsights_BrokenCacheIsBypassed(t *testing.T) {
	engine := &fakeEngine{}
	h := NewRouter(engine, nil, WithCache(brokenCache{}, time.Minute)).Handler()

	rec := do(t, h, "/v1/users/u1/scopes/s1/insights")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int32(1), engine.insightCalls.Load())
}

func TestInsights_PanicRecovered(t *testing.T) {
	h := NewRouter(&fakeEngine{panics: true}, nil).Handler()

	rec := do(t, h, "/v1/users/u1/scopes/s1/insights")

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestWeeklySummary_Markdown(t *testing.T) {
	h := NewRouter(&fakeEngine{}, nil).Handler()

	rec := do(t, h, "/v1/users/u1/scopes/s1/weekly-summary")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/markdown")
	assert.Contains(t, rec.Body.String(), "## Executive Summary")
}

func TestWeeklySummary_HTML(t *testing.T) {
	h := NewRouter(&fakeEngine{}, nil).Handler()

	rec := do(t, h, "/v1/users/u1/scopes/s1/weekly-summary?format=html")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "<h1>Weekly Summary</h1>")
	assert.Contains(t, rec.Body.String(), "<h2>Executive Summary</h2>")
	assert.Contains(t, rec.Body.String(), "<p>Good week.</p>")
}

func TestWeeklySummary_BadFormat(t *testing.T) {
	h := NewRouter(&fakeEngine{}, nil).Handler()

	rec := do(t, h, "/v1/users/u1/scopes/s1/weekly-summary?format=pdf")

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[ErrorResponse](t, rec).Error, "format")
}

func TestWeeklySummary_Cache(t *testing.T) {
	tests := []struct {
		name      string
		summary   string
		wantCalls int32
	}{
		{"report is cached", "", 1},
		{"unavailable is not cached", analysis.SummaryUnavailable, 2},
		{"no activity is not cached", analysis.SummaryNoActivity, 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := &fakeEngine{summary: tt.summary}
			h := NewRouter(engine, nil, WithCache(cache.NewMemory(), time.Minute)).Handler()

			do(t, h, "/v1/users/u1/scopes/s1/weekly-summary")
			rec := do(t, h, "/v1/users/u1/scopes/s1/weekly-summary?format=html")

			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.wantCalls, engine.summaryCalls.Load())
		})
	}
}

func TestNotFound(t *testing.T) {
	h := NewRouter(&fakeEngine{}, nil).Handler()

	rec := do(t, h, "/v1/nowhere")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not found", decode[ErrorResponse](t, rec).Error)
}

func TestServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, "127.0.0.1:0", NewRouter(&fakeEngine{}, nil).Handler(), discardLogger())
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not return after cancel")
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
