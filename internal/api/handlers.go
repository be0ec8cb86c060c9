package api

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/xolan/tally/internal/analysis"
	"github.com/xolan/tally/internal/cache"
	"github.com/xolan/tally/internal/service"
)

// HealthStatus is the /healthz response
type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Cache   string `json:"cache"`
}

// InsightsResponse is the insights endpoint body
type InsightsResponse struct {
	*service.Report
	Cached bool `json:"cached"`
}

func (r *Router) handleHealth(w http.ResponseWriter, req *http.Request) {
	status := HealthStatus{
		Status:  "ok",
		Version: r.version,
		Uptime:  time.Since(r.started).Round(time.Second).String(),
		Cache:   "disabled",
	}
	if r.cache != nil {
		status.Cache = "enabled"
	}
	writeJSON(w, http.StatusOK, status)
}

func (r *Router) handleInsights(w http.ResponseWriter, req *http.Request) {
	userID, scopeID, ok := scopeParams(w, req)
	if !ok {
		return
	}
	ctx := req.Context()
	key := cache.Key(cache.KindInsights, userID, scopeID)
	logger := r.logger.With("user_id", userID, "scope_id", scopeID)

	if r.cache != nil {
		report, hit, err := cache.GetJSON[service.Report](ctx, r.cache, key)
		if err != nil {
			logger.Warn("insights cache read failed", "error", err)
		} else if hit {
			writeJSON(w, http.StatusOK, InsightsResponse{Report: &report, Cached: true})
			return
		}
	}

	report := r.engine.Generate(ctx, userID, scopeID)

	// only completed runs are cached
	if r.cache != nil && report.State == service.StateDone {
		if err := cache.SetJSON(ctx, r.cache, key, report, r.cacheTTL); err != nil {
			logger.Warn("insights cache write failed", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, InsightsResponse{Report: report})
}

func (r *Router) handleWeeklySummary(w http.ResponseWriter, req *http.Request) {
	userID, scopeID, ok := scopeParams(w, req)
	if !ok {
		return
	}
	format := strings.ToLower(req.URL.Query().Get("format"))
	if format != "" && format != "markdown" && format != "html" {
		writeError(w, req, http.StatusBadRequest, "format must be markdown or html")
		return
	}

	ctx := req.Context()
	key := cache.Key(cache.KindSummary, userID, scopeID)
	logger := r.logger.With("user_id", userID, "scope_id", scopeID)

	var summary string
	if r.cache != nil {
		data, err := r.cache.Get(ctx, key)
		switch {
		case err == nil:
			summary = string(data)
		case !errors.Is(err, cache.ErrMiss):
			logger.Warn("summary cache read failed", "error", err)
		}
	}
	if summary == "" {
		summary = r.engine.GenerateWeeklySummary(ctx, userID, scopeID)
		if r.cache != nil && cacheableSummary(summary) {
			if err := r.cache.Set(ctx, key, []byte(summary), r.cacheTTL); err != nil {
				logger.Warn("summary cache write failed", "error", err)
			}
		}
	}

	if format == "html" {
		html, err := analysis.SummaryHTML(summary)
		if err != nil {
			logger.Error("failed to render summary html", "error", err)
			writeError(w, req, http.StatusInternalServerError, "failed to render summary")
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(html))
		return
	}

	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(summary))
}

// cacheableSummary reports whether summary is a generated review rather than
// a fixed placeholder
func cacheableSummary(summary string) bool {
	return summary != analysis.SummaryUnavailable && summary != analysis.SummaryNoActivity
}

func scopeParams(w http.ResponseWriter, req *http.Request) (string, string, bool) {
	userID := strings.TrimSpace(chi.URLParam(req, "userID"))
	scopeID := strings.TrimSpace(chi.URLParam(req, "scopeID"))
	if userID == "" || scopeID == "" {
		writeError(w, req, http.StatusBadRequest, "user and scope are required")
		return "", "", false
	}
	return userID, scopeID, true
}
