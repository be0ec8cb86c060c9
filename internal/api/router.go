// Package api exposes the insights engine over HTTP.
package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/xolan/tally/internal/cache"
	"github.com/xolan/tally/internal/service"
)

// requestTimeout bounds a single request; five analysis tasks run in parallel
// under their own shorter timeout
const requestTimeout = 2 * time.Minute

// Engine is the part of the insights service the API needs
type Engine interface {
	Generate(ctx context.Context, userID, scopeID string) *service.Report
	GenerateWeeklySummary(ctx context.Context, userID, scopeID string) string
}

// Router holds the chi mux and its dependencies
type Router struct {
	mux      *chi.Mux
	engine   Engine
	cache    cache.Store
	cacheTTL time.Duration
	logger   *slog.Logger
	version  string
	started  time.Time
}

// Option configures a Router
type Option func(*Router)

// WithCache enables response caching; a nil store disables it
func WithCache(store cache.Store, ttl time.Duration) Option {
	return func(r *Router) {
		r.cache = store
		r.cacheTTL = ttl
	}
}

// WithVersion sets the version reported by /healthz
func WithVersion(v string) Option {
	return func(r *Router) { r.version = v }
}

// NewRouter creates the API router with middleware and routes
func NewRouter(engine Engine, logger *slog.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	r := &Router{
		mux:     chi.NewRouter(),
		engine:  engine,
		logger:  logger,
		version: "dev",
		started: time.Now(),
	}
	for _, opt := range opts {
		opt(r)
	}

	r.setupMiddleware()
	r.setupRoutes()
	return r
}

// Handler returns the HTTP handler
func (r *Router) Handler() http.Handler {
	return r.mux
}

func (r *Router) setupMiddleware() {
	r.mux.Use(chimiddleware.RequestID)
	r.mux.Use(chimiddleware.RealIP)
	r.mux.Use(requestLogger(r.logger))
	r.mux.Use(chimiddleware.Recoverer)
	r.mux.Use(chimiddleware.Timeout(requestTimeout))
}

func (r *Router) setupRoutes() {
	r.mux.Get("/healthz", r.handleHealth)

	r.mux.Route("/v1/users/{userID}/scopes/{scopeID}", func(rtr chi.Router) {
		rtr.Get("/insights", r.handleInsights)
		rtr.Get("/weekly-summary", r.handleWeeklySummary)
	})

	r.mux.NotFound(func(w http.ResponseWriter, req *http.Request) {
		writeError(w, req, http.StatusNotFound, "not found")
	})
}
