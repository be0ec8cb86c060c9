package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/xolan/tally/internal/analysis"
	"github.com/xolan/tally/internal/config"
	"github.com/xolan/tally/internal/entry"
	"github.com/xolan/tally/internal/insight"
	"github.com/xolan/tally/internal/llm"
	"github.com/xolan/tally/internal/stats"
	"github.com/xolan/tally/internal/storage"
	"github.com/xolan/tally/internal/timeutil"
)

// State is a stage of one insights run
type State string

const (
	StateIdle        State = "idle"
	StateFetching    State = "fetching"
	StateAggregating State = "aggregating"
	StateAnalyzing   State = "analyzing"
	StateRanking     State = "ranking"
	StateDone        State = "done"
	StateDegraded    State = "degraded"
)

// summaryWindowDays is how much history the weekly summary fetches, so the
// last 7 days can be compared with the 7 before them
const summaryWindowDays = 14

// TaskOutcome reports how one analysis task went
type TaskOutcome struct {
	Task     string        `json:"task"`
	Insights int           `json:"insights"`
	Error    string        `json:"error,omitempty"`
	Duration time.Duration `json:"duration"`
}

// Report is the full result of an insights run
type Report struct {
	UserID      string            `json:"user_id"`
	ScopeID     string            `json:"scope_id"`
	State       State             `json:"state"`
	Reason      string            `json:"reason,omitempty"`
	GeneratedAt time.Time         `json:"generated_at"`
	Insights    []insight.Insight `json:"insights"`
	Tasks       []TaskOutcome     `json:"tasks,omitempty"`
}

// InsightsService runs the fetch, aggregate, analyze and rank pipeline
type InsightsService struct {
	store      storage.Store
	runner     *analysis.Runner
	runnerOpts []analysis.RunnerOption
	config     config.InsightsConfig
	location   *time.Location
	logger     *slog.Logger
	now        func() time.Time
}

// Option configures an InsightsService
type Option func(*InsightsService)

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(s *InsightsService) { s.now = now }
}

// WithRunnerOptions passes extra options to the analysis runner
func WithRunnerOptions(opts ...analysis.RunnerOption) Option {
	return func(s *InsightsService) { s.runnerOpts = append(s.runnerOpts, opts...) }
}

// NewInsightsService creates the engine over store and generator
func NewInsightsService(store storage.Store, generator llm.Generator, cfg config.Config, logger *slog.Logger, opts ...Option) *InsightsService {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if generator == nil {
		generator = llm.Disabled{}
	}
	s := &InsightsService{
		store:    store,
		config:   cfg.Insights,
		location: cfg.Location(),
		logger:   logger,
		now:      time.Now,
	}
	s.runnerOpts = []analysis.RunnerOption{
		analysis.WithTimeout(cfg.Insights.TaskTimeout),
		analysis.WithOptions(llm.Options{
			Model:       cfg.Generator.Model,
			Temperature: cfg.Generator.Temperature,
			MaxTokens:   cfg.Generator.MaxTokens,
		}),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.runner = analysis.NewRunner(generator, logger, s.runnerOpts...)
	return s
}

// GenerateInsights returns ranked insights for the user's scope. It never fails:
// missing data yields the onboarding set and errors yield the fallback set.
func (s *InsightsService) GenerateInsights(ctx context.Context, userID, scopeID string) []insight.Insight {
	return s.Generate(ctx, userID, scopeID).Insights
}

// Generate runs the pipeline and reports the final state and per-task outcomes
func (s *InsightsService) Generate(ctx context.Context, userID, scopeID string) (report *Report) {
	now := s.now().In(s.location)
	report = &Report{UserID: userID, ScopeID: scopeID, State: StateIdle, GeneratedAt: now}
	logger := s.logger.With("user_id", userID, "scope_id", scopeID)
	start := time.Now()

	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("insights pipeline panicked", "state", report.State, "panic", rec)
			report = degraded(report, insight.FallbackInsights(), fmt.Sprintf("panic: %v", rec))
		}
		logger.Info("insights generated",
			"state", report.State, "insights", len(report.Insights), "duration", time.Since(start))
	}()

	s.transition(logger, report, StateFetching)
	since, _ := timeutil.LastDays(now, s.config.WindowDays)
	data, err := s.fetchDataset(ctx, userID, scopeID, since)
	if err != nil {
		logger.Error("failed to fetch insights data", "error", err)
		return degraded(report, insight.FallbackInsights(), err.Error())
	}
	if len(data.entries) == 0 {
		logger.Info("no time entries, returning onboarding insights")
		return degraded(report, insight.OnboardingInsights(), "no time entries")
	}

	s.transition(logger, report, StateAggregating)
	bundle := stats.Aggregate(data.entries, data.clients, data.projects, stats.Options{
		Now:              now,
		Start:            since,
		TargetDailyHours: s.config.TargetDailyHours,
	})
	contexts := analysis.BuildContexts(bundle)

	s.transition(logger, report, StateAnalyzing)
	outcomes := s.runner.RunAll(ctx, analysis.Tasks(), contexts)

	s.transition(logger, report, StateRanking)
	var merged []insight.Insight
	for _, o := range outcomes {
		merged = append(merged, o.Insights...)
		outcome := TaskOutcome{Task: o.Task, Insights: len(o.Insights), Duration: o.Duration}
		if o.Err != nil {
			outcome.Error = o.Err.Error()
		}
		report.Tasks = append(report.Tasks, outcome)
	}
	report.Insights = insight.Rank(merged, insight.RankOptions{
		Max:    s.config.MaxInsights,
		Dedupe: s.config.Dedupe,
	})

	s.transition(logger, report, StateDone)
	return report
}

// GenerateWeeklySummary returns a markdown review of the last 7 days. It never
// fails: problems yield a static "unable to generate" report.
func (s *InsightsService) GenerateWeeklySummary(ctx context.Context, userID, scopeID string) (summary string) {
	logger := s.logger.With("user_id", userID, "scope_id", scopeID)
	defer func() {
		if rec := recover(); rec != nil {
			logger.Error("weekly summary panicked", "panic", rec)
			summary = analysis.SummaryUnavailable
		}
	}()

	now := s.now().In(s.location)
	since, _ := timeutil.LastDays(now, summaryWindowDays)
	data, err := s.fetchDataset(ctx, userID, scopeID, since)
	if err != nil {
		logger.Error("failed to fetch weekly summary data", "error", err)
		return analysis.SummaryUnavailable
	}

	weekStart, _ := timeutil.LastDays(now, 7)
	bundle := stats.Aggregate(data.entries, data.clients, data.projects, stats.Options{
		Now:              now,
		Start:            weekStart,
		TargetDailyHours: s.config.TargetDailyHours,
	})
	if bundle.IsEmpty() {
		logger.Info("no activity in the last 7 days")
		return analysis.SummaryNoActivity
	}

	wc := analysis.BuildWeeklyContext(bundle)
	messages, err := analysis.WeeklyMessages(wc)
	if err != nil {
		logger.Error("failed to render weekly summary prompt", "error", err)
		return analysis.SummaryUnavailable
	}
	raw, err := s.runner.Complete(ctx, messages)
	if err != nil {
		logger.Warn("weekly summary generation failed", "error", err)
		return analysis.SummaryUnavailable
	}

	parsed := analysis.ParseWeeklySummary(raw)
	if parsed.IsEmpty() {
		logger.Warn("weekly summary response had no usable fields")
		return analysis.SummaryUnavailable
	}
	return parsed.Markdown(wc)
}

type dataset struct {
	entries  []entry.Entry
	clients  []entry.Client
	projects []entry.Project
}

// fetchDataset reads entries, clients and projects concurrently.
// The first error cancels the other reads.
func (s *InsightsService) fetchDataset(ctx context.Context, userID, scopeID string, since time.Time) (dataset, error) {
	var data dataset
	g, ctx := errgroup.WithContext(ctx)
	g.Go(recovered(func() error {
		entries, err := s.store.FetchTimeEntries(ctx, userID, scopeID, since)
		if err != nil {
			return fmt.Errorf("failed to fetch time entries: %w", err)
		}
		data.entries = entries
		return nil
	}))
	g.Go(recovered(func() error {
		clients, err := s.store.FetchActiveClients(ctx, scopeID)
		if err != nil {
			return fmt.Errorf("failed to fetch clients: %w", err)
		}
		data.clients = clients
		return nil
	}))
	g.Go(recovered(func() error {
		projects, err := s.store.FetchActiveOrPlanningProjects(ctx, scopeID)
		if err != nil {
			return fmt.Errorf("failed to fetch projects: %w", err)
		}
		data.projects = projects
		return nil
	}))
	if err := g.Wait(); err != nil {
		return dataset{}, err
	}
	return data, nil
}

// recovered turns a panic in fn into an error so it cannot escape the errgroup goroutine
func recovered(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if rec := recover(); rec != nil {
				err = fmt.Errorf("store panicked: %v", rec)
			}
		}()
		return fn()
	}
}

func (s *InsightsService) transition(logger *slog.Logger, report *Report, state State) {
	report.State = state
	logger.Debug("insights state changed", "state", state)
}

func degraded(report *Report, insights []insight.Insight, reason string) *Report {
	report.State = StateDegraded
	report.Reason = reason
	report.Insights = insights
	report.Tasks = nil
	return report
}
