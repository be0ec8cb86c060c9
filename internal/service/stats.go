package service

import (
	"context"
	"fmt"
	"time"

	"github.com/xolan/tally/internal/config"
	"github.com/xolan/tally/internal/stats"
	"github.com/xolan/tally/internal/storage"
	"github.com/xolan/tally/internal/timeutil"
)

// StatsService computes the metric bundle without calling the generator
type StatsService struct {
	store  storage.Store
	config config.Config
	now    func() time.Time
}

// NewStatsService creates a new StatsService
func NewStatsService(store storage.Store, cfg config.Config) *StatsService {
	return &StatsService{
		store:  store,
		config: cfg,
		now:    time.Now,
	}
}

// StatsResult contains the metrics for one user scope and window
type StatsResult struct {
	Bundle stats.MetricBundle
	Period string // Human-readable period description
	Start  time.Time
	End    time.Time
}

// ForWindow returns metrics for the last days days; days <= 0 uses the configured window
func (s *StatsService) ForWindow(ctx context.Context, userID, scopeID string, days int) (*StatsResult, error) {
	if days <= 0 {
		days = s.config.Insights.WindowDays
	}
	now := s.now().In(s.config.Location())
	start, end := timeutil.LastDays(now, days)

	entries, err := s.store.FetchTimeEntries(ctx, userID, scopeID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to read entries: %w", err)
	}
	clients, err := s.store.FetchActiveClients(ctx, scopeID)
	if err != nil {
		return nil, fmt.Errorf("failed to read clients: %w", err)
	}
	projects, err := s.store.FetchActiveOrPlanningProjects(ctx, scopeID)
	if err != nil {
		return nil, fmt.Errorf("failed to read projects: %w", err)
	}

	bundle := stats.Aggregate(entries, clients, projects, stats.Options{
		Now:              now,
		Start:            start,
		TargetDailyHours: s.config.Insights.TargetDailyHours,
	})

	return &StatsResult{
		Bundle: bundle,
		Period: fmt.Sprintf("last %d days", days),
		Start:  start,
		End:    end,
	}, nil
}
