package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xolan/tally/internal/config"
	"github.com/xolan/tally/internal/entry"
)

// ErrUnknownDriver is returned by Open for an unsupported store driver
var ErrUnknownDriver = errors.New("unknown store driver")

// Drivers accepted by Open
const (
	DriverJSONL    = "jsonl"
	DriverSQLite   = "sqlite3"
	DriverPostgres = "postgres"
)

// Store is the read-only data source for the insights pipeline
type Store interface {
	// FetchTimeEntries returns the user's entries in scope starting at or after since, ordered by start time
	FetchTimeEntries(ctx context.Context, userID, scopeID string, since time.Time) ([]entry.Entry, error)
	// FetchActiveClients returns the active clients in scope ordered by name
	FetchActiveClients(ctx context.Context, scopeID string) ([]entry.Client, error)
	// FetchActiveOrPlanningProjects returns active and planning projects in scope ordered by name
	FetchActiveOrPlanningProjects(ctx context.Context, scopeID string) ([]entry.Project, error)
	Close() error
}

// Open returns the Store selected by cfg.Driver
func Open(ctx context.Context, cfg config.StoreConfig, logger *slog.Logger) (Store, error) {
	switch cfg.Driver {
	case DriverJSONL, "":
		dir := cfg.DataDir
		if dir == "" {
			var err error
			if dir, err = GetDataDir(); err != nil {
				return nil, fmt.Errorf("failed to resolve data directory: %w", err)
			}
		}
		return NewJSONLStore(dir, logger), nil
	case DriverSQLite, DriverPostgres:
		s, err := OpenSQL(ctx, cfg.Driver, cfg.DSN)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, cfg.Driver)
	}
}
