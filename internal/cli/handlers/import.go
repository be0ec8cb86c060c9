package handlers

import (
	"context"
	"fmt"

	"github.com/xolan/tally/internal/cli"
	"github.com/xolan/tally/internal/storage"
)

// ImportData copies a JSONL data directory into the configured SQL store.
// Corrupted lines are reported and skipped.
func ImportData(ctx context.Context, deps *cli.Deps, dir string) {
	store, ok := deps.Services.Store.(*storage.SQLStore)
	if !ok {
		deps.Fail("Import requires a SQL store", nil,
			"Set [store] driver to \"sqlite3\" or \"postgres\" in your config")
		return
	}

	data, warnings, err := storage.ReadAll(dir)
	if err != nil {
		deps.Fail("Failed to read data directory", err)
		return
	}
	for _, w := range warnings {
		_, _ = fmt.Fprintf(deps.Stderr, "Warning: skipped corrupted line\n%s\n", cli.FormatParseWarning(w))
	}

	if err := store.Migrate(ctx); err != nil {
		deps.Fail("Failed to prepare database", err)
		return
	}
	if err := store.Import(ctx, data.Entries, data.Clients, data.Projects); err != nil {
		deps.Fail("Failed to import data", err)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Imported from %s\n", dir)
	_, _ = fmt.Fprintf(deps.Stdout, "  entries:  %d\n", len(data.Entries))
	_, _ = fmt.Fprintf(deps.Stdout, "  clients:  %d\n", len(data.Clients))
	_, _ = fmt.Fprintf(deps.Stdout, "  projects: %d\n", len(data.Projects))
}
