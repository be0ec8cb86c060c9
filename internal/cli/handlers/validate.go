package handlers

import (
	"fmt"
	"strings"

	"github.com/xolan/tally/internal/cli"
	"github.com/xolan/tally/internal/storage"
)

// ValidateStore checks every JSONL data file and reports corrupted lines.
// Exits with code 1 when any file has corrupted lines.
func ValidateStore(deps *cli.Deps) {
	store, ok := deps.Services.Store.(*storage.JSONLStore)
	if !ok {
		_, _ = fmt.Fprintf(deps.Stdout, "Store driver '%s' has no files to validate.\n", deps.Config.Store.Driver)
		return
	}

	report, err := store.Validate()
	if err != nil {
		deps.Fail("Failed to validate data files", err)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Data directory: %s\n", store.Dir())
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))

	corrupted := 0
	for _, h := range report {
		if !h.Exists {
			_, _ = fmt.Fprintf(deps.Stdout, "%-16s missing\n", h.File)
			continue
		}
		_, _ = fmt.Fprintf(deps.Stdout, "%-16s %d valid, %d corrupted (%d %s)\n",
			h.File, h.ValidEntries, h.CorruptedEntries, h.TotalLines, cli.Pluralize("line", h.TotalLines))
		for _, w := range h.Warnings {
			_, _ = fmt.Fprintln(deps.Stdout, cli.FormatParseWarning(w))
		}
		corrupted += h.CorruptedEntries
	}

	if corrupted > 0 {
		_, _ = fmt.Fprintf(deps.Stderr, "Found %d corrupted %s\n", corrupted, cli.Pluralize("line", corrupted))
		deps.Exit(1)
		return
	}
	_, _ = fmt.Fprintln(deps.Stdout, "All data files are valid.")
}
