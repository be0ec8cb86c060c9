package handlers

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xolan/tally/internal/cli"
	"github.com/xolan/tally/internal/config"
	"github.com/xolan/tally/internal/entry"
	"github.com/xolan/tally/internal/llm"
	"github.com/xolan/tally/internal/service"
	"github.com/xolan/tally/internal/storage"
)

// cannedGenerator returns one insight per task and a fixed weekly summary
type cannedGenerator struct{}

func (cannedGenerator) Complete(_ context.Context, messages []llm.Message, _ llm.Options) (map[string]any, error) {
	for _, key := range []string{"predictions", "anomalies", "recommendations", "patterns", "opportunities"} {
		if strings.Contains(messages[0].Content, fmt.Sprintf("%q array", key)) {
			return map[string]any{key: []any{map[string]any{
				"title":       "Canned " + key,
				"description": "Generated for " + key,
				"priority":    "high",
				"confidence":  0.8,
			}}}, nil
		}
	}
	return map[string]any{
		"executive_summary": "A steady week.",
		"achievements":      []any{"Shipped the release"},
	}, nil
}

// setupTestDeps creates deps over a JSONL store in a temp dir
func setupTestDeps(t *testing.T, generator llm.Generator) (*cli.Deps, *bytes.Buffer, *bytes.Buffer, *int) {
	t.Helper()
	tmpDir := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Timezone = "UTC"
	cfg.Store.DataDir = tmpDir

	store := storage.NewJSONLStore(tmpDir, nil)
	services := service.NewServicesWith(store, generator, filepath.Join(tmpDir, "config.toml"), cfg, nil)

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	exitCode := 0

	deps := &cli.Deps{
		Stdout:   stdout,
		Stderr:   stderr,
		Stdin:    strings.NewReader(""),
		Exit:     func(code int) { exitCode = code },
		Services: services,
		Config:   cfg,
	}

	return deps, stdout, stderr, &exitCode
}

// writeSampleData writes ten daily entries for u1/s1 and one client
func writeSampleData(t *testing.T, dir string) {
	t.Helper()
	now := time.Now().UTC()
	for i := 0; i < 10; i++ {
		e := entry.Entry{
			ID:              fmt.Sprintf("e%d", i),
			UserID:          "u1",
			ScopeID:         "s1",
			StartTime:       now.AddDate(0, 0, -i).Add(-2 * time.Hour),
			DurationMinutes: 120,
			Billable:        true,
			HourlyRate:      100,
			Channel:         "dev",
			ClientID:        "c1",
		}
		if err := storage.AppendRecord(filepath.Join(dir, storage.EntriesFile), e); err != nil {
			t.Fatal(err)
		}
	}
	client := entry.Client{ID: "c1", ScopeID: "s1", Name: "Acme", Status: entry.ClientActive}
	if err := storage.AppendRecord(filepath.Join(dir, storage.ClientsFile), client); err != nil {
		t.Fatal(err)
	}
}

func dataDir(deps *cli.Deps) string {
	return deps.Config.Store.DataDir
}
