package handlers

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xolan/tally/internal/service"
	"github.com/xolan/tally/internal/storage"
)

func TestValidateStore(t *testing.T) {
	deps, stdout, _, exitCode := setupTestDeps(t, nil)
	writeSampleData(t, dataDir(deps))

	ValidateStore(deps)

	if *exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", *exitCode)
	}
	out := stdout.String()
	if !strings.Contains(out, "entries.jsonl    10 valid, 0 corrupted") {
		t.Errorf("expected entries health, got %q", out)
	}
	if !strings.Contains(out, "projects.jsonl   missing") {
		t.Errorf("expected missing projects file, got %q", out)
	}
	if !strings.Contains(out, "All data files are valid.") {
		t.Errorf("expected success message, got %q", out)
	}
}

func TestValidateStore_Corrupted(t *testing.T) {
	deps, stdout, stderr, exitCode := setupTestDeps(t, nil)
	writeSampleData(t, dataDir(deps))
	f, err := os.OpenFile(filepath.Join(dataDir(deps), storage.ClientsFile), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	_, _ = f.WriteString("{not json\n")
	_ = f.Close()

	ValidateStore(deps)

	if *exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", *exitCode)
	}
	if !strings.Contains(stdout.String(), "clients.jsonl line 2") {
		t.Errorf("expected warning location, got %q", stdout.String())
	}
	if !strings.Contains(stderr.String(), "Found 1 corrupted line") {
		t.Errorf("expected corruption count, got %q", stderr.String())
	}
}

func TestValidateStore_SQL(t *testing.T) {
	deps, stdout, _, exitCode := setupTestDeps(t, nil)
	store := openSQLite(t)
	deps.Services = service.NewServicesWith(store, nil, "", deps.Config, nil)
	deps.Config.Store.Driver = storage.DriverSQLite

	ValidateStore(deps)

	if *exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", *exitCode)
	}
	if !strings.Contains(stdout.String(), "has no files to validate") {
		t.Errorf("expected SQL message, got %q", stdout.String())
	}
}
