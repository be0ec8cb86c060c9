package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/xolan/tally/internal/config"
	"github.com/xolan/tally/internal/entry"
)

func openTestSQLite(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()
	s, err := OpenSQL(ctx, DriverSQLite, filepath.Join(t.TempDir(), "tally.db"))
	if err != nil {
		t.Fatalf("OpenSQL() returned unexpected error: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() returned unexpected error: %v", err)
	}
	return s
}

func TestSQLStore(t *testing.T) {
	s := openTestSQLite(t)
	dir := seedJSONL(t)

	entries, _ := ReadRecords[entry.Entry](filepath.Join(dir, EntriesFile))
	clients, _ := ReadRecords[entry.Client](filepath.Join(dir, ClientsFile))
	projects, _ := ReadRecords[entry.Project](filepath.Join(dir, ProjectsFile))
	if err := s.Import(context.Background(), entries.Records, clients.Records, projects.Records); err != nil {
		t.Fatalf("Import() returned unexpected error: %v", err)
	}

	storeContract(t, s)
}

func TestSQLStore_MigrateIsIdempotent(t *testing.T) {
	s := openTestSQLite(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Errorf("second Migrate() returned error: %v", err)
	}
}

func TestSQLStore_ImportUpserts(t *testing.T) {
	s := openTestSQLite(t)
	ctx := context.Background()
	start := time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)
	end := start.Add(90 * time.Minute)
	deadline := time.Date(2024, time.April, 1, 0, 0, 0, 0, time.UTC)

	e := entry.Entry{ID: "e1", UserID: "u1", ScopeID: "s1", StartTime: start, EndTime: &end,
		DurationMinutes: 90, Billable: true, HourlyRate: 120, Channel: "dev"}
	p := entry.Project{ID: "p1", ScopeID: "s1", Name: "Site", Budget: entry.Float(5000),
		Deadline: &deadline, Status: entry.ProjectActive}
	if err := s.Import(ctx, []entry.Entry{e}, nil, []entry.Project{p}); err != nil {
		t.Fatalf("Import() returned unexpected error: %v", err)
	}

	e.DurationMinutes = 120
	if err := s.Import(ctx, []entry.Entry{e}, nil, nil); err != nil {
		t.Fatalf("second Import() returned unexpected error: %v", err)
	}

	got, err := s.FetchTimeEntries(ctx, "u1", "s1", start.Add(-time.Hour))
	if err != nil {
		t.Fatalf("FetchTimeEntries() returned unexpected error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(entries) = %d, expected 1", len(got))
	}
	if got[0].DurationMinutes != 120 || !got[0].Billable || got[0].Channel != "dev" {
		t.Errorf("unexpected entry %+v", got[0])
	}
	if got[0].EndTime == nil || !got[0].EndTime.Equal(end) {
		t.Errorf("EndTime = %v, expected %v", got[0].EndTime, end)
	}

	projects, err := s.FetchActiveOrPlanningProjects(ctx, "s1")
	if err != nil {
		t.Fatalf("FetchActiveOrPlanningProjects() returned unexpected error: %v", err)
	}
	if len(projects) != 1 || projects[0].Deadline == nil || !projects[0].Deadline.Equal(deadline) {
		t.Errorf("unexpected projects %+v", projects)
	}
	if projects[0].EstimatedHours != nil {
		t.Error("EstimatedHours should stay nil")
	}
}

func TestRebind(t *testing.T) {
	tests := []struct {
		driver, want string
	}{
		{DriverSQLite, "a = ? AND b IN (?, ?)"},
		{DriverPostgres, "a = $1 AND b IN ($2, $3)"},
	}
	for _, tt := range tests {
		s := &SQLStore{driver: tt.driver}
		if got := s.rebind("a = ? AND b IN (?, ?)"); got != tt.want {
			t.Errorf("rebind(%s) = %q, expected %q", tt.driver, got, tt.want)
		}
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	s, err := Open(ctx, config.StoreConfig{Driver: DriverJSONL, DataDir: t.TempDir()}, nil)
	if err != nil {
		t.Fatalf("Open(jsonl) returned unexpected error: %v", err)
	}
	if _, ok := s.(*JSONLStore); !ok {
		t.Errorf("Open(jsonl) = %T, expected *JSONLStore", s)
	}

	s, err = Open(ctx, config.StoreConfig{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "x.db")}, nil)
	if err != nil {
		t.Fatalf("Open(sqlite3) returned unexpected error: %v", err)
	}
	_ = s.Close()

	_, err = Open(ctx, config.StoreConfig{Driver: "mongo"}, nil)
	if !errors.Is(err, ErrUnknownDriver) {
		t.Errorf("Open(mongo) error = %v, expected ErrUnknownDriver", err)
	}
}
