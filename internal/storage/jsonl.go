package storage

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/xolan/tally/internal/config"
	"github.com/xolan/tally/internal/entry"
	"github.com/xolan/tally/internal/osutil"
)

const (
	// EntriesFile holds one time entry per line
	EntriesFile = "entries.jsonl"
	// ClientsFile holds one client per line
	ClientsFile = "clients.jsonl"
	// ProjectsFile holds one project per line
	ProjectsFile = "projects.jsonl"

	maxLineSize = 1024 * 1024
)

// DataFiles lists the files a JSONL data directory may contain
var DataFiles = []string{EntriesFile, ClientsFile, ProjectsFile}

// ParseWarning represents a warning about a corrupted or malformed line
type ParseWarning struct {
	File       string // Base name of the file
	LineNumber int    // Line number in the file (1-indexed)
	Content    string // Raw content of the corrupted line
	Error      string // Description of the parsing error
}

// ReadResult contains the successfully parsed records of a file together with
// warnings about any corrupted lines.
type ReadResult[T any] struct {
	Records  []T
	Warnings []ParseWarning
	// TotalLines counts every line in the file, blank ones included
	TotalLines int
}

// GetDataDir returns the default directory for the JSONL files.
// Uses the user config directory for cross-platform XDG-compliant config directory.
// Creates the directory if it doesn't exist.
func GetDataDir() (string, error) {
	configDir, err := osutil.Provider.UserConfigDir()
	if err != nil {
		return "", err
	}

	appDir := filepath.Join(configDir, config.AppName)

	// Create data directory if it doesn't exist
	if err := osutil.Provider.MkdirAll(appDir, 0755); err != nil {
		return "", err
	}

	return appDir, nil
}

// ReadRecords reads every line of a JSON Lines file into T.
// Returns an empty result if the file doesn't exist. Blank lines are skipped;
// lines that fail to parse are reported as warnings.
func ReadRecords[T any](path string) (ReadResult[T], error) {
	result := ReadResult[T]{
		Records:  []T{},
		Warnings: []ParseWarning{},
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return result, nil
		}
		return result, err
	}
	defer func() { _ = file.Close() }()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)
	for scanner.Scan() {
		result.TotalLines++
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}

		var record T
		if err := sonic.UnmarshalString(line, &record); err != nil {
			result.Warnings = append(result.Warnings, ParseWarning{
				File:       filepath.Base(path),
				LineNumber: result.TotalLines,
				Content:    line,
				Error:      err.Error(),
			})
			continue
		}
		result.Records = append(result.Records, record)
	}

	if err := scanner.Err(); err != nil {
		return result, err
	}
	return result, nil
}

// AppendRecord appends a single record to a JSON Lines file.
// Creates the file if it doesn't exist.
func AppendRecord[T any](path string, record T) error {
	file, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()

	line, err := sonic.MarshalString(record)
	if err != nil {
		return err
	}

	_, err = file.WriteString(line + "\n")
	return err
}

// JSONLStore reads entries, clients and projects from JSON Lines files in a directory
type JSONLStore struct {
	dir    string
	logger *slog.Logger
}

// NewJSONLStore creates a store over dir
func NewJSONLStore(dir string, logger *slog.Logger) *JSONLStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &JSONLStore{dir: dir, logger: logger}
}

// Dir returns the data directory
func (s *JSONLStore) Dir() string {
	return s.dir
}

func readFile[T any](ctx context.Context, s *JSONLStore, name string) ([]T, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	result, err := ReadRecords[T](filepath.Join(s.dir, name))
	if err != nil {
		return nil, err
	}
	if len(result.Warnings) > 0 {
		s.logger.Warn("skipped corrupted lines", "file", name, "count", len(result.Warnings))
	}
	return result.Records, nil
}

// FetchTimeEntries implements Store
func (s *JSONLStore) FetchTimeEntries(ctx context.Context, userID, scopeID string, since time.Time) ([]entry.Entry, error) {
	all, err := readFile[entry.Entry](ctx, s, EntriesFile)
	if err != nil {
		return nil, err
	}

	entries := make([]entry.Entry, 0, len(all))
	for _, e := range all {
		if e.UserID != userID || e.ScopeID != scopeID {
			continue
		}
		if !since.IsZero() && e.StartTime.Before(since) {
			continue
		}
		entries = append(entries, e)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].StartTime.Equal(entries[j].StartTime) {
			return entries[i].StartTime.Before(entries[j].StartTime)
		}
		return entries[i].ID < entries[j].ID
	})
	return entries, nil
}

// FetchActiveClients implements Store
func (s *JSONLStore) FetchActiveClients(ctx context.Context, scopeID string) ([]entry.Client, error) {
	all, err := readFile[entry.Client](ctx, s, ClientsFile)
	if err != nil {
		return nil, err
	}

	clients := make([]entry.Client, 0, len(all))
	for _, c := range all {
		if c.ScopeID == scopeID && c.Status == entry.ClientActive {
			clients = append(clients, c)
		}
	}
	sort.SliceStable(clients, func(i, j int) bool { return clients[i].Name < clients[j].Name })
	return clients, nil
}

// FetchActiveOrPlanningProjects implements Store
func (s *JSONLStore) FetchActiveOrPlanningProjects(ctx context.Context, scopeID string) ([]entry.Project, error) {
	all, err := readFile[entry.Project](ctx, s, ProjectsFile)
	if err != nil {
		return nil, err
	}

	projects := make([]entry.Project, 0, len(all))
	for _, p := range all {
		if p.ScopeID == scopeID && p.IsOpen() {
			projects = append(projects, p)
		}
	}
	sort.SliceStable(projects, func(i, j int) bool { return projects[i].Name < projects[j].Name })
	return projects, nil
}

// Close implements Store
func (s *JSONLStore) Close() error {
	return nil
}

// StorageHealth contains information about the health status of one data file
type StorageHealth struct {
	File             string         // Base name of the file
	Exists           bool           // Whether the file is present
	TotalLines       int            // Total number of lines in the file
	ValidEntries     int            // Number of successfully parsed records
	CorruptedEntries int            // Number of corrupted/malformed lines
	Warnings         []ParseWarning // Detailed information about each corrupted line
}

// Validate analyzes every data file and returns its health status.
// Missing files are reported with Exists false rather than as errors.
func (s *JSONLStore) Validate() ([]StorageHealth, error) {
	report := make([]StorageHealth, 0, len(DataFiles))
	for _, name := range DataFiles {
		path := filepath.Join(s.dir, name)
		health := StorageHealth{File: name, Warnings: []ParseWarning{}}

		if _, err := os.Stat(path); err == nil {
			health.Exists = true
		} else if !os.IsNotExist(err) {
			return nil, err
		}

		var (
			valid    int
			warnings []ParseWarning
			total    int
			err      error
		)
		switch name {
		case EntriesFile:
			var r ReadResult[entry.Entry]
			r, err = ReadRecords[entry.Entry](path)
			valid, warnings, total = len(r.Records), r.Warnings, r.TotalLines
		case ClientsFile:
			var r ReadResult[entry.Client]
			r, err = ReadRecords[entry.Client](path)
			valid, warnings, total = len(r.Records), r.Warnings, r.TotalLines
		case ProjectsFile:
			var r ReadResult[entry.Project]
			r, err = ReadRecords[entry.Project](path)
			valid, warnings, total = len(r.Records), r.Warnings, r.TotalLines
		}
		if err != nil {
			return nil, err
		}

		health.TotalLines = total
		health.ValidEntries = valid
		health.CorruptedEntries = len(warnings)
		health.Warnings = warnings
		report = append(report, health)
	}
	return report, nil
}

// Dataset is the full content of a JSONL data directory
type Dataset struct {
	Entries  []entry.Entry
	Clients  []entry.Client
	Projects []entry.Project
}

// ReadAll reads every data file in dir, unfiltered, together with warnings
// about corrupted lines
func ReadAll(dir string) (Dataset, []ParseWarning, error) {
	var data Dataset
	var warnings []ParseWarning

	entries, err := ReadRecords[entry.Entry](filepath.Join(dir, EntriesFile))
	if err != nil {
		return data, nil, fmt.Errorf("failed to read %s: %w", EntriesFile, err)
	}
	clients, err := ReadRecords[entry.Client](filepath.Join(dir, ClientsFile))
	if err != nil {
		return data, nil, fmt.Errorf("failed to read %s: %w", ClientsFile, err)
	}
	projects, err := ReadRecords[entry.Project](filepath.Join(dir, ProjectsFile))
	if err != nil {
		return data, nil, fmt.Errorf("failed to read %s: %w", ProjectsFile, err)
	}

	warnings = append(warnings, entries.Warnings...)
	warnings = append(warnings, clients.Warnings...)
	warnings = append(warnings, projects.Warnings...)
	data.Entries, data.Clients, data.Projects = entries.Records, clients.Records, projects.Records
	return data, warnings, nil
}
