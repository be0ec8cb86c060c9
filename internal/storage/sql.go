package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/xolan/tally/internal/entry"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS time_entries (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		scope_id TEXT NOT NULL,
		start_time TIMESTAMP NOT NULL,
		end_time TIMESTAMP NULL,
		duration_minutes INTEGER NOT NULL DEFAULT 0,
		billable BOOLEAN NOT NULL DEFAULT FALSE,
		amount DOUBLE PRECISION NOT NULL DEFAULT 0,
		hourly_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		channel TEXT NOT NULL DEFAULT '',
		category TEXT NOT NULL DEFAULT '',
		client_id TEXT NOT NULL DEFAULT '',
		project_id TEXT NOT NULL DEFAULT '',
		title TEXT NOT NULL DEFAULT '',
		description TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE INDEX IF NOT EXISTS idx_time_entries_owner ON time_entries (user_id, scope_id, start_time)`,
	`CREATE TABLE IF NOT EXISTS clients (
		id TEXT PRIMARY KEY,
		scope_id TEXT NOT NULL,
		name TEXT NOT NULL,
		hourly_rate DOUBLE PRECISION NULL,
		retainer_hours DOUBLE PRECISION NULL,
		retainer_amount DOUBLE PRECISION NULL,
		status TEXT NOT NULL DEFAULT 'active'
	)`,
	`CREATE TABLE IF NOT EXISTS projects (
		id TEXT PRIMARY KEY,
		scope_id TEXT NOT NULL,
		client_id TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		budget DOUBLE PRECISION NULL,
		estimated_hours DOUBLE PRECISION NULL,
		deadline TIMESTAMP NULL,
		status TEXT NOT NULL DEFAULT 'active'
	)`,
}

// SQLStore reads from a SQLite or PostgreSQL database
type SQLStore struct {
	db     *sql.DB
	driver string
}

// OpenSQL opens and pings a database for driver
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	if driver != DriverSQLite && driver != DriverPostgres {
		return nil, fmt.Errorf("%w: %q", ErrUnknownDriver, driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s database: %w", driver, err)
	}
	return NewSQLStore(db, driver), nil
}

// NewSQLStore wraps an open database
func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{db: db, driver: driver}
}

// Migrate creates the tables if they are missing
func (s *SQLStore) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// Close implements Store
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders as $n for postgres
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var sb strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			sb.WriteString("$" + strconv.Itoa(n))
			continue
		}
		sb.WriteRune(r)
	}
	return sb.String()
}

// FetchTimeEntries implements Store
func (s *SQLStore) FetchTimeEntries(ctx context.Context, userID, scopeID string, since time.Time) ([]entry.Entry, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, user_id, scope_id, start_time, end_time, duration_minutes, billable,
			amount, hourly_rate, channel, category, client_id, project_id, title, description
		FROM time_entries
		WHERE user_id = ? AND scope_id = ? AND start_time >= ?
		ORDER BY start_time, id`), userID, scopeID, since.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query time entries: %w", err)
	}
	defer func() { _ = rows.Close() }()

	entries := []entry.Entry{}
	for rows.Next() {
		var e entry.Entry
		var end sql.NullTime
		if err := rows.Scan(&e.ID, &e.UserID, &e.ScopeID, &e.StartTime, &end, &e.DurationMinutes,
			&e.Billable, &e.Amount, &e.HourlyRate, &e.Channel, &e.Category, &e.ClientID,
			&e.ProjectID, &e.Title, &e.Description); err != nil {
			return nil, fmt.Errorf("failed to scan time entry: %w", err)
		}
		if end.Valid {
			t := end.Time
			e.EndTime = &t
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// FetchActiveClients implements Store
func (s *SQLStore) FetchActiveClients(ctx context.Context, scopeID string) ([]entry.Client, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, scope_id, name, hourly_rate, retainer_hours, retainer_amount, status
		FROM clients
		WHERE scope_id = ? AND status = ?
		ORDER BY name, id`), scopeID, string(entry.ClientActive))
	if err != nil {
		return nil, fmt.Errorf("failed to query clients: %w", err)
	}
	defer func() { _ = rows.Close() }()

	clients := []entry.Client{}
	for rows.Next() {
		var c entry.Client
		var rate, hours, amount sql.NullFloat64
		var status string
		if err := rows.Scan(&c.ID, &c.ScopeID, &c.Name, &rate, &hours, &amount, &status); err != nil {
			return nil, fmt.Errorf("failed to scan client: %w", err)
		}
		c.HourlyRate = nullFloat(rate)
		c.RetainerHours = nullFloat(hours)
		c.RetainerAmount = nullFloat(amount)
		c.Status = entry.ClientStatus(status)
		clients = append(clients, c)
	}
	return clients, rows.Err()
}

// FetchActiveOrPlanningProjects implements Store
func (s *SQLStore) FetchActiveOrPlanningProjects(ctx context.Context, scopeID string) ([]entry.Project, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT id, scope_id, client_id, name, budget, estimated_hours, deadline, status
		FROM projects
		WHERE scope_id = ? AND status IN (?, ?)
		ORDER BY name, id`), scopeID, string(entry.ProjectActive), string(entry.ProjectPlanning))
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer func() { _ = rows.Close() }()

	projects := []entry.Project{}
	for rows.Next() {
		var p entry.Project
		var budget, hours sql.NullFloat64
		var deadline sql.NullTime
		var status string
		if err := rows.Scan(&p.ID, &p.ScopeID, &p.ClientID, &p.Name, &budget, &hours, &deadline, &status); err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		p.Budget = nullFloat(budget)
		p.EstimatedHours = nullFloat(hours)
		if deadline.Valid {
			t := deadline.Time
			p.Deadline = &t
		}
		p.Status = entry.ProjectStatus(status)
		projects = append(projects, p)
	}
	return projects, rows.Err()
}

// Import upserts entries, clients and projects in one transaction
func (s *SQLStore) Import(ctx context.Context, entries []entry.Entry, clients []entry.Client, projects []entry.Project) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin import: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, e := range entries {
		var end any
		if e.EndTime != nil {
			end = e.EndTime.UTC()
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO time_entries (id, user_id, scope_id, start_time, end_time, duration_minutes,
				billable, amount, hourly_rate, channel, category, client_id, project_id, title, description)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				start_time = excluded.start_time, end_time = excluded.end_time,
				duration_minutes = excluded.duration_minutes, billable = excluded.billable,
				amount = excluded.amount, hourly_rate = excluded.hourly_rate,
				channel = excluded.channel, category = excluded.category,
				client_id = excluded.client_id, project_id = excluded.project_id,
				title = excluded.title, description = excluded.description`),
			e.ID, e.UserID, e.ScopeID, e.StartTime.UTC(), end, e.DurationMinutes, e.Billable,
			e.Amount, e.HourlyRate, e.Channel, e.Category, e.ClientID, e.ProjectID, e.Title, e.Description,
		); err != nil {
			return fmt.Errorf("failed to import entry %s: %w", e.ID, err)
		}
	}

	for _, c := range clients {
		if _, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO clients (id, scope_id, name, hourly_rate, retainer_hours, retainer_amount, status)
			VALUES (?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				name = excluded.name, hourly_rate = excluded.hourly_rate,
				retainer_hours = excluded.retainer_hours, retainer_amount = excluded.retainer_amount,
				status = excluded.status`),
			c.ID, c.ScopeID, c.Name, floatArg(c.HourlyRate), floatArg(c.RetainerHours),
			floatArg(c.RetainerAmount), string(c.Status),
		); err != nil {
			return fmt.Errorf("failed to import client %s: %w", c.ID, err)
		}
	}

	for _, p := range projects {
		var deadline any
		if p.Deadline != nil {
			deadline = p.Deadline.UTC()
		}
		if _, err := tx.ExecContext(ctx, s.rebind(`
			INSERT INTO projects (id, scope_id, client_id, name, budget, estimated_hours, deadline, status)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (id) DO UPDATE SET
				client_id = excluded.client_id, name = excluded.name, budget = excluded.budget,
				estimated_hours = excluded.estimated_hours, deadline = excluded.deadline,
				status = excluded.status`),
			p.ID, p.ScopeID, p.ClientID, p.Name, floatArg(p.Budget), floatArg(p.EstimatedHours),
			deadline, string(p.Status),
		); err != nil {
			return fmt.Errorf("failed to import project %s: %w", p.ID, err)
		}
	}

	return tx.Commit()
}

func nullFloat(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func floatArg(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}
