// Package entry defines the read-only records the insights pipeline consumes:
// time entries, clients and projects.
package entry

import "time"

// NoChannel is the channel name used for entries logged without a channel
const NoChannel = "(none)"

// Entry represents a single tracked block of time
type Entry struct {
	ID              string     `json:"id"`
	UserID          string     `json:"user_id"`
	ScopeID         string     `json:"scope_id"`
	StartTime       time.Time  `json:"start_time"`
	EndTime         *time.Time `json:"end_time,omitempty"`
	DurationMinutes int        `json:"duration_minutes"`
	Billable        bool       `json:"billable"`
	Amount          float64    `json:"amount"`
	HourlyRate      float64    `json:"hourly_rate"`
	Channel         string     `json:"channel,omitempty"`
	Category        string     `json:"category,omitempty"`
	ClientID        string     `json:"client_id,omitempty"`
	ProjectID       string     `json:"project_id,omitempty"`
	Title           string     `json:"title,omitempty"`
	Description     string     `json:"description,omitempty"`
}

// Minutes returns the entry duration, treating negative values as zero
func (e Entry) Minutes() int {
	if e.DurationMinutes < 0 {
		return 0
	}
	return e.DurationMinutes
}

// Revenue returns the monetary value of the entry.
// Non-billable entries earn nothing. A billable entry without a stored amount
// is valued at duration × hourly rate.
func (e Entry) Revenue() float64 {
	if !e.Billable {
		return 0
	}
	if e.Amount > 0 {
		return e.Amount
	}
	if e.HourlyRate > 0 {
		return float64(e.Minutes()) / 60 * e.HourlyRate
	}
	return 0
}

// ChannelName returns the entry channel or NoChannel when empty
func (e Entry) ChannelName() string {
	if e.Channel == "" {
		return NoChannel
	}
	return e.Channel
}

// ClientStatus is the lifecycle state of a client
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
)

// Client represents a customer that time is billed to
type Client struct {
	ID             string       `json:"id"`
	ScopeID        string       `json:"scope_id"`
	Name           string       `json:"name"`
	HourlyRate     *float64     `json:"hourly_rate,omitempty"`
	RetainerHours  *float64     `json:"retainer_hours,omitempty"`
	RetainerAmount *float64     `json:"retainer_amount,omitempty"`
	Status         ClientStatus `json:"status"`
}

// HasRetainer reports whether the client has a positive retainer allowance
func (c Client) HasRetainer() bool {
	return c.RetainerHours != nil && *c.RetainerHours > 0
}

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectActive    ProjectStatus = "active"
	ProjectPlanning  ProjectStatus = "planning"
	ProjectCompleted ProjectStatus = "completed"
	ProjectArchived  ProjectStatus = "archived"
)

// Project represents a body of work for a client
type Project struct {
	ID             string        `json:"id"`
	ScopeID        string        `json:"scope_id"`
	ClientID       string        `json:"client_id,omitempty"`
	Name           string        `json:"name"`
	Budget         *float64      `json:"budget,omitempty"`
	EstimatedHours *float64      `json:"estimated_hours,omitempty"`
	Deadline       *time.Time    `json:"deadline,omitempty"`
	Status         ProjectStatus `json:"status"`
}

// IsOpen reports whether the project is active or still being planned
func (p Project) IsOpen() bool {
	return p.Status == ProjectActive || p.Status == ProjectPlanning
}

// Float returns a pointer to v, for building optional fields
func Float(v float64) *float64 {
	return &v
}
