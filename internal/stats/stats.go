// Package stats turns raw time entries into the derived aggregates the insight
// tasks reason over. Everything here is pure: no I/O, no shared state.
package stats

import (
	"math"
	"sort"
	"time"

	"github.com/xolan/tally/internal/entry"
	"github.com/xolan/tally/internal/timeutil"
)

const (
	// DefaultTargetDailyHours is the billable-hours goal utilization is measured against
	DefaultTargetDailyHours = 6.0
	// TrendThreshold is the revenue change (percent) that flips a trend to up or down
	TrendThreshold = 10.0
	// RetainerUsageThreshold is the usage percent below which a retainer is underutilized
	RetainerUsageThreshold = 80.0
	// TrendWeeks is the number of rolling weeks kept in the weekly series
	TrendWeeks = 12
)

// TrendDirection labels a week-over-week movement
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// Options controls a single aggregation run
type Options struct {
	// Now anchors rolling windows. Zero means time.Now().
	Now time.Time
	// Start and End bound the entries considered; zero values leave that side open.
	Start time.Time
	End   time.Time
	// TargetDailyHours defaults to DefaultTargetDailyHours when <= 0.
	TargetDailyHours float64
}

// ChannelMetrics aggregates entries logged under one channel
type ChannelMetrics struct {
	Channel         string  `json:"channel"`
	EntryCount      int     `json:"entry_count"`
	Minutes         int     `json:"minutes"`
	BillableMinutes int     `json:"billable_minutes"`
	Revenue         float64 `json:"revenue"`
	BillableRate    float64 `json:"billable_rate"`
	Efficiency      float64 `json:"efficiency"`
}

// ClientMetrics aggregates entries logged for one client
type ClientMetrics struct {
	ClientID        string    `json:"client_id"`
	Name            string    `json:"name"`
	EntryCount      int       `json:"entry_count"`
	Minutes         int       `json:"minutes"`
	BillableMinutes int       `json:"billable_minutes"`
	Revenue         float64   `json:"revenue"`
	LastActivity    time.Time `json:"last_activity"`
	// DaysSinceActivity is -1 when the client has no entries in the window.
	DaysSinceActivity int `json:"days_since_activity"`
}

// ProjectMetrics tracks budget and estimate burn for one project
type ProjectMetrics struct {
	ProjectID         string              `json:"project_id"`
	Name              string              `json:"name"`
	ClientID          string              `json:"client_id,omitempty"`
	Status            entry.ProjectStatus `json:"status,omitempty"`
	Hours             float64             `json:"hours"`
	Revenue           float64             `json:"revenue"`
	Budget            float64             `json:"budget,omitempty"`
	BudgetUsedPercent float64             `json:"budget_used_percent,omitempty"`
	EstimatedHours    float64             `json:"estimated_hours,omitempty"`
	HoursUsedPercent  float64             `json:"hours_used_percent,omitempty"`
	DaysToDeadline    *int                `json:"days_to_deadline,omitempty"`
}

// CategoryMetrics aggregates entries by their category tag
type CategoryMetrics struct {
	Category string  `json:"category"`
	Minutes  int     `json:"minutes"`
	Revenue  float64 `json:"revenue"`
}

// Bucket is one slot of a time-of-day or day-of-week distribution
type Bucket struct {
	EntryCount int     `json:"entry_count"`
	Minutes    int     `json:"minutes"`
	Revenue    float64 `json:"revenue"`
}

// DayPoint is the activity of one calendar day
type DayPoint struct {
	Date       string  `json:"date"`
	EntryCount int     `json:"entry_count"`
	Minutes    int     `json:"minutes"`
	Revenue    float64 `json:"revenue"`
}

// WeekPoint is the activity of one rolling 7-day period, WeeksAgo 0 being the latest
type WeekPoint struct {
	WeeksAgo int     `json:"weeks_ago"`
	Minutes  int     `json:"minutes"`
	Revenue  float64 `json:"revenue"`
}

// Trend compares the most recent 7 days with the 7 days before them
type Trend struct {
	CurrentMinutes       int            `json:"current_minutes"`
	PreviousMinutes      int            `json:"previous_minutes"`
	CurrentRevenue       float64        `json:"current_revenue"`
	PreviousRevenue      float64        `json:"previous_revenue"`
	CurrentBillableRate  float64        `json:"current_billable_rate"`
	PreviousBillableRate float64        `json:"previous_billable_rate"`
	MinutesChange        float64        `json:"minutes_change"`
	RevenueChange        float64        `json:"revenue_change"`
	Direction            TrendDirection `json:"direction"`
}

// Correlations holds naive Pearson coefficients; 0 when undefined
type Correlations struct {
	DurationRevenue     float64 `json:"duration_revenue"`
	HourRate            float64 `json:"hour_rate"`
	DailyMinutesRevenue float64 `json:"daily_minutes_revenue"`
}

// RetainerUsage describes a client whose retainer is not being used up
type RetainerUsage struct {
	ClientID      string  `json:"client_id"`
	Name          string  `json:"name"`
	RetainerHours float64 `json:"retainer_hours"`
	HoursUsed     float64 `json:"hours_used"`
	UsagePercent  float64 `json:"usage_percent"`
	UnusedHours   float64 `json:"unused_hours"`
	HourlyRate    float64 `json:"hourly_rate"`
	UnusedValue   float64 `json:"unused_value"`
}

// MetricBundle holds every aggregate derived from one window of entries.
// It is built fresh per request and never modified afterwards.
type MetricBundle struct {
	Now   time.Time `json:"now"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`

	EntryCount      int     `json:"entry_count"`
	ActiveDays      int     `json:"active_days"`
	TotalMinutes    int     `json:"total_minutes"`
	BillableMinutes int     `json:"billable_minutes"`
	BillableRate    float64 `json:"billable_rate"`
	TotalRevenue    float64 `json:"total_revenue"`
	// AverageHourlyRate is revenue per billable hour.
	AverageHourlyRate float64 `json:"average_hourly_rate"`

	Channels   []ChannelMetrics  `json:"channels"`
	Clients    []ClientMetrics   `json:"clients"`
	Projects   []ProjectMetrics  `json:"projects"`
	Categories []CategoryMetrics `json:"categories"`

	ClientConcentration       float64 `json:"client_concentration"`
	TopClient                 string  `json:"top_client,omitempty"`
	AverageDailyBillableHours float64 `json:"average_daily_billable_hours"`
	TargetDailyHours          float64 `json:"target_daily_hours"`
	Utilization               float64 `json:"utilization"`

	Hours       [24]Bucket `json:"hours"`
	Weekdays    [7]Bucket  `json:"weekdays"`
	PeakHour    int        `json:"peak_hour"`
	PeakWeekday int        `json:"peak_weekday"`
	Days        []DayPoint  `json:"days"`
	Weeks       []WeekPoint `json:"weeks"`

	Trend         Trend           `json:"trend"`
	Correlations  Correlations    `json:"correlations"`
	Underutilized []RetainerUsage `json:"underutilized"`
	Challenges    []string        `json:"challenges"`
	Opportunities []string        `json:"opportunities"`
}

// IsEmpty reports whether the bundle was built from no entries
func (b MetricBundle) IsEmpty() bool {
	return b.EntryCount == 0
}

// Aggregate computes a MetricBundle from entries and their client/project lookups.
// The week-over-week trend is computed from all entries relative to Now; every
// other aggregate honours the Start/End window.
func Aggregate(entries []entry.Entry, clients []entry.Client, projects []entry.Project, opts Options) MetricBundle {
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}
	if opts.TargetDailyHours <= 0 {
		opts.TargetDailyHours = DefaultTargetDailyHours
	}
	loc := opts.Now.Location()

	all := sortedEntries(entries)
	windowed := make([]entry.Entry, 0, len(all))
	for _, e := range all {
		if inWindow(e.StartTime, opts.Start, opts.End) {
			windowed = append(windowed, e)
		}
	}

	b := MetricBundle{
		Now:              opts.Now,
		Start:            opts.Start,
		End:              opts.End,
		TargetDailyHours: opts.TargetDailyHours,
		PeakHour:         -1,
		PeakWeekday:      -1,
		Channels:         []ChannelMetrics{},
		Clients:          []ClientMetrics{},
		Projects:         []ProjectMetrics{},
		Categories:       []CategoryMetrics{},
		Days:             []DayPoint{},
		Weeks:            []WeekPoint{},
		Underutilized:    []RetainerUsage{},
		Challenges:       []string{},
		Opportunities:    []string{},
	}
	b.Trend = calculateTrend(all, opts.Now)

	if len(windowed) == 0 {
		b.Clients = calculateClients(nil, clients, opts.Now)
		b.Underutilized = calculateUnderutilized(nil, clients)
		b.Projects = calculateProjects(nil, projects, opts.Now)
		return b
	}

	days := make(map[string]*DayPoint)
	for _, e := range windowed {
		minutes := e.Minutes()
		revenue := e.Revenue()
		b.EntryCount++
		b.TotalMinutes += minutes
		b.TotalRevenue += revenue
		if e.Billable {
			b.BillableMinutes += minutes
		}

		local := e.StartTime.In(loc)
		hour := &b.Hours[local.Hour()]
		hour.EntryCount++
		hour.Minutes += minutes
		hour.Revenue += revenue
		weekday := &b.Weekdays[int(local.Weekday())]
		weekday.EntryCount++
		weekday.Minutes += minutes
		weekday.Revenue += revenue

		key := timeutil.DayKey(local)
		day, ok := days[key]
		if !ok {
			day = &DayPoint{Date: key}
			days[key] = day
		}
		day.EntryCount++
		day.Minutes += minutes
		day.Revenue += revenue
	}

	b.BillableRate = percent(float64(b.BillableMinutes), float64(b.TotalMinutes))
	b.AverageHourlyRate = perHour(b.TotalRevenue, b.BillableMinutes)
	b.ActiveDays = len(days)
	b.Days = sortedDays(days)
	b.Weeks = calculateWeeks(windowed, opts.Now)
	b.PeakHour = peakIndex(b.Hours[:])
	b.PeakWeekday = peakIndex(b.Weekdays[:])

	b.Channels = calculateChannels(windowed)
	b.Categories = calculateCategories(windowed)
	b.Clients = calculateClients(windowed, clients, opts.Now)
	b.Projects = calculateProjects(windowed, projects, opts.Now)
	b.Underutilized = calculateUnderutilized(windowed, clients)

	b.ClientConcentration, b.TopClient = calculateConcentration(b.Clients, b.TotalRevenue)
	b.AverageDailyBillableHours = float64(b.BillableMinutes) / 60 / float64(b.ActiveDays)
	b.Utilization = math.Min(100, b.AverageDailyBillableHours/opts.TargetDailyHours*100)

	b.Correlations = calculateCorrelations(windowed, b.Days, loc)
	b.Challenges = detectChallenges(b)
	b.Opportunities = detectOpportunities(b)

	return b
}

// sortedEntries copies entries ordered by start time then ID, so sums do not
// depend on the order the store returned them in.
func sortedEntries(entries []entry.Entry) []entry.Entry {
	out := make([]entry.Entry, len(entries))
	copy(out, entries)
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].StartTime.Equal(out[j].StartTime) {
			return out[i].StartTime.Before(out[j].StartTime)
		}
		return out[i].ID < out[j].ID
	})
	return out
}

func calculateChannels(entries []entry.Entry) []ChannelMetrics {
	channelMap := make(map[string]*ChannelMetrics)
	for _, e := range entries {
		name := e.ChannelName()
		cm, ok := channelMap[name]
		if !ok {
			cm = &ChannelMetrics{Channel: name}
			channelMap[name] = cm
		}
		cm.EntryCount++
		cm.Minutes += e.Minutes()
		cm.Revenue += e.Revenue()
		if e.Billable {
			cm.BillableMinutes += e.Minutes()
		}
	}

	channels := make([]ChannelMetrics, 0, len(channelMap))
	for _, cm := range channelMap {
		cm.BillableRate = percent(float64(cm.BillableMinutes), float64(cm.Minutes))
		cm.Efficiency = perHour(cm.Revenue, cm.BillableMinutes)
		channels = append(channels, *cm)
	}

	sort.Slice(channels, func(i, j int) bool {
		if channels[i].Revenue != channels[j].Revenue {
			return channels[i].Revenue > channels[j].Revenue
		}
		if channels[i].Minutes != channels[j].Minutes {
			return channels[i].Minutes > channels[j].Minutes
		}
		return channels[i].Channel < channels[j].Channel
	})
	return channels
}

func calculateCategories(entries []entry.Entry) []CategoryMetrics {
	categoryMap := make(map[string]*CategoryMetrics)
	for _, e := range entries {
		name := e.Category
		if name == "" {
			name = "(uncategorized)"
		}
		cm, ok := categoryMap[name]
		if !ok {
			cm = &CategoryMetrics{Category: name}
			categoryMap[name] = cm
		}
		cm.Minutes += e.Minutes()
		cm.Revenue += e.Revenue()
	}

	categories := make([]CategoryMetrics, 0, len(categoryMap))
	for _, cm := range categoryMap {
		categories = append(categories, *cm)
	}
	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Minutes != categories[j].Minutes {
			return categories[i].Minutes > categories[j].Minutes
		}
		return categories[i].Category < categories[j].Category
	})
	return categories
}

func calculateClients(entries []entry.Entry, clients []entry.Client, now time.Time) []ClientMetrics {
	clientMap := make(map[string]*ClientMetrics)
	for _, c := range clients {
		clientMap[c.ID] = &ClientMetrics{ClientID: c.ID, Name: c.Name, DaysSinceActivity: -1}
	}

	for _, e := range entries {
		if e.ClientID == "" {
			continue
		}
		cm, ok := clientMap[e.ClientID]
		if !ok {
			cm = &ClientMetrics{ClientID: e.ClientID, Name: e.ClientID, DaysSinceActivity: -1}
			clientMap[e.ClientID] = cm
		}
		cm.EntryCount++
		cm.Minutes += e.Minutes()
		cm.Revenue += e.Revenue()
		if e.Billable {
			cm.BillableMinutes += e.Minutes()
		}
		if e.StartTime.After(cm.LastActivity) {
			cm.LastActivity = e.StartTime
		}
	}

	out := make([]ClientMetrics, 0, len(clientMap))
	for _, cm := range clientMap {
		if !cm.LastActivity.IsZero() {
			cm.DaysSinceActivity = max(0, timeutil.DaysAgo(cm.LastActivity, now))
		}
		out = append(out, *cm)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Revenue != out[j].Revenue {
			return out[i].Revenue > out[j].Revenue
		}
		if out[i].Minutes != out[j].Minutes {
			return out[i].Minutes > out[j].Minutes
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out
}

func calculateProjects(entries []entry.Entry, projects []entry.Project, now time.Time) []ProjectMetrics {
	type usage struct {
		minutes int
		revenue float64
	}
	used := make(map[string]*usage)
	for _, e := range entries {
		if e.ProjectID == "" {
			continue
		}
		u, ok := used[e.ProjectID]
		if !ok {
			u = &usage{}
			used[e.ProjectID] = u
		}
		u.minutes += e.Minutes()
		u.revenue += e.Revenue()
	}

	out := make([]ProjectMetrics, 0, len(projects))
	for _, p := range projects {
		pm := ProjectMetrics{
			ProjectID: p.ID,
			Name:      p.Name,
			ClientID:  p.ClientID,
			Status:    p.Status,
		}
		if u, ok := used[p.ID]; ok {
			pm.Hours = float64(u.minutes) / 60
			pm.Revenue = u.revenue
		}
		if p.Budget != nil && *p.Budget > 0 {
			pm.Budget = *p.Budget
			pm.BudgetUsedPercent = pm.Revenue / pm.Budget * 100
		}
		if p.EstimatedHours != nil && *p.EstimatedHours > 0 {
			pm.EstimatedHours = *p.EstimatedHours
			pm.HoursUsedPercent = pm.Hours / pm.EstimatedHours * 100
		}
		if p.Deadline != nil {
			days := int(math.Ceil(p.Deadline.Sub(now).Hours() / 24))
			pm.DaysToDeadline = &days
		}
		out = append(out, pm)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].ProjectID < out[j].ProjectID
	})
	return out
}

// calculateUnderutilized flags retainer clients that used less than
// RetainerUsageThreshold percent of their retainer hours in the window.
func calculateUnderutilized(entries []entry.Entry, clients []entry.Client) []RetainerUsage {
	type usage struct {
		minutes int
		revenue float64
	}
	used := make(map[string]*usage)
	for _, e := range entries {
		if e.ClientID == "" {
			continue
		}
		u, ok := used[e.ClientID]
		if !ok {
			u = &usage{}
			used[e.ClientID] = u
		}
		u.minutes += e.Minutes()
		u.revenue += e.Revenue()
	}

	out := []RetainerUsage{}
	for _, c := range clients {
		if !c.HasRetainer() {
			continue
		}
		retainer := *c.RetainerHours
		var hoursUsed, observedRate float64
		if u, ok := used[c.ID]; ok {
			hoursUsed = float64(u.minutes) / 60
			observedRate = perHour(u.revenue, u.minutes)
		}

		usagePercent := hoursUsed / retainer * 100
		if usagePercent >= RetainerUsageThreshold {
			continue
		}

		rate := observedRate
		switch {
		case c.HourlyRate != nil && *c.HourlyRate > 0:
			rate = *c.HourlyRate
		case c.RetainerAmount != nil && *c.RetainerAmount > 0:
			rate = *c.RetainerAmount / retainer
		}

		unused := retainer - hoursUsed
		out = append(out, RetainerUsage{
			ClientID:      c.ID,
			Name:          c.Name,
			RetainerHours: retainer,
			HoursUsed:     hoursUsed,
			UsagePercent:  usagePercent,
			UnusedHours:   unused,
			HourlyRate:    rate,
			UnusedValue:   unused * rate,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].UnusedValue != out[j].UnusedValue {
			return out[i].UnusedValue > out[j].UnusedValue
		}
		return out[i].ClientID < out[j].ClientID
	})
	return out
}

func calculateConcentration(clients []ClientMetrics, totalRevenue float64) (float64, string) {
	if totalRevenue <= 0 || len(clients) == 0 {
		return 0, ""
	}
	// clients are sorted by revenue descending
	top := clients[0]
	if top.Revenue <= 0 {
		return 0, ""
	}
	return clamp(top.Revenue/totalRevenue*100, 0, 100), top.Name
}

// calculateTrend splits entries into the last 7 days and the 7 days before
// that, measured in whole days back from now.
func calculateTrend(entries []entry.Entry, now time.Time) Trend {
	var t Trend
	var curBillable, prevBillable int
	for _, e := range entries {
		switch daysAgo := timeutil.DaysAgo(e.StartTime, now); {
		case daysAgo >= 0 && daysAgo < 7:
			t.CurrentMinutes += e.Minutes()
			t.CurrentRevenue += e.Revenue()
			if e.Billable {
				curBillable += e.Minutes()
			}
		case daysAgo >= 7 && daysAgo < 14:
			t.PreviousMinutes += e.Minutes()
			t.PreviousRevenue += e.Revenue()
			if e.Billable {
				prevBillable += e.Minutes()
			}
		}
	}

	t.CurrentBillableRate = percent(float64(curBillable), float64(t.CurrentMinutes))
	t.PreviousBillableRate = percent(float64(prevBillable), float64(t.PreviousMinutes))
	t.MinutesChange = percentChange(float64(t.CurrentMinutes), float64(t.PreviousMinutes))
	t.RevenueChange = percentChange(t.CurrentRevenue, t.PreviousRevenue)

	switch {
	case t.RevenueChange > TrendThreshold:
		t.Direction = TrendUp
	case t.RevenueChange < -TrendThreshold:
		t.Direction = TrendDown
	default:
		t.Direction = TrendStable
	}
	return t
}

func calculateWeeks(entries []entry.Entry, now time.Time) []WeekPoint {
	weeks := make([]WeekPoint, TrendWeeks)
	for i := range weeks {
		weeks[i].WeeksAgo = i
	}
	deepest := -1
	for _, e := range entries {
		daysAgo := timeutil.DaysAgo(e.StartTime, now)
		if daysAgo < 0 {
			continue
		}
		w := daysAgo / 7
		if w >= TrendWeeks {
			continue
		}
		weeks[w].Minutes += e.Minutes()
		weeks[w].Revenue += e.Revenue()
		if w > deepest {
			deepest = w
		}
	}
	return weeks[:deepest+1]
}

// inWindow reports whether t falls in [start, end]; a zero bound is open
func inWindow(t, start, end time.Time) bool {
	if start.IsZero() {
		start = t
	}
	if end.IsZero() {
		end = t
	}
	return timeutil.IsInRange(t, start, end)
}

func calculateCorrelations(entries []entry.Entry, days []DayPoint, loc *time.Location) Correlations {
	var durations, revenues, hours, rates []float64
	for _, e := range entries {
		durations = append(durations, float64(e.Minutes()))
		revenues = append(revenues, e.Revenue())
		if e.Billable && e.Minutes() > 0 {
			hours = append(hours, float64(e.StartTime.In(loc).Hour()))
			rates = append(rates, perHour(e.Revenue(), e.Minutes()))
		}
	}

	dailyMinutes := make([]float64, len(days))
	dailyRevenue := make([]float64, len(days))
	for i, d := range days {
		dailyMinutes[i] = float64(d.Minutes)
		dailyRevenue[i] = d.Revenue
	}

	return Correlations{
		DurationRevenue:     Pearson(durations, revenues),
		HourRate:            Pearson(hours, rates),
		DailyMinutesRevenue: Pearson(dailyMinutes, dailyRevenue),
	}
}

// Pearson returns the correlation coefficient of xs and ys.
// It returns 0 for fewer than two pairs, mismatched lengths or zero variance.
func Pearson(xs, ys []float64) float64 {
	n := len(xs)
	if n < 2 || n != len(ys) {
		return 0
	}
	var sumX, sumY float64
	for i := range xs {
		sumX += xs[i]
		sumY += ys[i]
	}
	meanX, meanY := sumX/float64(n), sumY/float64(n)

	var cov, varX, varY float64
	for i := range xs {
		dx, dy := xs[i]-meanX, ys[i]-meanY
		cov += dx * dy
		varX += dx * dx
		varY += dy * dy
	}
	if varX == 0 || varY == 0 {
		return 0
	}
	return clamp(cov/math.Sqrt(varX*varY), -1, 1)
}

func sortedDays(days map[string]*DayPoint) []DayPoint {
	out := make([]DayPoint, 0, len(days))
	for _, d := range days {
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// peakIndex returns the bucket with the most minutes, -1 when all are empty
func peakIndex(buckets []Bucket) int {
	peak, best := -1, 0
	for i, b := range buckets {
		if b.Minutes > best {
			peak, best = i, b.Minutes
		}
	}
	return peak
}

func percent(part, whole float64) float64 {
	if whole <= 0 {
		return 0
	}
	return clamp(part/whole*100, 0, 100)
}

func percentChange(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// perHour returns amount per hour of the given minutes, 0 when minutes is 0
func perHour(amount float64, minutes int) float64 {
	if minutes <= 0 || amount <= 0 {
		return 0
	}
	return amount / (float64(minutes) / 60)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
