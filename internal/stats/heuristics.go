package stats

import (
	"fmt"

	"github.com/xolan/tally/internal/entry"
)

// Thresholds used by the rule-based challenge and opportunity detectors
const (
	LowBillableRate         = 70.0
	HighClientConcentration = 50.0
	LowUtilization          = 60.0
	IdleClientDays          = 30
	BudgetWarningPercent    = 90.0
	DeadlineWarningDays     = 7
	EfficiencyPremium       = 1.2
	UnbilledChannelShare    = 10.0
)

func detectChallenges(b MetricBundle) []string {
	out := []string{}

	if b.TotalMinutes > 0 && b.BillableRate < LowBillableRate {
		out = append(out, fmt.Sprintf("Billable rate is %.1f%%, below the %.0f%% target", b.BillableRate, LowBillableRate))
	}
	if b.ClientConcentration > HighClientConcentration {
		out = append(out, fmt.Sprintf("%s accounts for %.1f%% of revenue", b.TopClient, b.ClientConcentration))
	}
	if b.Utilization < LowUtilization {
		out = append(out, fmt.Sprintf("Utilization is %.1f%% of the %.1f hour daily target", b.Utilization, b.TargetDailyHours))
	}
	if b.Trend.Direction == TrendDown {
		out = append(out, fmt.Sprintf("Revenue down %.1f%% week over week", -b.Trend.RevenueChange))
	}
	for _, r := range b.Underutilized {
		out = append(out, fmt.Sprintf("Retainer for %s is %.1f%% used with %.1f hours remaining", r.Name, r.UsagePercent, r.UnusedHours))
	}
	for _, c := range b.Clients {
		if c.DaysSinceActivity >= IdleClientDays {
			out = append(out, fmt.Sprintf("No activity for %s in %d days", c.Name, c.DaysSinceActivity))
		}
	}
	for _, p := range b.Projects {
		if !projectOpen(p.Status) {
			continue
		}
		if p.BudgetUsedPercent >= BudgetWarningPercent {
			out = append(out, fmt.Sprintf("Project %s has used %.1f%% of its budget", p.Name, p.BudgetUsedPercent))
		}
		if p.DaysToDeadline != nil && *p.DaysToDeadline <= DeadlineWarningDays {
			if *p.DaysToDeadline < 0 {
				out = append(out, fmt.Sprintf("Project %s is %d days past its deadline", p.Name, -*p.DaysToDeadline))
			} else {
				out = append(out, fmt.Sprintf("Project %s is due in %d days", p.Name, *p.DaysToDeadline))
			}
		}
	}
	return out
}

func detectOpportunities(b MetricBundle) []string {
	out := []string{}

	if best, ok := mostEfficientChannel(b.Channels); ok && b.AverageHourlyRate > 0 &&
		best.Efficiency > b.AverageHourlyRate*EfficiencyPremium {
		out = append(out, fmt.Sprintf("Channel %s earns %.2f per hour against a %.2f average", best.Channel, best.Efficiency, b.AverageHourlyRate))
	}
	if b.Trend.Direction == TrendUp {
		out = append(out, fmt.Sprintf("Revenue up %.1f%% week over week", b.Trend.RevenueChange))
	}
	for _, r := range b.Underutilized {
		if r.UnusedValue > 0 {
			out = append(out, fmt.Sprintf("%s has %.1f unused retainer hours worth %.2f", r.Name, r.UnusedHours, r.UnusedValue))
		}
	}
	for _, c := range b.Channels {
		if c.BillableMinutes == 0 && percent(float64(c.Minutes), float64(b.TotalMinutes)) >= UnbilledChannelShare {
			out = append(out, fmt.Sprintf("%.1f hours on channel %s are unbilled", float64(c.Minutes)/60, c.Channel))
		}
	}
	if b.PeakHour >= 0 {
		out = append(out, fmt.Sprintf("Most time is logged around %02d:00", b.PeakHour))
	}
	if b.Utilization > 0 && b.Utilization < 100 {
		gap := b.TargetDailyHours - b.AverageDailyBillableHours
		out = append(out, fmt.Sprintf("Room for %.1f more billable hours per active day", gap))
	}
	return out
}

func mostEfficientChannel(channels []ChannelMetrics) (ChannelMetrics, bool) {
	var best ChannelMetrics
	found := false
	for _, c := range channels {
		if c.Efficiency > best.Efficiency {
			best, found = c, true
		}
	}
	return best, found
}

func projectOpen(s entry.ProjectStatus) bool {
	return s == "" || entry.Project{Status: s}.IsOpen()
}
