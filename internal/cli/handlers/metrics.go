package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/xolan/tally/internal/cli"
)

// ShowMetrics prints the aggregated metrics for the last days days
func ShowMetrics(ctx context.Context, deps *cli.Deps, userID, scopeID string, days int, asJSON bool) {
	result, err := deps.Services.Stats.ForWindow(ctx, userID, scopeID, days)
	if err != nil {
		deps.Fail("Failed to compute metrics", err, "Run 'tally validate' to check your data files")
		return
	}

	if asJSON {
		data, err := sonic.MarshalIndent(result.Bundle, "", "  ")
		if err != nil {
			deps.Fail("Failed to encode metrics", err)
			return
		}
		_, _ = fmt.Fprintln(deps.Stdout, string(data))
		return
	}

	b := result.Bundle
	_, _ = fmt.Fprintf(deps.Stdout, "Metrics for %s (%s to %s)\n", result.Period,
		result.Start.Format("2006-01-02"), result.End.Format("2006-01-02"))
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))

	if b.IsEmpty() {
		_, _ = fmt.Fprintln(deps.Stdout, "No time entries in this period.")
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Entries:          %d over %d active %s\n", b.EntryCount, b.ActiveDays, cli.Pluralize("day", b.ActiveDays))
	_, _ = fmt.Fprintf(deps.Stdout, "Total time:       %s\n", cli.FormatHours(b.TotalMinutes))
	_, _ = fmt.Fprintf(deps.Stdout, "Billable time:    %s (%s)\n", cli.FormatHours(b.BillableMinutes), cli.FormatPercent(b.BillableRate))
	_, _ = fmt.Fprintf(deps.Stdout, "Revenue:          %s\n", cli.FormatMoney(b.TotalRevenue))
	_, _ = fmt.Fprintf(deps.Stdout, "Hourly rate:      %s\n", cli.FormatMoney(b.AverageHourlyRate))
	_, _ = fmt.Fprintf(deps.Stdout, "Utilization:      %s of %.1fh/day\n", cli.FormatPercent(b.Utilization), b.TargetDailyHours)

	if len(b.Clients) > 0 {
		_, _ = fmt.Fprintln(deps.Stdout)
		_, _ = fmt.Fprintln(deps.Stdout, "By client:")
		for _, c := range b.Clients {
			_, _ = fmt.Fprintf(deps.Stdout, "  %-24s %8s %10s\n", cli.Truncate(c.Name, 24), cli.FormatHours(c.Minutes), cli.FormatMoney(c.Revenue))
		}
	}

	writeSection(deps, "Challenges:", b.Challenges)
	writeSection(deps, "Opportunities:", b.Opportunities)
}

func writeSection(deps *cli.Deps, heading string, lines []string) {
	if len(lines) == 0 {
		return
	}
	_, _ = fmt.Fprintln(deps.Stdout)
	_, _ = fmt.Fprintln(deps.Stdout, heading)
	for _, l := range lines {
		_, _ = fmt.Fprintf(deps.Stdout, "  - %s\n", l)
	}
}
