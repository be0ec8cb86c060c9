package handlers

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/xolan/tally/internal/cli"
	"github.com/xolan/tally/internal/service"
)

// ShowInsights generates and prints the ranked insights for a user scope
func ShowInsights(ctx context.Context, deps *cli.Deps, userID, scopeID string, asJSON bool) {
	report := deps.Services.Insights.Generate(ctx, userID, scopeID)

	if asJSON {
		data, err := sonic.MarshalIndent(report, "", "  ")
		if err != nil {
			deps.Fail("Failed to encode insights", err)
			return
		}
		_, _ = fmt.Fprintln(deps.Stdout, string(data))
		printDegraded(deps, report)
		return
	}

	_, _ = fmt.Fprintf(deps.Stdout, "Insights for %s/%s\n", userID, scopeID)
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))

	if len(report.Insights) == 0 {
		_, _ = fmt.Fprintln(deps.Stdout, "No insights available.")
	}
	for i, in := range report.Insights {
		if i > 0 {
			_, _ = fmt.Fprintln(deps.Stdout)
		}
		_, _ = fmt.Fprint(deps.Stdout, cli.FormatInsight(i+1, in))
	}

	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 50))
	_, _ = fmt.Fprintf(deps.Stdout, "%d %s, generated %s\n",
		len(report.Insights), cli.Pluralize("insight", len(report.Insights)),
		report.GeneratedAt.Format("2006-01-02 15:04"))
	printDegraded(deps, report)
}

func printDegraded(deps *cli.Deps, report *service.Report) {
	if report.State != service.StateDegraded {
		return
	}
	_, _ = fmt.Fprintf(deps.Stderr, "Note: analysis degraded (%s)\n", report.Reason)
}
