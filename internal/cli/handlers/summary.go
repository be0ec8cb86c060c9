package handlers

import (
	"context"
	"fmt"

	"github.com/xolan/tally/internal/analysis"
	"github.com/xolan/tally/internal/cli"
)

// Output formats accepted by ShowWeeklySummary
const (
	FormatMarkdown = "markdown"
	FormatHTML     = "html"
)

// ShowWeeklySummary prints the weekly summary as markdown or rendered HTML
func ShowWeeklySummary(ctx context.Context, deps *cli.Deps, userID, scopeID, format string) {
	switch format {
	case "", FormatMarkdown, FormatHTML:
	default:
		deps.Fail(fmt.Sprintf("Invalid format '%s'", format), nil, "Use --format markdown or --format html")
		return
	}

	summary := deps.Services.Insights.GenerateWeeklySummary(ctx, userID, scopeID)
	if format != FormatHTML {
		_, _ = fmt.Fprintln(deps.Stdout, summary)
		return
	}

	html, err := analysis.SummaryHTML(summary)
	if err != nil {
		deps.Fail("Failed to render summary", err)
		return
	}
	_, _ = fmt.Fprint(deps.Stdout, html)
}
