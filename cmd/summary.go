package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/tally/internal/cli/handlers"
)

// summaryCmd represents the summary command
var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Generate the weekly summary",
	Long: `Generate a narrative summary of the last 7 days, compared with the 7 before.

The summary is printed as markdown. Use --format html to render it.

Examples:
  tally summary -u u1 -s s1
  tally summary -u u1 -s s1 --format html > week.html`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")
		runSummary(commandContext(cmd), format)
	},
}

func init() {
	rootCmd.AddCommand(summaryCmd)
	summaryCmd.Flags().String("format", handlers.FormatMarkdown, "Output format: markdown or html")
}

func runSummary(ctx context.Context, format string) {
	userID, scopeID, ok := resolveScope()
	if !ok {
		return
	}
	d, closeFn, ok := openServices(ctx)
	if !ok {
		return
	}
	defer closeFn()

	handlers.ShowWeeklySummary(ctx, d, userID, scopeID, format)
}
