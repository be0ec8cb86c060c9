package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/tally/internal/cli/handlers"
)

// metricsCmd represents the metrics command
var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "Show aggregated metrics without calling the generator",
	Long: `Show the metrics the insights pipeline is built on: hours, billable rate,
revenue, utilization, client breakdown and rule-based challenges and
opportunities.

By default the configured window (90 days) is used.

Examples:
  tally metrics -u u1 -s s1 --days 7
  tally metrics -u u1 -s s1 --json`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		days, _ := cmd.Flags().GetInt("days")
		asJSON, _ := cmd.Flags().GetBool("json")
		runMetrics(commandContext(cmd), days, asJSON)
	},
}

func init() {
	rootCmd.AddCommand(metricsCmd)
	metricsCmd.Flags().Int("days", 0, "Number of days to aggregate (default: configured window)")
	metricsCmd.Flags().Bool("json", false, "Print the metric bundle as JSON")
}

func runMetrics(ctx context.Context, days int, asJSON bool) {
	userID, scopeID, ok := resolveScope()
	if !ok {
		return
	}
	d, closeFn, ok := openServices(ctx)
	if !ok {
		return
	}
	defer closeFn()

	handlers.ShowMetrics(ctx, d, userID, scopeID, days, asJSON)
}
