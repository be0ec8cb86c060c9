package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/xolan/tally/internal/cli/handlers"
)

// insightsCmd represents the insights command
var insightsCmd = &cobra.Command{
	Use:   "insights",
	Short: "Generate ranked insights for a user scope",
	Long: `Generate ranked insights from the last 90 days of tracked time.

Five analyses run concurrently: predictions, anomalies, recommendations,
patterns and opportunities. Their results are merged, deduplicated and
ranked by priority and confidence.

With no time entries, getting-started insights are shown instead. When the
data store cannot be read, a single fallback insight is returned.

Examples:
  tally insights -u u1 -s s1           Show insights as text
  tally insights -u u1 -s s1 --json    Print the full report as JSON`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		asJSON, _ := cmd.Flags().GetBool("json")
		runInsights(commandContext(cmd), asJSON)
	},
}

func init() {
	rootCmd.AddCommand(insightsCmd)
	insightsCmd.Flags().Bool("json", false, "Print the report as JSON")
}

func runInsights(ctx context.Context, asJSON bool) {
	userID, scopeID, ok := resolveScope()
	if !ok {
		return
	}
	d, closeFn, ok := openServices(ctx)
	if !ok {
		return
	}
	defer closeFn()

	handlers.ShowInsights(ctx, d, userID, scopeID, asJSON)
}
