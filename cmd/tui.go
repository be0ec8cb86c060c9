package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xolan/tally/internal/tui"
)

// tuiCmd represents the tui command
var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch interactive terminal UI",
	Long: `Launch the interactive Terminal User Interface for tally.

Views available:
  - Insights: Ranked insights with a detail pane
  - Summary: The weekly summary
  - Metrics: Aggregated metrics for a week, month or quarter

Keyboard shortcuts:
  - Tab/Shift+Tab: Navigate between views
  - 1-3: Jump to specific view
  - j/k or arrows: Navigate within lists
  - r: Refresh the current view
  - ?: Show help
  - q: Quit`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		runTUI(cmd)
	},
}

func init() {
	rootCmd.AddCommand(tuiCmd)

	// Add --tui flag to root command for quick access
	rootCmd.PersistentFlags().Bool("tui", false, "Launch interactive terminal UI")
}

// runTUI initializes and runs the TUI application
func runTUI(cmd *cobra.Command) {
	userID, scopeID, ok := resolveScope()
	if !ok {
		return
	}
	d, closeFn, ok := openServices(commandContext(cmd))
	if !ok {
		return
	}
	defer closeFn()

	if err := tui.Run(d.Services, userID, scopeID); err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error running TUI: %v\n", err)
		deps.Exit(1)
	}
}

// CheckTUIFlag checks if the --tui flag is set and runs the TUI if so.
// Returns true if the TUI was launched, false otherwise.
func CheckTUIFlag(cmd *cobra.Command) bool {
	tuiFlag, _ := cmd.Root().PersistentFlags().GetBool("tui")
	if tuiFlag {
		runTUI(cmd)
		return true
	}
	return false
}
