package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xolan/tally/internal/cli/handlers"
)

// validateCmd represents the validate command
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check data file health",
	Long:  `Validate the JSONL data files and report on their health status, including any corrupted lines.`,
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		d, closeFn, ok := openServices(commandContext(cmd))
		if !ok {
			return
		}
		defer closeFn()
		handlers.ValidateStore(d)
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}
