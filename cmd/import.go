package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xolan/tally/internal/cli/handlers"
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <dir>",
	Short: "Copy a JSONL data directory into the SQL store",
	Long: `Read entries.jsonl, clients.jsonl and projects.jsonl from dir and upsert
them into the configured sqlite3 or postgres store. Tables are created when
missing and corrupted lines are skipped with a warning.

Example:
  tally import ~/.config/tally --config sql.toml`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := commandContext(cmd)
		d, closeFn, ok := openServices(ctx)
		if !ok {
			return
		}
		defer closeFn()
		handlers.ImportData(ctx, d, args[0])
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
