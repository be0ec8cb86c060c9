package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xolan/tally/internal/cli"
	"github.com/xolan/tally/internal/cli/handlers"
	"github.com/xolan/tally/internal/service"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Display or manage configuration settings",
	Long: `Display the current effective configuration settings for tally.

Shows the configuration file location, whether it exists, and the main settings.
Configuration values are merged from the config file with sensible defaults,
so tally works without any configuration file.

Configuration file location:
  ~/.config/tally/config.toml        Linux
  %APPDATA%\tally\config.toml        Windows

Files ending in .yaml or .yml are read as YAML.`,
	Args: cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		d, ok := configDeps()
		if !ok {
			return
		}
		handlers.ShowConfig(d)
	},
}

// configInitCmd represents the config init command
var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample config file",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		d, ok := configDeps()
		if !ok {
			return
		}
		handlers.InitConfig(d)
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

// configDeps builds deps holding only the config service, so config commands
// work even when the store is unreachable
func configDeps() (*cli.Deps, bool) {
	path, cfg, ok := loadConfig()
	if !ok {
		return nil, false
	}
	return &cli.Deps{
		Stdout:     deps.Stdout,
		Stderr:     deps.Stderr,
		Stdin:      deps.Stdin,
		Exit:       deps.Exit,
		Services:   &service.Services{Config: service.NewConfigService(path, cfg)},
		Config:     cfg,
		ConfigPath: path,
	}, true
}
