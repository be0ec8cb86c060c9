package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xolan/tally/internal/cli"
	"github.com/xolan/tally/internal/config"
	"github.com/xolan/tally/internal/logging"
)

// Environment variables consulted when --user or --scope is not given
const (
	EnvUserID  = "TALLY_USER_ID"
	EnvScopeID = "TALLY_SCOPE_ID"
)

// globalFlags are the persistent flags shared by every command
type globalFlags struct {
	configPath string
	logLevel   string
	userID     string
	scopeID    string
}

var flags globalFlags

var rootCmd = &cobra.Command{
	Use:   "tally",
	Short: "Insights for time tracking and profitability",
	Long: `tally turns tracked time, clients and projects into ranked, actionable insights.

Usage:
  tally insights                   Generate ranked insights
  tally summary                    Generate the weekly summary
  tally metrics --days 30          Show aggregated metrics
  tally tui                        Launch the interactive terminal UI
  tally serve                      Serve insights over HTTP
  tally validate                   Check data file health
  tally import <dir>               Copy JSONL data into a SQL store
  tally config [init]              Show or create the config file

The user and scope are taken from --user and --scope, or from the
TALLY_USER_ID and TALLY_SCOPE_ID environment variables (a .env file in the
working directory is loaded automatically).`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if err := config.LoadEnv(); err != nil {
			_, _ = fmt.Fprintf(deps.Stderr, "Warning: %v\n", err)
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if CheckTUIFlag(cmd) {
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Path to the config file (default: user config directory)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Override the log level (debug, info, warn, error)")
	pf.StringVarP(&flags.userID, "user", "u", "", "User ID (default: $"+EnvUserID+")")
	pf.StringVarP(&flags.scopeID, "scope", "s", "", "Scope ID (default: $"+EnvScopeID+")")
}

// SetVersionInfo sets the version information for the CLI
func SetVersionInfo(version, commit, date string) {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(
		"tally version {{.Version}}\n" +
			"commit: " + commit + "\n" +
			"built: " + date + "\n",
	)
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig resolves and loads the config file, applying the --log-level override.
// Reports the error and exits when the file cannot be loaded.
func loadConfig() (string, config.Config, bool) {
	path := flags.configPath
	if path == "" {
		p, err := deps.ConfigPath()
		if err != nil {
			_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to determine config file location")
			_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
			_, _ = fmt.Fprintln(deps.Stderr, "Hint: Check that your home directory is accessible, or pass --config")
			deps.Exit(1)
			return "", config.Config{}, false
		}
		path = p
	}

	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to load configuration")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: Check that your config file is valid: %s\n", path)
		deps.Exit(1)
		return "", config.Config{}, false
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
	}
	return path, cfg, true
}

// openServices loads the config and opens every service.
// The returned close func releases the store.
func openServices(ctx context.Context) (*cli.Deps, func(), bool) {
	path, cfg, ok := loadConfig()
	if !ok {
		return nil, nil, false
	}
	logger := logging.New(cfg.Log, deps.Stderr)

	services, err := deps.NewServices(ctx, path, cfg, logger)
	if err != nil {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: Failed to initialize services")
		_, _ = fmt.Fprintf(deps.Stderr, "Details: %v\n", err)
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: Check the [store] and [generator] sections of %s\n", path)
		deps.Exit(1)
		return nil, nil, false
	}

	d := &cli.Deps{
		Stdout:     deps.Stdout,
		Stderr:     deps.Stderr,
		Stdin:      deps.Stdin,
		Exit:       deps.Exit,
		Services:   services,
		Config:     cfg,
		ConfigPath: path,
		Logger:     logger,
	}
	closeFn := func() {
		if err := services.Close(); err != nil {
			logger.Warn("failed to close store", "error", err)
		}
	}
	return d, closeFn, true
}

// resolveScope returns the user and scope from flags or the environment
func resolveScope() (string, string, bool) {
	userID := flags.userID
	if userID == "" {
		userID = os.Getenv(EnvUserID)
	}
	scopeID := flags.scopeID
	if scopeID == "" {
		scopeID = os.Getenv(EnvScopeID)
	}

	if userID == "" || scopeID == "" {
		_, _ = fmt.Fprintln(deps.Stderr, "Error: A user and scope are required")
		_, _ = fmt.Fprintf(deps.Stderr, "Hint: Pass --user and --scope, or set %s and %s\n", EnvUserID, EnvScopeID)
		deps.Exit(1)
		return "", "", false
	}
	return userID, scopeID, true
}

// commandContext returns the command context, or Background outside cobra
func commandContext(cmd *cobra.Command) context.Context {
	if cmd != nil && cmd.Context() != nil {
		return cmd.Context()
	}
	return context.Background()
}
