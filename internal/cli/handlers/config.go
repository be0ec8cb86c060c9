package handlers

import (
	"fmt"
	"strings"

	"github.com/xolan/tally/internal/cli"
)

// ShowConfig displays the current configuration
func ShowConfig(deps *cli.Deps) {
	cfg := deps.Services.Config.Get()
	path := deps.Services.Config.GetPath()

	_, _ = fmt.Fprintln(deps.Stdout, "Configuration:")
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("=", 50))
	_, _ = fmt.Fprintf(deps.Stdout, "Config file: %s\n", path)
	if deps.Services.Config.Exists() {
		_, _ = fmt.Fprintln(deps.Stdout, "Status: File exists")
	} else {
		_, _ = fmt.Fprintln(deps.Stdout, "Status: Using defaults (no config file)")
	}
	_, _ = fmt.Fprintln(deps.Stdout, strings.Repeat("-", 50))
	_, _ = fmt.Fprintf(deps.Stdout, "timezone:           %s\n", cfg.Timezone)
	_, _ = fmt.Fprintf(deps.Stdout, "window_days:        %d\n", cfg.Insights.WindowDays)
	_, _ = fmt.Fprintf(deps.Stdout, "target_daily_hours: %.1f\n", cfg.Insights.TargetDailyHours)
	_, _ = fmt.Fprintf(deps.Stdout, "max_insights:       %d\n", cfg.Insights.MaxInsights)
	_, _ = fmt.Fprintf(deps.Stdout, "dedupe:             %t\n", cfg.Insights.Dedupe)
	_, _ = fmt.Fprintf(deps.Stdout, "provider:           %s\n", cfg.Generator.Provider)
	_, _ = fmt.Fprintf(deps.Stdout, "model:              %s\n", cfg.Generator.Model)
	_, _ = fmt.Fprintf(deps.Stdout, "store:              %s\n", cfg.Store.Driver)
	if cfg.Generator.Provider != "disabled" {
		status := "missing"
		if cfg.APIKey() != "" {
			status = "set"
		}
		_, _ = fmt.Fprintf(deps.Stdout, "api key (%s): %s\n", cfg.Generator.APIKeyEnv, status)
	}
}

// InitConfig creates a sample config file
func InitConfig(deps *cli.Deps) {
	err := deps.Services.Config.Init()
	if err != nil {
		_, _ = fmt.Fprintf(deps.Stderr, "Error: %v\n", err)
		deps.Exit(1)
		return
	}

	path := deps.Services.Config.GetPath()
	if err := deps.Services.Config.Reload(); err != nil {
		deps.Fail("Created config file does not load", err, "Check "+path+" or remove it and run 'tally config init' again")
		return
	}
	deps.Config = deps.Services.Config.Get()

	_, _ = fmt.Fprintf(deps.Stdout, "Created config file: %s\n", path)
	_, _ = fmt.Fprintln(deps.Stdout, "Edit this file to customize your settings.")
}
