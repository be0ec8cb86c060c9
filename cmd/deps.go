package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/xolan/tally/internal/config"
	"github.com/xolan/tally/internal/service"
)

// Deps holds external dependencies for CLI commands, enabling testability.
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Exit   func(code int)

	// ConfigPath resolves the config file when --config is not given
	ConfigPath  func() (string, error)
	// NewServices opens the store and generator for a loaded config
	NewServices func(ctx context.Context, configPath string, cfg config.Config, logger *slog.Logger) (*service.Services, error)
}

// DefaultDeps returns the default production dependencies.
func DefaultDeps() *Deps {
	return &Deps{
		Stdout:      os.Stdout,
		Stderr:      os.Stderr,
		Stdin:       os.Stdin,
		Exit:        os.Exit,
		ConfigPath:  config.GetConfigPath,
		NewServices: service.NewServices,
	}
}

// deps is the global dependencies instance used by commands.
// In production, this is DefaultDeps(). Tests can replace it.
var deps = DefaultDeps()

// SetDeps sets the global dependencies (for testing).
func SetDeps(d *Deps) {
	deps = d
}

// ResetDeps resets dependencies to defaults (for testing cleanup).
func ResetDeps() {
	deps = DefaultDeps()
}
