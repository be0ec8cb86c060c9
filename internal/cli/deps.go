package cli

import (
	"io"
	"log/slog"
	"os"

	"github.com/xolan/tally/internal/config"
	"github.com/xolan/tally/internal/service"
)

// Deps contains all dependencies for CLI operations
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer
	Stdin  io.Reader
	Exit   func(code int)

	// Services
	Services *service.Services

	Config     config.Config
	ConfigPath string
	Logger     *slog.Logger
}

// NewDeps creates a new Deps over services writing to the process streams
func NewDeps(services *service.Services, cfg config.Config, configPath string, logger *slog.Logger) *Deps {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Deps{
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		Stdin:      os.Stdin,
		Exit:       os.Exit,
		Services:   services,
		Config:     cfg,
		ConfigPath: configPath,
		Logger:     logger,
	}
}

// Fail prints an error with optional hints to Stderr and exits with code 1
func (d *Deps) Fail(message string, err error, hints ...string) {
	_, _ = io.WriteString(d.Stderr, "Error: "+message+"\n")
	if err != nil {
		_, _ = io.WriteString(d.Stderr, "Details: "+err.Error()+"\n")
	}
	for _, h := range hints {
		_, _ = io.WriteString(d.Stderr, "Hint: "+h+"\n")
	}
	d.Exit(1)
}
