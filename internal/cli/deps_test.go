package cli

import (
	"bytes"
	"errors"
	"os"
	"testing"

	"github.com/xolan/tally/internal/config"
)

func TestNewDeps(t *testing.T) {
	deps := NewDeps(nil, config.DefaultConfig(), "/tmp/config.toml", nil)

	if deps.Stdout != os.Stdout {
		t.Error("expected Stdout to be os.Stdout")
	}
	if deps.Stderr != os.Stderr {
		t.Error("expected Stderr to be os.Stderr")
	}
	if deps.Logger == nil {
		t.Error("expected a default logger")
	}
	if deps.ConfigPath != "/tmp/config.toml" {
		t.Errorf("expected config path to be kept, got %q", deps.ConfigPath)
	}
}

func TestFail(t *testing.T) {
	stderr := &bytes.Buffer{}
	exitCode := 0
	deps := &Deps{Stderr: stderr, Exit: func(code int) { exitCode = code }}

	deps.Fail("Failed to load", errors.New("boom"), "Check the file", "Or run init")

	if exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", exitCode)
	}
	expected := "Error: Failed to load\nDetails: boom\nHint: Check the file\nHint: Or run init\n"
	if stderr.String() != expected {
		t.Errorf("expected %q, got %q", expected, stderr.String())
	}
}

func TestFail_NoDetails(t *testing.T) {
	stderr := &bytes.Buffer{}
	deps := &Deps{Stderr: stderr, Exit: func(int) {}}

	deps.Fail("Nothing to do", nil)

	if stderr.String() != "Error: Nothing to do\n" {
		t.Errorf("unexpected output %q", stderr.String())
	}
}
