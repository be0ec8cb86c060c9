package cmd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xolan/tally/internal/storage"
)

func TestValidateCommand_Healthy(t *testing.T) {
	env := setupTest(t)
	writeEntries(t, env.dataDir, 2)

	validateCmd.Run(validateCmd, nil)

	if *env.exitCode != 0 {
		t.Errorf("expected exit code 0, got %d", *env.exitCode)
	}
	if !strings.Contains(env.stdout.String(), "All data files are valid.") {
		t.Errorf("unexpected stdout: %q", env.stdout.String())
	}
}

func TestValidateCommand_Corrupted(t *testing.T) {
	env := setupTest(t)
	if err := os.WriteFile(filepath.Join(env.dataDir, storage.EntriesFile), []byte("garbage\n"), 0644); err != nil {
		t.Fatal(err)
	}

	validateCmd.Run(validateCmd, nil)

	if *env.exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", *env.exitCode)
	}
	if !strings.Contains(env.stdout.String(), "entries.jsonl line 1: garbage") {
		t.Errorf("unexpected stdout: %q", env.stdout.String())
	}
}

func TestImportCommand_RequiresSQL(t *testing.T) {
	env := setupTest(t)

	importCmd.Run(importCmd, []string{env.dataDir})

	if *env.exitCode != 1 {
		t.Errorf("expected exit code 1, got %d", *env.exitCode)
	}
	if !strings.Contains(env.stderr.String(), "Import requires a SQL store") {
		t.Errorf("unexpected stderr: %q", env.stderr.String())
	}
}

func TestImportCommand_SQLite(t *testing.T) {
	env := setupTest(t)
	writeEntries(t, env.dataDir, 4)
	dbPath := filepath.Join(t.TempDir(), "tally.db")
	content := "[generator]\nprovider = \"disabled\"\n\n[store]\ndriver = \"sqlite3\"\ndsn = \"" + dbPath + "\"\n"
	if err := os.WriteFile(env.config, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	importCmd.Run(importCmd, []string{env.dataDir})

	if *env.exitCode != 0 {
		t.Fatalf("expected exit code 0, got %d: %s", *env.exitCode, env.stderr.String())
	}
	if !strings.Contains(env.stdout.String(), "entries:  4") {
		t.Errorf("unexpected stdout: %q", env.stdout.String())
	}
}
