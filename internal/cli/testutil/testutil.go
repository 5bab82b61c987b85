// Package testutil provides test utilities for CLI testing.
package testutil

import (
	"bytes"
	"context"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpad/internal/cli/config"
	"github.com/leapstack-labs/sqlpad/internal/cli/output"
	"github.com/leapstack-labs/sqlpad/internal/engine"
	"github.com/leapstack-labs/sqlpad/internal/seed"
	logutil "github.com/leapstack-labs/sqlpad/internal/testutil"
)

// SetupTestDatabase creates a database file in a temp directory with the
// sample tables loaded and returns its path.
func SetupTestDatabase(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "practice.db")
	db, err := engine.Open(path, logutil.NewTestLogger(t))
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	if err := seed.Apply(context.Background(), db.SQL()); err != nil {
		t.Fatalf("failed to seed database: %v", err)
	}
	return path
}

// TestConfig returns the default config pointed at dbPath with JSON output.
func TestConfig(dbPath string) *config.Config {
	cfg := config.Default()
	cfg.DatabasePath = dbPath
	cfg.OutputFormat = string(output.ModeJSON)
	return cfg
}

// CommandResult holds what a command wrote.
type CommandResult struct {
	Out    *bytes.Buffer
	ErrOut *bytes.Buffer
	Err    error
}

// RunCommand executes cmd with args the way the root command would, with cfg
// and a test logger already stored in the context.
func RunCommand(t *testing.T, cmd *cobra.Command, cfg *config.Config, args ...string) CommandResult {
	t.Helper()

	ctx := context.WithValue(context.Background(), config.ConfigKey(), cfg)
	ctx = context.WithValue(ctx, config.LoggerKey(), logutil.NewTestLogger(t))

	res := CommandResult{Out: &bytes.Buffer{}, ErrOut: &bytes.Buffer{}}
	cmd.SetOut(res.Out)
	cmd.SetErr(res.ErrOut)
	cmd.SetArgs(args)
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true

	res.Err = cmd.ExecuteContext(ctx)
	return res
}

// ansiPattern matches ANSI escape codes.
var ansiPattern = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

// AssertNoANSI checks that a string contains no ANSI escape codes.
func AssertNoANSI(t *testing.T, s string) {
	t.Helper()
	if ansiPattern.MatchString(s) {
		t.Errorf("string contains ANSI escape codes: %q", s)
	}
}
