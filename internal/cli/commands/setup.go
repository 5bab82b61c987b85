// Package commands implements the SQLPad CLI subcommands.
package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpad/internal/cli/config"
	"github.com/leapstack-labs/sqlpad/internal/cli/output"
	"github.com/leapstack-labs/sqlpad/internal/engine"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	DB       *engine.DB
	Renderer *output.Renderer
}

// NewCommandContext creates a CommandContext with an open database.
// Returns the context and a cleanup function that must be called (typically via defer).
func NewCommandContext(cmd *cobra.Command) (*CommandContext, func(), error) {
	cmdCtx := NewCommandContextWithoutEngine(cmd)

	db, err := engine.Open(cmdCtx.Cfg.DatabasePath, cmdCtx.Logger)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open database %s: %w", cmdCtx.Cfg.DatabasePath, err)
	}
	cmdCtx.DB = db

	cleanup := func() {
		_ = db.Close()
	}
	return cmdCtx, cleanup, nil
}

// NewCommandContextWithoutEngine creates a CommandContext without opening
// the database.
func NewCommandContextWithoutEngine(cmd *cobra.Command) *CommandContext {
	cfg := config.GetConfig(cmd.Context())
	logger := config.GetLogger(cmd.Context())
	r := output.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), output.Mode(cfg.OutputFormat))

	return &CommandContext{
		Cfg:      cfg,
		Logger:   logger,
		Renderer: r,
	}
}
