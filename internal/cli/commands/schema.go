package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpad/internal/sqlexec"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [table]",
		Short: "Describe the tables in the practice database",
		Long: `List every user table with its columns and row count.

With a table name, only that table is shown. Tables that cannot be read are
left out rather than failing the whole listing.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			agg := sqlexec.NewAggregator(cmdCtx.DB, cmdCtx.Cfg.SchemaConcurrency, cmdCtx.Logger)
			summary, err := agg.FullSchema(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to read schema: %w", err)
			}

			if len(args) == 1 {
				t, ok := summary[args[0]]
				if !ok {
					return fmt.Errorf("table '%s' not found", args[0])
				}
				summary = sqlexec.SchemaSummary{args[0]: t}
			}
			return cmdCtx.Renderer.RenderSchema(summary)
		},
	}
}
