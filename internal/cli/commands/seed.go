package commands

import (
	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpad/internal/seed"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand() *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load the sample practice tables",
		Long: `Create and fill the sample departments and employees tables.

Seeding is tracked, so running it twice does not duplicate rows. Use --reset
to drop the sample tables again.`,
		Example: `  sqlpad seed
  sqlpad seed --reset`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cmdCtx, cleanup, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			r := cmdCtx.Renderer
			if reset {
				if err := seed.Reset(cmd.Context(), cmdCtx.DB.SQL()); err != nil {
					return err
				}
				r.Println(r.Styles().Success.Render("Sample tables removed"))
				return nil
			}

			if err := seed.Apply(cmd.Context(), cmdCtx.DB.SQL()); err != nil {
				return err
			}
			version, err := seed.Version(cmd.Context(), cmdCtx.DB.SQL())
			if err != nil {
				return err
			}
			cmdCtx.Logger.Debug("sample tables applied", "version", version)
			r.Println(r.Styles().Success.Render("Sample tables loaded into " + cmdCtx.Cfg.DatabasePath))
			return nil
		},
	}

	cmd.Flags().BoolVar(&reset, "reset", false, "Remove the sample tables")

	return cmd
}
