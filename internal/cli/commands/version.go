package commands

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// NewVersionCommand creates the version command.
func NewVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  `Display SQLPad version and build information.`,
		Run: func(cmd *cobra.Command, _ []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "SQLPad v%s\n", version)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "SQL practice server built with Go %s and SQLite\n", runtime.Version())
		},
	}
}
