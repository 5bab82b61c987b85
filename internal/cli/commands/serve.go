package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/sqlpad/internal/ui"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the SQLPad HTTP server",
		Long: `Start the HTTP API for the practice database.

Endpoints:
  POST /login             start a session ({name, email})
  GET  /user              report the current session
  POST /logout            end the session
  POST /api/execute-sql   run one statement ({query})
  GET  /api/schema        describe every table

The server stops gracefully on SIGINT or SIGTERM.`,
		Example: `  # Serve practice.db on port 3000
  sqlpad serve

  # Serve another database on another port
  sqlpad serve --database lessons.db --port 8080`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd)
		},
	}

	cmd.Flags().Int("port", 0, "Port to serve on (default: 3000)")

	return cmd
}

func runServe(cmd *cobra.Command) error {
	cmdCtx, cleanup, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	cfg := cmdCtx.Cfg
	server := ui.NewServer(ui.Config{
		Engine:            cmdCtx.DB,
		Port:              cfg.Port,
		SessionSecret:     cfg.SessionSecret,
		SessionMaxAge:     cfg.SessionMaxAge,
		CookieName:        cfg.CookieName,
		SchemaConcurrency: cfg.SchemaConcurrency,
		Logger:            cmdCtx.Logger,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmdCtx.Renderer.Printf("Serving %s on http://localhost:%d\n", cfg.DatabasePath, cfg.Port)
	cmdCtx.Renderer.Println("Press Ctrl+C to stop")

	return server.Serve(ctx)
}
