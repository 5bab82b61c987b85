package sqlrunner

import (
	"log/slog"

	"github.com/go-chi/chi/v5"

	"github.com/leapstack-labs/sqlpad/internal/sqlexec"
)

// SetupRoutes registers the SQL runner feature routes.
func SetupRoutes(
	router chi.Router,
	eng sqlexec.Engine,
	schemaConcurrency int,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(eng, schemaConcurrency, logger)

	router.Route("/api", func(r chi.Router) {
		r.Post("/execute-sql", handlers.ExecuteSQL)
		r.Get("/schema", handlers.Schema)
	})

	return nil
}
