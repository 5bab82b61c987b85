// Package router sets up HTTP routes for the SQLPad server.
package router

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/sqlpad/internal/sqlexec"
	authFeature "github.com/leapstack-labs/sqlpad/internal/ui/features/auth"
	"github.com/leapstack-labs/sqlpad/internal/ui/features/common"
	sqlrunnerFeature "github.com/leapstack-labs/sqlpad/internal/ui/features/sqlrunner"
)

// Options holds the per-feature settings SetupRoutes passes along.
type Options struct {
	CookieName        string
	SchemaConcurrency int
}

// SetupRoutes configures all routes for the server.
func SetupRoutes(
	router chi.Router,
	eng sqlexec.Engine,
	sessionStore sessions.Store,
	opts Options,
	logger *slog.Logger,
) error {
	router.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		common.WriteJSON(w, http.StatusNotFound, sqlexec.ErrorResult{Message: "Not found"})
	})

	if err := authFeature.SetupRoutes(router, sessionStore, opts.CookieName, logger); err != nil {
		return err
	}

	if err := sqlrunnerFeature.SetupRoutes(router, eng, opts.SchemaConcurrency, logger); err != nil {
		return err
	}

	return nil
}
