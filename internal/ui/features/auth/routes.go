package auth

import (
	"log/slog"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/sessions"
)

// SetupRoutes registers the auth feature routes.
func SetupRoutes(
	router chi.Router,
	sessionStore sessions.Store,
	cookieName string,
	logger *slog.Logger,
) error {
	handlers := NewHandlers(sessionStore, cookieName, logger)

	router.Post("/login", handlers.Login)
	router.Get("/user", handlers.User)
	router.Post("/logout", handlers.Logout)

	return nil
}
