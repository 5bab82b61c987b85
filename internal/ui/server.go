// Package ui provides the SQLPad HTTP server.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/securecookie"
	"golang.org/x/sync/errgroup"

	"github.com/leapstack-labs/sqlpad/internal/sqlexec"
	"github.com/leapstack-labs/sqlpad/internal/ui/router"
	"github.com/leapstack-labs/sqlpad/internal/ui/sessionstore"
)

// Defaults used when Config leaves a field zero.
const (
	DefaultCookieName    = "sqlpad.sid"
	DefaultSessionMaxAge = time.Hour
	DefaultSweepInterval = time.Minute
)

// Server is the SQLPad HTTP server.
type Server struct {
	engine            sqlexec.Engine
	sessionStore      *sessionstore.MemStore
	port              int
	cookieName        string
	schemaConcurrency int
	sweepInterval     time.Duration
	logger            *slog.Logger
}

// Config holds configuration for the server.
type Config struct {
	Engine            sqlexec.Engine
	Port              int
	SessionSecret     string
	SessionMaxAge     time.Duration
	CookieName        string
	SchemaConcurrency int
	SweepInterval     time.Duration
	Logger            *slog.Logger
}

// NewServer creates a new server instance. Without a session secret a random
// key is generated, so sessions do not survive a restart.
func NewServer(cfg Config) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	secret := []byte(cfg.SessionSecret)
	if len(secret) == 0 {
		logger.Warn("no session secret configured, generating a random one")
		secret = securecookie.GenerateRandomKey(32)
	}

	maxAge := cfg.SessionMaxAge
	if maxAge <= 0 {
		maxAge = DefaultSessionMaxAge
	}
	cookieName := cfg.CookieName
	if cookieName == "" {
		cookieName = DefaultCookieName
	}
	sweep := cfg.SweepInterval
	if sweep <= 0 {
		sweep = DefaultSweepInterval
	}

	return &Server{
		engine:            cfg.Engine,
		sessionStore:      sessionstore.New(maxAge, secret),
		port:              cfg.Port,
		cookieName:        cookieName,
		schemaConcurrency: cfg.SchemaConcurrency,
		sweepInterval:     sweep,
		logger:            logger,
	}
}

// Handler builds the routed handler with its middleware stack.
func (s *Server) Handler() (http.Handler, error) {
	r := chi.NewMux()
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	opts := router.Options{
		CookieName:        s.cookieName,
		SchemaConcurrency: s.schemaConcurrency,
	}
	if err := router.SetupRoutes(r, s.engine, s.sessionStore, opts, s.logger); err != nil {
		return nil, fmt.Errorf("failed to setup routes: %w", err)
	}
	return r, nil
}

// Serve listens on the configured port and blocks until ctx is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	ln, err := net.Listen("tcp", fmt.Sprintf(":%d", s.port))
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}
	return s.ServeListener(ctx, ln)
}

// ServeListener serves on ln until ctx is cancelled, then shuts down
// gracefully. Expired sessions are swept while the server runs.
func (s *Server) ServeListener(ctx context.Context, ln net.Listener) error {
	handler, err := s.Handler()
	if err != nil {
		_ = ln.Close()
		return err
	}

	s.logger.Info("starting server", "addr", "http://"+ln.Addr().String())

	eg, egctx := errgroup.WithContext(ctx)

	srv := &http.Server{
		Handler: handler,
		BaseContext: func(_ net.Listener) context.Context {
			return egctx
		},
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	eg.Go(func() error {
		return s.sessionStore.Cleanup(egctx, s.sweepInterval, s.logger)
	})

	// Graceful shutdown
	eg.Go(func() error {
		<-egctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Debug("shutting down server...")
		return srv.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

// SessionStore returns the server's session store.
func (s *Server) SessionStore() *sessionstore.MemStore {
	return s.sessionStore
}
