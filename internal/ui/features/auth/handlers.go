package auth

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/sessions"

	"github.com/leapstack-labs/sqlpad/internal/ui/features/common"
)

// Handlers provides HTTP handlers for the auth feature.
type Handlers struct {
	sessionStore sessions.Store
	cookieName   string
	logger       *slog.Logger
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(sessionStore sessions.Store, cookieName string, logger *slog.Logger) *Handlers {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handlers{
		sessionStore: sessionStore,
		cookieName:   cookieName,
		logger:       logger,
	}
}

// session returns the caller's session. A cookie that cannot be decoded is
// treated as no session at all.
func (h *Handlers) session(r *http.Request) *sessions.Session {
	session, err := h.sessionStore.Get(r, h.cookieName)
	if err != nil {
		h.logger.Debug("ignoring unreadable session cookie", "error", err)
	}
	if session == nil {
		session = sessions.NewSession(h.sessionStore, h.cookieName)
	}
	return session
}

// Login stores the caller's name and email in a session.
func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := common.DecodeJSON(w, r, &req); err != nil {
		h.logger.Debug("rejecting login", "error", err)
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorResponse{Message: "Invalid login data"})
		return
	}
	if req.Name == "" || req.Email == "" {
		common.WriteJSON(w, http.StatusBadRequest, common.ErrorResponse{Message: "Invalid login data"})
		return
	}

	session := h.session(r)
	session.Values[keyName] = req.Name
	session.Values[keyEmail] = req.Email
	if err := h.sessionStore.Save(r, w, session); err != nil {
		h.logger.Error("failed to save session", "error", err)
		common.WriteJSON(w, http.StatusInternalServerError, common.ErrorResponse{Message: "Login failed"})
		return
	}

	h.logger.Info("user logged in", "name", req.Name)
	common.WriteJSON(w, http.StatusOK, LoginResponse{Success: true, Name: req.Name})
}

// User reports whether the caller is logged in. A live session has its
// cookie re-issued so the browser's expiry slides along with the server's.
func (h *Handlers) User(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)

	name, ok := session.Values[keyName].(string)
	if !ok || session.IsNew {
		common.WriteJSON(w, http.StatusOK, UserResponse{LoggedIn: false})
		return
	}

	if err := h.sessionStore.Save(r, w, session); err != nil {
		h.logger.Warn("failed to refresh session cookie", "error", err)
	}
	common.WriteJSON(w, http.StatusOK, UserResponse{LoggedIn: true, Name: name})
}

// Logout destroys the session and clears its cookie.
func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	session := h.session(r)
	if session.Options == nil {
		session.Options = &sessions.Options{Path: "/"}
	}
	session.Options.MaxAge = -1

	if err := h.sessionStore.Save(r, w, session); err != nil {
		h.logger.Error("failed to destroy session", "error", err)
		common.WriteJSON(w, http.StatusInternalServerError, common.ErrorResponse{Message: "Logout failed"})
		return
	}

	common.WriteJSON(w, http.StatusOK, LogoutResponse{Success: true})
}
