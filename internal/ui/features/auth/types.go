// Package auth provides the login, current-user and logout endpoints.
package auth

// Session value keys.
const (
	keyName  = "name"
	keyEmail = "email"
)

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResponse is returned after a successful login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Name    string `json:"name"`
}

// UserResponse reports whether the caller holds a session.
type UserResponse struct {
	LoggedIn bool   `json:"loggedIn"`
	Name     string `json:"name,omitempty"`
}

// LogoutResponse is returned after the session is destroyed.
type LogoutResponse struct {
	Success bool `json:"success"`
}
