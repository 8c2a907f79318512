package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// --- Request DTOs ---

// SignupRequest is the body of POST /api/auth/signup.
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ChatRequest is the body of POST /api/chat.
type ChatRequest struct {
	Message string `json:"message"`
}

// --- Response DTOs ---

// LoginResponse is the success body of POST /api/auth/login. The backend
// may omit the user object entirely.
type LoginResponse struct {
	Token string     `json:"token"`
	User  *LoginUser `json:"user,omitempty"`
}

// LoginUser is the optional identity returned alongside a login token.
type LoginUser struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// CurrentUser is the success body of GET /api/auth/current-user. Every
// field is optional; RegisteredAt is kept as the raw string the backend sent.
type CurrentUser struct {
	Name         string `json:"name,omitempty"`
	Username     string `json:"username,omitempty"`
	Email        string `json:"email,omitempty"`
	RegisteredAt string `json:"registeredAt,omitempty"`
}

// --- Errors ---

// StatusError is returned for any non-2xx backend response.
type StatusError struct {
	// Status is the HTTP status code.
	Status int

	// Body is the raw response body.
	Body string

	// Message is the server-provided "message" field, when the endpoint has one.
	Message string
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("backend returned %d %s", e.Status, http.StatusText(e.Status))
}

// IsAuthFailure reports whether err is a 401 or 403 from the backend.
func IsAuthFailure(err error) bool {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return false
	}
	return statusErr.Status == http.StatusUnauthorized || statusErr.Status == http.StatusForbidden
}

// AsStatusError unwraps err into a *StatusError, or returns nil when err is
// a transport failure.
func AsStatusError(err error) *StatusError {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr
	}
	return nil
}
