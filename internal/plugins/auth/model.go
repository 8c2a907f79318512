// Package auth handles the sign-in and registration forms, logout, and the
// route guard for protected pages. Credentials are never checked here: the
// forms validate shape, forward to the backend, and keep the returned token
// in the browser's local store.
//
// This is a CORE plugin -- always enabled, cannot be disabled.
package auth

import "time"

// Redirect delays after a successful submission.
const (
	RegisterRedirectDelay = 1500 * time.Millisecond
	LoginRedirectDelay    = 1000 * time.Millisecond
)

// User-facing messages.
const (
	msgRequiredFields   = "Please fill in all required fields"
	msgNameRequired     = "Please enter your name"
	msgPasswordTooShort = "Password must be at least 6 characters long"
	msgPasswordMismatch = "Passwords do not match"
	msgInvalidEmail     = "Please enter a valid email address"

	msgSignupSuccess = "Account created successfully! Redirecting to login..."
	msgSignupFailed  = "Signup failed"
	msgLoginSuccess  = "Login successful! Redirecting to dashboard..."
	msgLoginFailed   = "Invalid email or password"
	msgNetworkError  = "Network error. Please try again."
	msgBusy          = "Your previous request is still being processed."
)

// minPasswordLength applies to registration only; login accepts whatever
// the backend accepts.
const minPasswordLength = 6

// --- Request DTOs (bound from HTTP requests) ---

// RegisterRequest holds the data submitted by the registration form.
type RegisterRequest struct {
	Name     string `form:"name"`
	Email    string `form:"email"`
	Password string `form:"password"`
	Confirm  string `form:"confirm_password"`
}

// LoginRequest holds the data submitted by the login form.
type LoginRequest struct {
	Email    string `form:"email"`
	Password string `form:"password"`
}

// --- Service Input DTOs (passed from handler to service) ---

// RegisterInput is the input for creating a new account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Confirm  string
}

// LoginInput is the input for signing in.
type LoginInput struct {
	Email    string
	Password string
}
