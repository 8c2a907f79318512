// Package apperror provides the error type handlers return to the Echo
// error handler. Each AppError carries an HTTP status and a message that is
// safe to show a visitor; the cause, if any, is kept for logs only.
//
// Backend response bodies, Redis errors and model failures must never reach
// the client unwrapped. Wrap them in NewInternal or NewBadGateway.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// genericMessage is shown for every internal failure.
const genericMessage = "An unexpected error occurred. Please try again."

// AppError is an error with an HTTP status and a client-safe message.
type AppError struct {
	// Code is the HTTP status code.
	Code int `json:"-"`

	// Type is a machine-readable classifier, e.g. "validation_error".
	Type string `json:"type"`

	// Message is safe to render to the visitor.
	Message string `json:"message"`

	// Internal is the cause, for logging. Never exposed.
	Internal error `json:"-"`

	// RetryAfter, when positive, is sent as a Retry-After header.
	RetryAfter time.Duration `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error {
	return e.Internal
}

func newError(code int, typ, message string) *AppError {
	return &AppError{Code: code, Type: typ, Message: message}
}

// NewBadRequest is a 400 for malformed form or JSON bodies.
func NewBadRequest(message string) *AppError {
	return newError(http.StatusBadRequest, "bad_request", message)
}

// NewForbidden is a 403, used for CSRF rejections.
func NewForbidden(message string) *AppError {
	return newError(http.StatusForbidden, "forbidden", message)
}

// NewConflict is a 409 for a chat message sent while a reply is pending.
func NewConflict(message string) *AppError {
	return newError(http.StatusConflict, "conflict", message)
}

// NewValidation is a 422; the message is rendered inline next to the form.
func NewValidation(message string) *AppError {
	return newError(http.StatusUnprocessableEntity, "validation_error", message)
}

// NewRateLimited is a 429 telling the visitor to come back after retryAfter.
func NewRateLimited(retryAfter time.Duration) *AppError {
	e := newError(http.StatusTooManyRequests, "rate_limited",
		"You're sending requests too quickly. Please wait a moment and try again.")
	e.RetryAfter = retryAfter
	return e
}

// NewBadGateway is a 502 for a failing upstream (backend or chat model).
func NewBadGateway(message string, cause error) *AppError {
	e := newError(http.StatusBadGateway, "bad_gateway", message)
	e.Internal = cause
	return e
}

// NewUnavailable is a 503 for features that are not configured.
func NewUnavailable(message string) *AppError {
	return newError(http.StatusServiceUnavailable, "unavailable", message)
}

// NewInternal is a 500 that shows only a generic message.
func NewInternal(cause error) *AppError {
	e := newError(http.StatusInternalServerError, "internal_error", genericMessage)
	e.Internal = cause
	return e
}

// errMissingContext is the cause of NewMissingContext.
var errMissingContext = errors.New("missing required context")

// NewMissingContext is a 500 for handlers whose middleware did not run,
// e.g. no browser store on the context.
func NewMissingContext() *AppError {
	return NewInternal(errMissingContext)
}

// SafeMessage returns the client-safe message of err. Anything that is
// not an AppError gets the generic message.
func SafeMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return genericMessage
}

// SafeCode returns the status of an AppError, or 500.
func SafeCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
