// Package app is the application bootstrap and dependency injection root.
// It holds the shared infrastructure (Redis client, local store provider,
// backend client, Echo instance) and wires together all plugins.
package app

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/neurocare/neurocare-web/internal/apperror"
	"github.com/neurocare/neurocare-web/internal/backend"
	"github.com/neurocare/neurocare-web/internal/config"
	"github.com/neurocare/neurocare-web/internal/localstore"
	"github.com/neurocare/neurocare-web/internal/middleware"
	"github.com/neurocare/neurocare-web/internal/plugins/chat"
	"github.com/neurocare/neurocare-web/internal/templates/pages"
)

// Deps are the external dependencies main hands to the App.
type Deps struct {
	// Redis backs the local store. Nil when running on the in-memory store.
	Redis *redis.Client

	// Store hands out each browser's local store.
	Store localstore.Provider

	// Backend is the remote auth/data service client.
	Backend backend.Client

	// Completer serves POST /api/chat. Nil disables the relay.
	Completer chat.Completer
}

// App holds all shared dependencies and the Echo HTTP server instance.
// Created once at startup in main.go and used to register all routes.
type App struct {
	// Config holds the loaded application configuration.
	Config *config.Config

	// Redis is the Redis client behind the local store, if any.
	Redis *redis.Client

	// Store is the per-browser local store provider.
	Store localstore.Provider

	// Backend is the remote auth/data service client.
	Backend backend.Client

	// Completer answers the same-origin chat relay.
	Completer chat.Completer

	// Echo is the HTTP server instance.
	Echo *echo.Echo
}

// New creates a new App instance with the given dependencies and configures
// the Echo server with global middleware and error handling.
func New(cfg *config.Config, deps Deps) *App {
	e := echo.New()

	// Disable Echo's default banner and startup message -- we log our own.
	e.HideBanner = true
	e.HidePort = true

	// Resolve the real client IP behind reverse proxies. The rate limiter
	// keys on it.
	if n := middleware.TrustedProxies(e, cfg.TrustedProxies); n == 0 {
		slog.Warn("no trusted proxies configured, forwarding headers are ignored")
	}

	app := &App{
		Config:    cfg,
		Redis:     deps.Redis,
		Store:     deps.Store,
		Backend:   deps.Backend,
		Completer: deps.Completer,
		Echo:      e,
	}

	// Register global middleware in order of execution.
	app.setupMiddleware()

	// Register the custom error handler that maps AppErrors to HTTP responses.
	e.HTTPErrorHandler = app.errorHandler

	// Serve static files (CSS, vendor libs, images).
	e.Static("/static", "static")

	return app
}

// setupMiddleware registers global middleware on the Echo instance.
// Order matters: outermost (recovery) runs first, innermost (local store) runs last.
func (a *App) setupMiddleware() {
	// Panic recovery -- must be outermost to catch panics from all other middleware.
	a.Echo.Use(middleware.Recovery(localstore.BrowserID))

	// Request logging -- log every request with method, path, status, latency.
	a.Echo.Use(middleware.RequestLogger(middleware.LoggerConfig{
		QuietPrefixes: []string{"/static/", "/healthz"},
		Browser:       localstore.BrowserID,
	}))

	// Security headers -- CSP, X-Frame-Options, X-Content-Type-Options, etc.
	a.Echo.Use(middleware.SecurityHeaders())

	// CORS -- only the public site origin may call /api/chat from a browser.
	a.Echo.Use(middleware.CORS(middleware.CORSConfig{
		AllowedOrigins:   []string{a.Config.BaseURL},
		AllowCredentials: true,
	}))

	// CSRF -- double-submit cookie pattern on all state-changing form posts.
	a.Echo.Use(middleware.CSRF(middleware.CSRFConfig{ExemptPrefixes: []string{"/api/"}}))

	// Local store -- resolve the browser ID cookie and attach its store.
	// Machine endpoints never get one.
	a.Echo.Use(localstore.Middleware(a.Store, "/api/", "/healthz", "/static/"))
}

// errorHandler is the custom Echo error handler. It maps domain errors
// (AppError) to appropriate HTTP responses, and renders error pages for
// browser requests or JSON for API requests.
//
// For HTMX partial requests that hit errors, we set HX-Retarget and
// HX-Reswap headers so the error page replaces the full body instead of
// being swapped into a partial target.
//
// For 401 errors on browser requests, we redirect to the login page.
func (a *App) errorHandler(err error, c echo.Context) {
	// Don't double-write if response is already committed.
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	message := defaultErrorMessage(code)

	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		code = appErr.Code
		message = appErr.Message
		if appErr.RetryAfter > 0 {
			c.Response().Header().Set("Retry-After", strconv.Itoa(int(appErr.RetryAfter.Seconds())+1))
		}

		// Log the underlying cause of internal and upstream failures.
		if appErr.Internal != nil {
			slog.Error("request failed",
				slog.String("type", appErr.Type),
				slog.String("message", appErr.Message),
				slog.Any("internal", appErr.Internal),
				slog.String("path", c.Request().URL.Path),
			)
		}
	} else {
		// Echo's built-in HTTP errors (e.g., 404 from router).
		var echoErr *echo.HTTPError
		if errors.As(err, &echoErr) {
			code = echoErr.Code
			if msg, ok := echoErr.Message.(string); ok && code != http.StatusNotFound {
				message = msg
			} else {
				message = defaultErrorMessage(code)
			}
		} else {
			slog.Error("unhandled error",
				slog.Any("error", err),
				slog.String("path", c.Request().URL.Path),
			)
		}
	}

	// API requests always get JSON.
	if isAPIRequest(c) {
		_ = c.JSON(code, map[string]string{
			"error":   http.StatusText(code),
			"message": message,
		})
		return
	}

	if isHTMXRequest(c) {
		switch code {
		case http.StatusUnauthorized:
			c.Response().Header().Set("HX-Redirect", "/login")
			_ = c.NoContent(http.StatusNoContent)
			return
		case http.StatusUnprocessableEntity, http.StatusConflict, http.StatusTooManyRequests:
			// Shown in place of the form's swap target.
			_ = c.HTML(code, fmt.Sprintf(`<div class="alert alert-error" role="alert">%s</div>`, templ.EscapeString(message)))
			return
		default:
			// The full error page replaces the whole body.
			c.Response().Header().Set("HX-Retarget", "body")
			c.Response().Header().Set("HX-Reswap", "innerHTML")
		}
	}

	if code == http.StatusUnauthorized {
		_ = c.Redirect(http.StatusSeeOther, "/login")
		return
	}

	if err := middleware.Render(c, code, pages.ErrorPage(code, message)); err != nil {
		slog.Error("rendering error page", slog.Any("error", err))
	}
}

// defaultErrorMessage returns a user-friendly message for common HTTP status codes
// when no specific message was provided by the error.
func defaultErrorMessage(code int) string {
	switch code {
	case http.StatusBadRequest:
		return "The request was invalid or cannot be processed."
	case http.StatusUnauthorized:
		return "You need to log in to access this page."
	case http.StatusForbidden:
		return "You don't have permission to access this resource."
	case http.StatusNotFound:
		return "The page you're looking for doesn't exist or has been moved."
	case http.StatusMethodNotAllowed:
		return "This action is not allowed."
	case http.StatusTooManyRequests:
		return "You're making too many requests. Please slow down."
	case http.StatusBadGateway:
		return "The server received an invalid response."
	case http.StatusServiceUnavailable:
		return "The service is temporarily unavailable. Please try again later."
	default:
		return "Something went wrong on our end. Please try again."
	}
}

// isAPIRequest returns true if the request is targeting the API (JSON response expected).
func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}

// isHTMXRequest returns true if the request was initiated by HTMX.
func isHTMXRequest(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true"
}

// Start begins listening for HTTP requests on the configured port.
func (a *App) Start() error {
	addr := fmt.Sprintf(":%d", a.Config.Port)
	slog.Info("starting NeuroCare server",
		slog.String("addr", addr),
		slog.String("env", a.Config.Env),
		slog.String("backend", a.Config.Backend.URL),
		slog.Bool("chat_relay", a.Completer != nil),
	)
	return a.Echo.Start(addr)
}
