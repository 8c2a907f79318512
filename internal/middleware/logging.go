// Package middleware provides HTTP middleware for the NeuroCare Echo server.
// Middleware is applied globally (all routes) or per-route group depending
// on the middleware type. See internal/app/app.go for registration.
package middleware

import (
	"log/slog"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
)

// Identify names the browser behind a request for log correlation. It
// returns "" when the browser is not yet known.
type Identify func(echo.Context) string

// LoggerConfig configures RequestLogger.
type LoggerConfig struct {
	// QuietPrefixes are logged at debug level when they succeed: static
	// assets and health checks would otherwise drown the log.
	QuietPrefixes []string

	// Browser, when set, adds a browser_id attribute.
	Browser Identify
}

// RequestLogger logs one line per request: method, path, status, latency,
// client IP, and whether htmx made it. Query strings are never logged; the
// journal and chat forms must not leak into logs through a GET fallback.
func RequestLogger(cfg LoggerConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)

			req := c.Request()
			status := c.Response().Status
			attrs := []slog.Attr{
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.Int("status", status),
				slog.Duration("latency", time.Since(start)),
				slog.String("remote_ip", c.RealIP()),
			}
			if req.Header.Get("HX-Request") == "true" {
				attrs = append(attrs, slog.Bool("htmx", true))
			}
			if cfg.Browser != nil {
				if id := cfg.Browser(c); id != "" {
					attrs = append(attrs, slog.String("browser_id", id))
				}
			}

			slog.LogAttrs(req.Context(), cfg.level(req.URL.Path, status), "request", attrs...)
			return err
		}
	}
}

// level picks the log level from the outcome first, then the path.
func (cfg LoggerConfig) level(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	}
	for _, prefix := range cfg.QuietPrefixes {
		if strings.HasPrefix(path, prefix) {
			return slog.LevelDebug
		}
	}
	return slog.LevelInfo
}
