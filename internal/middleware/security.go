package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"
)

// contentSecurityPolicy allows only same-origin scripts (the vendored HTMX
// bundle). Inline styles are permitted for the progress bars; the chat
// relay and HTMX only ever connect back to this origin.
var contentSecurityPolicy = strings.Join([]string{
	"default-src 'self'",
	"script-src 'self'",
	"style-src 'self' 'unsafe-inline'",
	"img-src 'self' data:",
	"font-src 'self'",
	"connect-src 'self'",
	"frame-ancestors 'none'",
	"base-uri 'self'",
	"form-action 'self'",
}, "; ")

// SecurityHeaders returns middleware that sets security-related HTTP headers
// on every response. Pages here show mood notes and chat transcripts, so
// they are also marked uncacheable by shared caches.
func SecurityHeaders() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()

			h.Set("Content-Security-Policy", contentSecurityPolicy)

			// TLS terminates at the reverse proxy; browsers should still
			// stick to HTTPS once they've seen it.
			h.Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")

			h.Set("X-Content-Type-Options", "nosniff")
			h.Set("X-Frame-Options", "DENY")
			h.Set("Referrer-Policy", "strict-origin-when-cross-origin")
			h.Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(), payment=()")

			if !strings.HasPrefix(c.Request().URL.Path, "/static/") {
				h.Set("Cache-Control", "no-store")
			}

			return next(c)
		}
	}
}
