package chat

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/middleware"
)

// RegisterRoutes mounts the chat page behind the session guard and the
// relay as a public, rate-limited API endpoint. Form turns are paced by the
// transcript's busy flag; the relay limit does not count this server's own
// fallback calls.
func RegisterRoutes(e *echo.Echo, h *Handler, guard echo.MiddlewareFunc) {
	g := e.Group("/chatbot", guard)
	g.GET("", h.Show)
	g.POST("/messages", h.Send)

	e.POST("/api/chat", h.Relay, middleware.RateLimit(30, time.Minute, middleware.FromLoopback))
}
