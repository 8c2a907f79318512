package moods

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the journal behind the session guard.
func RegisterRoutes(e *echo.Echo, h *Handler, guard echo.MiddlewareFunc) {
	g := e.Group("/moods", guard)
	g.GET("", h.List)
	g.POST("", h.Record)
}
