package dashboard

import "github.com/labstack/echo/v4"

// RegisterRoutes mounts the dashboard behind the session guard.
func RegisterRoutes(e *echo.Echo, h *Handler, guard echo.MiddlewareFunc) {
	e.GET("/dashboard", h.Show, guard)
}
