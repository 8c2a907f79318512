package auth

import (
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/middleware"
)

// RegisterRoutes sets up all auth-related routes on the given Echo instance.
// Auth routes are public (no session required) -- the guard is exported
// separately for other plugins to use on their route groups.
//
// POST endpoints are rate-limited per IP: each one costs a backend call.
func RegisterRoutes(e *echo.Echo, h *Handler) {
	e.GET("/login", h.LoginForm)
	e.POST("/login", h.Login, middleware.RateLimit(10, time.Minute))
	e.GET("/register", h.RegisterForm)
	e.POST("/register", h.Register, middleware.RateLimit(5, time.Minute))

	e.POST("/logout", h.Logout)
}
