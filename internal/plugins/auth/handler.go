package auth

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/apperror"
	"github.com/neurocare/neurocare-web/internal/localstore"
	"github.com/neurocare/neurocare-web/internal/middleware"
)

// Handler handles HTTP requests for authentication (login, register, logout).
// Handlers are thin: they bind the request, call the service, and render the
// response. No business logic lives here.
type Handler struct {
	service AuthService
}

// NewHandler creates a new auth handler with the given service.
func NewHandler(service AuthService) *Handler {
	return &Handler{service: service}
}

// LoginForm renders the login page (GET /login).
func (h *Handler) LoginForm(c echo.Context) error {
	if h.hasLiveToken(c) {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return middleware.Render(c, http.StatusOK, LoginPage(middleware.GetCSRFToken(c), FormView{}))
}

// Login processes the login form submission (POST /login).
func (h *Handler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	store := localstore.FromContext(c)
	if store == nil {
		return apperror.NewMissingContext()
	}

	outcome := h.service.Login(c.Request().Context(), localstore.BrowserID(c), store, LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})

	view := FormView{Email: req.Email, Outcome: &outcome}
	csrfToken := middleware.GetCSRFToken(c)
	if middleware.IsHTMX(c) {
		return middleware.Render(c, http.StatusOK, LoginFormComponent(csrfToken, view))
	}
	return middleware.Render(c, http.StatusOK, LoginPage(csrfToken, view))
}

// RegisterForm renders the registration page (GET /register).
func (h *Handler) RegisterForm(c echo.Context) error {
	if h.hasLiveToken(c) {
		return c.Redirect(http.StatusSeeOther, "/dashboard")
	}
	return middleware.Render(c, http.StatusOK, RegisterPage(middleware.GetCSRFToken(c), FormView{}))
}

// Register processes the registration form submission (POST /register).
func (h *Handler) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return apperror.NewBadRequest("invalid request")
	}

	outcome := h.service.Register(c.Request().Context(), localstore.BrowserID(c), RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Confirm:  req.Confirm,
	})

	view := FormView{Name: req.Name, Email: req.Email, Outcome: &outcome}
	csrfToken := middleware.GetCSRFToken(c)
	if middleware.IsHTMX(c) {
		return middleware.Render(c, http.StatusOK, RegisterFormComponent(csrfToken, view))
	}
	return middleware.Render(c, http.StatusOK, RegisterPage(csrfToken, view))
}

// Logout clears the session and returns to the login page (POST /logout).
func (h *Handler) Logout(c echo.Context) error {
	store := localstore.FromContext(c)
	if store == nil {
		return apperror.NewMissingContext()
	}

	if err := h.service.Logout(c.Request().Context(), store); err != nil {
		return err
	}

	if middleware.IsHTMX(c) {
		c.Response().Header().Set("HX-Redirect", "/login")
		return c.NoContent(http.StatusNoContent)
	}
	middleware.SetFlash(c, middleware.FlashSuccess, "You have been logged out.")
	return c.Redirect(http.StatusSeeOther, "/login")
}

// hasLiveToken reports whether the browser already holds an unexpired token.
func (h *Handler) hasLiveToken(c echo.Context) bool {
	store := localstore.FromContext(c)
	if store == nil {
		return false
	}
	token, err := localstore.Token(c.Request().Context(), store)
	return err == nil && token != "" && !TokenExpired(token, time.Now())
}
