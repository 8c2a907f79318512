package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/a-h/templ"
	"github.com/labstack/echo/v4"
)

// LayoutInjector is a function that copies layout-relevant data from the Echo
// context (populated by the local store and CSRF middleware) into Go's context.Context so
// Templ templates can read it. Registered once at startup in app/routes.go.
//
// This callback pattern avoids the middleware package importing any plugin types.
var LayoutInjector func(echo.Context, context.Context) context.Context

// IsHTMX returns true if the current request was initiated by HTMX and is NOT
// a boosted navigation. Boosted requests behave like normal page navigations
// and expect full pages. Handlers use this to decide whether to return a
// fragment or the full page.
func IsHTMX(c echo.Context) bool {
	return c.Request().Header.Get("HX-Request") == "true" &&
		c.Request().Header.Get("HX-Boosted") != "true"
}

// Render writes a Templ component to the response with the given status code.
// Before rendering, it runs the LayoutInjector (if registered) to copy
// session and CSRF data into the Go context for Templ templates to access.
func Render(c echo.Context, statusCode int, component templ.Component) error {
	ctx := c.Request().Context()

	// Inject layout data from Echo context into Go context for Templ.
	if LayoutInjector != nil {
		ctx = LayoutInjector(c, ctx)
	}

	c.Response().Header().Set("Content-Type", "text/html; charset=utf-8")
	c.Response().WriteHeader(statusCode)
	return component.Render(ctx, c.Response().Writer)
}

// flashCookieName carries a one-shot banner across a redirect.
const flashCookieName = "neurocare_flash"

// Flash kinds.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// SetFlash queues a banner for the next rendered page. Used before
// redirects, where the message cannot be rendered in place.
func SetFlash(c echo.Context, kind, message string) {
	c.SetCookie(&http.Cookie{
		Name:     flashCookieName,
		Value:    url.QueryEscape(kind + ":" + message),
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   60,
	})
}

// PopFlash returns the queued banner, if any, and expires the cookie.
func PopFlash(c echo.Context) (kind, message string) {
	cookie, err := c.Cookie(flashCookieName)
	if err != nil || cookie.Value == "" {
		return "", ""
	}
	c.SetCookie(&http.Cookie{Name: flashCookieName, Value: "", Path: "/", MaxAge: -1})

	raw, err := url.QueryUnescape(cookie.Value)
	if err != nil {
		return "", ""
	}
	kind, message, ok := strings.Cut(raw, ":")
	if !ok {
		return "", ""
	}
	return kind, message
}
