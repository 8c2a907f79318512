package localstore

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// browserCookieName holds the opaque ID that scopes a browser's state.
const browserCookieName = "neurocare_browser"

// browserCookieMaxAge keeps the ID for a year.
const browserCookieMaxAge = 365 * 24 * 60 * 60

// Context keys for the resolved browser ID and store.
const (
	contextKeyBrowserID = "localstore_browser_id"
	contextKeyStore     = "localstore_store"
)

// Middleware resolves (or issues) the browser ID cookie and puts that
// browser's Store into the Echo context for downstream handlers. Paths
// under skipPrefixes get neither a cookie nor a store.
func Middleware(provider Provider, skipPrefixes ...string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			for _, prefix := range skipPrefixes {
				if strings.HasPrefix(path, prefix) {
					return next(c)
				}
			}

			id := browserID(c)
			if id == "" {
				id = uuid.NewString()
				req := c.Request()
				c.SetCookie(&http.Cookie{
					Name:     browserCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
					SameSite: http.SameSiteLaxMode,
					MaxAge:   browserCookieMaxAge,
				})
			}

			c.Set(contextKeyBrowserID, id)
			c.Set(contextKeyStore, provider.For(id))
			return next(c)
		}
	}
}

// FromContext returns the browser's Store, or nil when Middleware did not run.
func FromContext(c echo.Context) Store {
	s, ok := c.Get(contextKeyStore).(Store)
	if !ok {
		return nil
	}
	return s
}

// BrowserID returns the resolved browser ID, or "".
func BrowserID(c echo.Context) string {
	id, _ := c.Get(contextKeyBrowserID).(string)
	return id
}

// browserID reads a well-formed ID from the cookie. Malformed values are
// replaced rather than trusted as Redis key material.
func browserID(c echo.Context) string {
	cookie, err := c.Cookie(browserCookieName)
	if err != nil || cookie.Value == "" {
		return ""
	}
	if _, err := uuid.Parse(cookie.Value); err != nil {
		return ""
	}
	return cookie.Value
}
