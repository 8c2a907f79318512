package middleware

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/apperror"
)

const (
	// csrfTokenLength is the number of random bytes in a token (64 hex chars).
	csrfTokenLength = 32

	csrfCookieName = "neurocare_csrf"
	csrfHeaderName = "X-CSRF-Token"
	csrfFormField  = "csrf_token"
	csrfContextKey = "csrf_token"
)

// msgCSRFRejected is shown when a form is posted with a stale token,
// typically after the browser cookie was cleared in another tab.
const msgCSRFRejected = "Your session form expired. Please reload the page and try again."

// CSRFConfig configures CSRF.
type CSRFConfig struct {
	// ExemptPrefixes skip the check entirely. The JSON relay under /api/
	// reads no cookies and changes no browser state, so a forged request
	// gains nothing.
	ExemptPrefixes []string
}

// CSRF implements the double-submit cookie pattern. Every response carries
// a token cookie; POST, PUT, PATCH and DELETE must echo it back in the
// X-CSRF-Token header (htmx, via hx-headers on <body>) or in the csrf_token
// form field (plain forms).
func CSRF(cfg CSRFConfig) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			for _, prefix := range cfg.ExemptPrefixes {
				if strings.HasPrefix(req.URL.Path, prefix) {
					return next(c)
				}
			}

			token, err := ensureCSRFCookie(c)
			if err != nil {
				return apperror.NewInternal(err)
			}
			c.Set(csrfContextKey, token)

			if isSafeMethod(req.Method) {
				return next(c)
			}

			submitted := req.Header.Get(csrfHeaderName)
			if submitted == "" {
				submitted = req.FormValue(csrfFormField)
			}
			if submitted == "" || subtle.ConstantTimeCompare([]byte(submitted), []byte(token)) != 1 {
				return apperror.NewForbidden(msgCSRFRejected)
			}
			return next(c)
		}
	}
}

// ensureCSRFCookie returns the browser's token, issuing a new cookie when
// there is none. The cookie is readable by scripts on purpose: htmx has
// to be able to send it.
func ensureCSRFCookie(c echo.Context) (string, error) {
	req := c.Request()
	if cookie, err := req.Cookie(csrfCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, nil
	}

	token, err := generateCSRFToken()
	if err != nil {
		return "", err
	}
	c.SetCookie(&http.Cookie{
		Name:     csrfCookieName,
		Value:    token,
		Path:     "/",
		Secure:   req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteLaxMode,
	})
	return token, nil
}

// isSafeMethod returns true for HTTP methods that should not change state.
func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}

// generateCSRFToken returns a random hex-encoded token.
func generateCSRFToken() (string, error) {
	b := make([]byte, csrfTokenLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// GetCSRFToken returns the token CSRF stored on the context, or "".
func GetCSRFToken(c echo.Context) string {
	token, _ := c.Get(csrfContextKey).(string)
	return token
}
