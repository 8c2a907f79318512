package middleware

import (
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/apperror"
)

// ok is a terminal handler that always succeeds.
func ok(c echo.Context) error { return c.NoContent(http.StatusOK) }

func TestCSRF_RejectsMismatchedToken(t *testing.T) {
	e := echo.New()
	form := url.Values{"csrf_token": {"wrong"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "right"})

	err := CSRF(CSRFConfig{ExemptPrefixes: []string{"/api/"}})(ok)(e.NewContext(req, httptest.NewRecorder()))
	if apperror.SafeCode(err) != http.StatusForbidden {
		t.Fatalf("expected 403, got %v", err)
	}
}

func TestCSRF_AcceptsHeaderToken(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/chatbot/messages", nil)
	req.Header.Set(csrfHeaderName, "tok")
	req.AddCookie(&http.Cookie{Name: csrfCookieName, Value: "tok"})
	c := e.NewContext(req, httptest.NewRecorder())

	if err := CSRF(CSRFConfig{ExemptPrefixes: []string{"/api/"}})(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if GetCSRFToken(c) != "tok" {
		t.Errorf("expected token in context")
	}
}

func TestCSRF_SkipsAPI(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
	if err := CSRF(CSRFConfig{ExemptPrefixes: []string{"/api/"}})(ok)(e.NewContext(req, httptest.NewRecorder())); err != nil {
		t.Fatalf("API requests should bypass CSRF: %v", err)
	}
}

func TestRateLimit_RejectsOverLimit(t *testing.T) {
	e := echo.New()
	h := RateLimit(2, time.Minute)(ok)

	var last error
	var rec *httptest.ResponseRecorder
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/login", nil)
		req.RemoteAddr = "203.0.113.7:1234"
		rec = httptest.NewRecorder()
		last = h(e.NewContext(req, rec))
	}

	var appErr *apperror.AppError
	if !errors.As(last, &appErr) || appErr.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429 AppError, got %v", last)
	}
	if appErr.RetryAfter <= 0 || appErr.RetryAfter > time.Minute {
		t.Errorf("retry after = %v", appErr.RetryAfter)
	}
}

func TestRateLimit_LoopbackIsNotCounted(t *testing.T) {
	e := echo.New()
	h := RateLimit(1, time.Minute, FromLoopback)(ok)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = "127.0.0.1:40000"
		if err := h(e.NewContext(req, httptest.NewRecorder())); err != nil {
			t.Fatalf("self call %d was limited: %v", i, err)
		}
	}

	// A proxied visitor arrives on loopback too, but with a forwarding header.
	var last error
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/chat", nil)
		req.RemoteAddr = "127.0.0.1:40000"
		req.Header.Set(echo.HeaderXForwardedFor, "198.51.100.7")
		last = h(e.NewContext(req, httptest.NewRecorder()))
	}
	var appErr *apperror.AppError
	if !errors.As(last, &appErr) || appErr.Code != http.StatusTooManyRequests {
		t.Errorf("proxied requests should still be limited, got %v", last)
	}
}

func TestSecurityHeaders(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	if err := SecurityHeaders()(ok)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Header().Get("Cache-Control") != "no-store" {
		t.Error("pages should not be cached")
	}
	if !strings.Contains(rec.Header().Get("Content-Security-Policy"), "script-src 'self'") {
		t.Error("expected CSP")
	}
}

func TestRecovery_ConvertsPanic(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	err := Recovery(nil)(func(c echo.Context) error { panic("boom") })(e.NewContext(req, httptest.NewRecorder()))
	if apperror.SafeCode(err) != http.StatusInternalServerError {
		t.Fatalf("expected 500 AppError, got %v", err)
	}
}

func TestTrustedProxies(t *testing.T) {
	proxies := parseProxies([]string{"10.0.0.0/8", "not-a-cidr"})
	if len(proxies) != 1 {
		t.Fatalf("expected one valid CIDR, got %d", len(proxies))
	}
	extract := proxyExtractor(proxies)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Forwarded-For", "198.51.100.1, 10.1.2.3")
	if got := extract(req); got != "198.51.100.1" {
		t.Errorf("trusted proxy: got %q", got)
	}

	req.RemoteAddr = "192.0.2.9:5555"
	if got := extract(req); got != "192.0.2.9" {
		t.Errorf("untrusted peer must not be able to spoof, got %q", got)
	}
}

func TestTrustedProxies_IgnoresPrependedEntries(t *testing.T) {
	extract := proxyExtractor(parseProxies([]string{"10.0.0.0/8"}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.2.3:5555"
	req.Header.Set("X-Forwarded-For", "1.2.3.4, 198.51.100.1")
	if got := extract(req); got != "198.51.100.1" {
		t.Errorf("leftmost entry is visitor-controlled, got %q", got)
	}

	req.RemoteAddr = "127.0.0.1:5555"
	if got := extract(req); got != "127.0.0.1" {
		t.Errorf("loopback is not an implicit proxy, got %q", got)
	}
}

func TestCORS_Preflight(t *testing.T) {
	e := echo.New()
	mw := CORS(CORSConfig{AllowedOrigins: []string{"https://app.example/"}})

	req := httptest.NewRequest(http.MethodOptions, "/api/chat", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	if err := mw(ok)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusNoContent {
		t.Errorf("expected 204, got %d", rec.Code)
	}
	if rec.Header().Get("Access-Control-Allow-Origin") != "https://app.example" {
		t.Error("expected origin echoed")
	}
}

func TestFlash_RoundTrip(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	SetFlash(e.NewContext(httptest.NewRequest(http.MethodPost, "/logout", nil), rec), FlashSuccess, "Bye: see you soon")

	cookies := rec.Result().Cookies()
	if len(cookies) != 1 {
		t.Fatalf("expected one cookie, got %d", len(cookies))
	}

	req := httptest.NewRequest(http.MethodGet, "/login", nil)
	req.AddCookie(cookies[0])
	rec = httptest.NewRecorder()
	kind, msg := PopFlash(e.NewContext(req, rec))
	if kind != FlashSuccess || msg != "Bye: see you soon" {
		t.Errorf("got %q %q", kind, msg)
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), "Max-Age=0") {
		t.Error("flash cookie should be expired once read")
	}
}

func TestPopFlash_None(t *testing.T) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if kind, msg := PopFlash(e.NewContext(req, httptest.NewRecorder())); kind != "" || msg != "" {
		t.Errorf("expected no flash, got %q %q", kind, msg)
	}
}

func TestRequestLogger_Level(t *testing.T) {
	cfg := LoggerConfig{QuietPrefixes: []string{"/static/", "/healthz"}}
	tests := []struct {
		path   string
		status int
		want   slog.Level
	}{
		{"/dashboard", 200, slog.LevelInfo},
		{"/static/css/app.css", 200, slog.LevelDebug},
		{"/healthz", 503, slog.LevelError},
		{"/static/missing.js", 404, slog.LevelWarn},
	}
	for _, tt := range tests {
		if got := cfg.level(tt.path, tt.status); got != tt.want {
			t.Errorf("level(%s, %d) = %v, want %v", tt.path, tt.status, got, tt.want)
		}
	}
}

func TestCSRF_IssuesCookieOnFirstVisit(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/login", nil), rec)
	if err := CSRF(CSRFConfig{})(ok)(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	token := GetCSRFToken(c)
	if len(token) != 2*csrfTokenLength {
		t.Fatalf("token length = %d", len(token))
	}
	if !strings.Contains(rec.Header().Get("Set-Cookie"), csrfCookieName+"="+token) {
		t.Error("expected the token cookie to be set")
	}
}

func TestWindowLimiter_ResetsAndSweeps(t *testing.T) {
	l := newWindowLimiter(1, time.Minute)
	start := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	if _, ok := l.allow("a", start); !ok {
		t.Fatal("first request should pass")
	}
	if retry, ok := l.allow("a", start.Add(20*time.Second)); ok || retry != 40*time.Second {
		t.Fatalf("second request: ok=%v retry=%v", ok, retry)
	}
	if _, ok := l.allow("a", start.Add(61*time.Second)); !ok {
		t.Error("a new window should reset the count")
	}

	l.allow("b", start.Add(61*time.Second))
	l.allow("c", start.Add(3*time.Minute))
	if _, ok := l.windows["b"]; ok {
		t.Error("stale keys should be swept")
	}
}
