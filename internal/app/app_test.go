package app

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/neurocare/neurocare-web/internal/backend"
	"github.com/neurocare/neurocare-web/internal/config"
	"github.com/neurocare/neurocare-web/internal/localstore"
)

const testBrowserID = "2f9d0c3e-8a41-4b6f-a2e7-5c1d9b3f7e60"

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Env:     "development",
		Port:    3000,
		BaseURL: baseURL,
		Backend: config.BackendConfig{Timeout: 5 * time.Second},
		Chat:    config.ChatConfig{IdleTTL: time.Minute},
	}
}

// newTestApp wires the full app against a fake backend server.
func newTestApp(t *testing.T, backendHandler http.Handler) (*App, *localstore.MemoryProvider) {
	t.Helper()
	srv := httptest.NewServer(backendHandler)
	t.Cleanup(srv.Close)

	provider := localstore.NewMemoryProvider()
	a := New(testConfig("http://self.invalid"), Deps{
		Store:   provider,
		Backend: backend.NewClient(srv.URL, 5*time.Second),
	})
	a.RegisterRoutes()
	return a, provider
}

func get(a *App, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.AddCookie(&http.Cookie{Name: "neurocare_browser", Value: testBrowserID})
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)
	return rec
}

func TestPublicPages(t *testing.T) {
	a, _ := newTestApp(t, http.NotFoundHandler())
	for _, path := range []string{"/", "/crisis-resources", "/mental-health-tips", "/privacy-policy", "/login", "/register"} {
		if rec := get(a, path); rec.Code != http.StatusOK {
			t.Errorf("GET %s = %d", path, rec.Code)
		}
	}
}

func TestGuard_RedirectsAnonymous(t *testing.T) {
	a, _ := newTestApp(t, http.NotFoundHandler())
	for _, path := range []string{"/dashboard", "/moods", "/chatbot"} {
		rec := get(a, path)
		if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/login" {
			t.Errorf("GET %s = %d %q, want redirect to /login", path, rec.Code, rec.Header().Get("Location"))
		}
	}
}

func TestDashboard_AuthFailureWipesSessionAndNavbar(t *testing.T) {
	a, provider := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == backend.CurrentUserPath {
			w.WriteHeader(http.StatusForbidden)
			return
		}
		http.NotFound(w, r)
	}))
	store := provider.For(testBrowserID)
	ctx := context.Background()
	_ = store.Set(ctx, localstore.KeyToken, "stale")
	_ = store.Set(ctx, localstore.KeyUser, "Ana")
	_ = store.Set(ctx, localstore.KeyMoods, `[{"mood":4,"date":"2026-01-01T00:00:00Z"}]`)

	rec := get(a, "/dashboard")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	for _, k := range localstore.SessionKeys {
		if provider.For(testBrowserID).(*localstore.MemoryStore).Has(k) {
			t.Errorf("key %q should be wiped", k)
		}
	}
	body := rec.Body.String()
	if strings.Contains(body, "Log out") {
		t.Error("navbar should show the signed-out state after the wipe")
	}
	if !strings.Contains(body, "No entries yet") {
		t.Error("statistics should reflect the wiped journal")
	}
}

func TestLoginFlow(t *testing.T) {
	a, provider := newTestApp(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == backend.LoginPath {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"token":"tok","user":{"name":"Ana"}}`))
			return
		}
		http.NotFound(w, r)
	}))

	form := url.Values{"email": {"ana@example.com"}, "password": {"pw"}, "csrf_token": {"csrf"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "neurocare_browser", Value: testBrowserID})
	req.AddCookie(&http.Cookie{Name: "neurocare_csrf", Value: "csrf"})
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Login successful! Redirecting to dashboard...") {
		t.Error("expected success message")
	}
	if !strings.Contains(body, `content="1;url=/dashboard"`) || !strings.Contains(body, "delay:1000ms") {
		t.Error("expected delayed redirect to the dashboard")
	}
	if tok, _ := localstore.Token(context.Background(), provider.For(testBrowserID)); tok != "tok" {
		t.Errorf("token = %q", tok)
	}
}

func TestAPIErrorsAreJSON(t *testing.T) {
	a, _ := newTestApp(t, http.NotFoundHandler())
	req := httptest.NewRequest(http.MethodPost, "/api/chat", strings.NewReader(`{"message":"hi"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Echo.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("unconfigured relay should answer 503, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("expected JSON error body: %v", err)
	}
}

func TestNotFoundRendersErrorPage(t *testing.T) {
	a, _ := newTestApp(t, http.NotFoundHandler())
	rec := get(a, "/nope")
	if rec.Code != http.StatusNotFound || !strings.Contains(rec.Body.String(), "doesn&#39;t exist") {
		t.Errorf("unexpected 404 response %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	a, _ := newTestApp(t, http.NotFoundHandler())
	if rec := get(a, "/healthz"); rec.Code != http.StatusOK {
		t.Errorf("memory store health = %d", rec.Code)
	}

	mr := miniredis.RunT(t)
	a.Redis = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = a.Redis.Close() })
	if rec := get(a, "/healthz"); rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"redis"`) {
		t.Errorf("redis health = %d %s", rec.Code, rec.Body.String())
	}

	mr.Close()
	if rec := get(a, "/healthz"); rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 with redis down, got %d", rec.Code)
	}
}

// cannedCompleter answers every relay call with the same text.
type cannedCompleter struct{ reply string }

func (c cannedCompleter) Complete(context.Context, string) (string, error) { return c.reply, nil }

func TestChat_SelfFallbackIsNotThrottled(t *testing.T) {
	backendSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == backend.ChatPath {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(backendSrv.Close)

	provider := localstore.NewMemoryProvider()
	cfg := testConfig("http://self.invalid")
	a := New(cfg, Deps{
		Store:     provider,
		Backend:   backend.NewClient(backendSrv.URL, 5*time.Second),
		Completer: cannedCompleter{reply: "Try a slow breath."},
	})
	self := httptest.NewServer(a.Echo)
	t.Cleanup(self.Close)
	cfg.Chat.SelfURL = self.URL
	a.RegisterRoutes()

	// More visitors than the relay's per-IP limit, each on their own address.
	for i := 1; i <= 35; i++ {
		browser := uuid.NewString()
		_ = provider.For(browser).Set(context.Background(), localstore.KeyUser, "Ana")

		form := url.Values{"message": {"hi"}, "csrf_token": {"csrf"}}
		req := httptest.NewRequest(http.MethodPost, "/chatbot/messages", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.RemoteAddr = fmt.Sprintf("203.0.113.%d:1234", i)
		req.AddCookie(&http.Cookie{Name: "neurocare_browser", Value: browser})
		req.AddCookie(&http.Cookie{Name: "neurocare_csrf", Value: "csrf"})
		rec := httptest.NewRecorder()
		a.Echo.ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("turn %d: expected 200, got %d", i, rec.Code)
		}
		if !strings.Contains(rec.Body.String(), "Try a slow breath.") {
			t.Fatalf("turn %d fell through to the apology", i)
		}
	}
}
