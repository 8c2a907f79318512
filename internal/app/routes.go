package app

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/backend"
	"github.com/neurocare/neurocare-web/internal/localstore"
	"github.com/neurocare/neurocare-web/internal/middleware"
	"github.com/neurocare/neurocare-web/internal/plugins/auth"
	"github.com/neurocare/neurocare-web/internal/plugins/chat"
	"github.com/neurocare/neurocare-web/internal/plugins/dashboard"
	"github.com/neurocare/neurocare-web/internal/plugins/moods"
	"github.com/neurocare/neurocare-web/internal/templates/layouts"
	"github.com/neurocare/neurocare-web/internal/templates/pages"
)

// healthTimeout bounds the Redis ping in /healthz.
const healthTimeout = 2 * time.Second

// RegisterRoutes sets up all application routes. It registers public routes
// directly and delegates to each plugin's route registration function.
//
// This is the single place where all routes are aggregated. When a new
// plugin is added, its routes are registered here.
func (a *App) RegisterRoutes() {
	e := a.Echo

	// --- Plugins ---

	// auth plugin (public: login, register, logout; exports the guard).
	machine := auth.NewMachine()
	authService := auth.NewAuthService(a.Backend, machine)
	auth.RegisterRoutes(e, auth.NewHandler(authService))
	guard := auth.RequireSession(authService)

	// Copy navbar state into the templ context on every render. Reads the
	// store at render time, so a session wiped by the handler shows as
	// signed out on the same response.
	middleware.LayoutInjector = func(c echo.Context, ctx context.Context) context.Context {
		chrome := layouts.Chrome{
			CSRFToken:  middleware.GetCSRFToken(c),
			ActivePath: c.Request().URL.Path,
		}
		if kind, msg := middleware.PopFlash(c); msg != "" {
			chrome.Flash = layouts.Flash{Kind: kind, Message: msg}
		}

		if store := localstore.FromContext(c); store != nil {
			if authed, err := authService.HasSession(ctx, store); err == nil && authed {
				chrome.SignedIn = true
				chrome.UserName, _ = localstore.Identity(ctx, store)
			}
		}
		return layouts.WithChrome(ctx, chrome)
	}

	// dashboard plugin (guarded).
	dashboard.RegisterRoutes(e, dashboard.NewHandler(dashboard.NewReconciler(a.Backend)), guard)

	// moods plugin (guarded).
	moods.RegisterRoutes(e, moods.NewHandler(moods.NewMoodService()), guard)

	// chat plugin (page guarded; relay public). The backend is asked first,
	// then this server's own relay over loopback.
	self := a.Config.Chat.SelfURL
	if self == "" {
		self = a.Config.BaseURL
	}
	turner := chat.NewTurner(a.Backend,
		a.Backend.URL(backend.ChatPath),
		strings.TrimRight(self, "/")+backend.ChatPath,
	)
	transcripts := chat.NewTranscriptStore(a.Config.Chat.IdleTTL)
	chat.RegisterRoutes(e, chat.NewHandler(transcripts, turner, a.Completer), guard)

	// --- Public Pages ---

	e.GET("/", func(c echo.Context) error {
		return middleware.Render(c, http.StatusOK, pages.Landing())
	})
	e.GET("/crisis-resources", func(c echo.Context) error {
		return middleware.Render(c, http.StatusOK, pages.CrisisResources())
	})
	e.GET("/mental-health-tips", func(c echo.Context) error {
		return middleware.Render(c, http.StatusOK, pages.MentalHealthTips())
	})
	e.GET("/privacy-policy", func(c echo.Context) error {
		return middleware.Render(c, http.StatusOK, pages.PrivacyPolicy())
	})

	// Health check for container orchestration.
	e.GET("/healthz", a.healthz)
}

// healthz reports ok, or 503 when Redis is configured and unreachable.
func (a *App) healthz(c echo.Context) error {
	status := map[string]string{"status": "ok", "store": "memory"}
	if a.Redis != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthTimeout)
		defer cancel()
		if err := a.Redis.Ping(ctx).Err(); err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "degraded", "store": "redis", "error": "redis unreachable"})
		}
		status["store"] = "redis"
	}
	return c.JSON(http.StatusOK, status)
}
