package middleware

import (
	"net"
	"sync"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/apperror"
)

// Skipper reports whether a request bypasses a middleware.
type Skipper func(c echo.Context) bool

// RateLimit allows maxRequests per client IP in each fixed window and
// answers 429 with Retry-After beyond that. Requests matched by any of
// skip are not counted. Applied to the auth forms and the chat relay,
// each of which costs a backend or model call.
func RateLimit(maxRequests int, window time.Duration, skip ...Skipper) echo.MiddlewareFunc {
	l := newWindowLimiter(maxRequests, window)
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			for _, s := range skip {
				if s(c) {
					return next(c)
				}
			}
			if retry, ok := l.allow(c.RealIP(), time.Now()); !ok {
				return apperror.NewRateLimited(retry)
			}
			return next(c)
		}
	}
}

// FromLoopback matches calls this server makes to itself: a loopback peer
// with no forwarding header. Anything relayed by a proxy carries
// X-Forwarded-For and is limited as usual.
func FromLoopback(c echo.Context) bool {
	req := c.Request()
	if req.Header.Get(echo.HeaderXForwardedFor) != "" {
		return false
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		host = req.RemoteAddr
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// windowLimiter counts requests per key in fixed windows. Stale keys are
// swept lazily on access, at most once per window, so no goroutine
// outlives the route it guards.
type windowLimiter struct {
	max    int
	window time.Duration

	mu        sync.Mutex
	windows   map[string]*counter
	lastSweep time.Time
}

type counter struct {
	n     int
	start time.Time
}

func newWindowLimiter(max int, window time.Duration) *windowLimiter {
	return &windowLimiter{max: max, window: window, windows: make(map[string]*counter)}
}

// allow records one request for key at now. When the limit is exceeded it
// returns false and how long until the window resets.
func (l *windowLimiter) allow(key string, now time.Time) (time.Duration, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) > l.window {
		for k, w := range l.windows {
			if now.Sub(w.start) > l.window {
				delete(l.windows, k)
			}
		}
		l.lastSweep = now
	}

	w, ok := l.windows[key]
	if !ok || now.Sub(w.start) > l.window {
		l.windows[key] = &counter{n: 1, start: now}
		return 0, true
	}
	w.n++
	if w.n > l.max {
		return l.window - now.Sub(w.start), false
	}
	return 0, true
}
