package dashboard

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/neurocare/neurocare-web/internal/apperror"
	"github.com/neurocare/neurocare-web/internal/backend"
	"github.com/neurocare/neurocare-web/internal/localstore"
)

// fallbackName is shown when the backend knows nothing printable about the user.
const fallbackName = "User"

// registeredAtLayouts are the timestamp shapes the backend has been seen
// to send: RFC 3339 and a zone-less local date-time.
var registeredAtLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// Reconciler decides who the dashboard is showing.
type Reconciler interface {
	// Reconcile checks the stored token with the backend and returns the
	// profile to display, or nil for the signed-out state. A rejected token
	// wipes the browser's session keys; backend outages fall back to the
	// locally cached identity. Only local store failures are returned.
	Reconcile(ctx context.Context, store localstore.Store) (*localstore.UserProfile, error)
}

// reconciler implements Reconciler against the backend client.
type reconciler struct {
	backend backend.Client
	now     func() time.Time
}

// NewReconciler creates a Reconciler.
func NewReconciler(client backend.Client) Reconciler {
	return &reconciler{backend: client, now: time.Now}
}

// Reconcile makes a single identity check per call. No retries.
func (r *reconciler) Reconcile(ctx context.Context, store localstore.Store) (*localstore.UserProfile, error) {
	token, err := localstore.Token(ctx, store)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading token: %w", err))
	}

	if token != "" {
		user, err := r.backend.CurrentUser(ctx, token)
		switch {
		case err == nil:
			return r.adopt(ctx, store, user)
		case backend.IsAuthFailure(err):
			slog.Info("stored token rejected, clearing session")
			if err := localstore.Clear(ctx, store); err != nil {
				return nil, apperror.NewInternal(fmt.Errorf("clearing session: %w", err))
			}
			return nil, nil
		default:
			slog.Warn("identity check failed, using cached profile", slog.Any("error", err))
		}
	}

	return r.local(ctx, store)
}

// adopt turns a current-user response into the displayed profile and
// caches it.
func (r *reconciler) adopt(ctx context.Context, store localstore.Store, user *backend.CurrentUser) (*localstore.UserProfile, error) {
	name := firstNonEmpty(user.Name, user.Username, localPart(user.Email), fallbackName)
	profile := &localstore.UserProfile{
		Name:         name,
		Email:        firstNonEmpty(user.Email, name+"@example.com"),
		RegisteredAt: r.parseRegisteredAt(user.RegisteredAt),
	}

	if err := store.Set(ctx, localstore.KeyUser, name); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("storing display name: %w", err))
	}
	if err := localstore.SetJSON(ctx, store, localstore.KeyProfile, profile); err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("storing profile: %w", err))
	}
	return profile, nil
}

// local builds the profile from what the browser already has.
func (r *reconciler) local(ctx context.Context, store localstore.Store) (*localstore.UserProfile, error) {
	identity, err := localstore.Identity(ctx, store)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading identity: %w", err))
	}
	if identity == "" {
		return nil, nil
	}

	profile, err := localstore.Profile(ctx, store)
	if err != nil {
		// A corrupt cache is not worth failing the page over.
		slog.Warn("ignoring unreadable cached profile", slog.Any("error", err))
		profile = nil
	}
	if profile != nil {
		return profile, nil
	}

	return &localstore.UserProfile{
		Name:         identity,
		Email:        identity + "@example.com",
		RegisteredAt: r.now(),
	}, nil
}

func (r *reconciler) parseRegisteredAt(raw string) time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return r.now()
	}
	for _, layout := range registeredAtLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t
		}
	}
	slog.Debug("unparseable registeredAt", slog.String("value", raw))
	return r.now()
}

// localPart returns the part of an email address before the first "@".
func localPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
