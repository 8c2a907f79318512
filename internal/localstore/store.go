// Package localstore holds the per-browser key/value state that survives
// page reloads: the auth token, the display name, the cached profile and the
// mood journal. Every browser is identified by an opaque ID cookie and gets
// its own namespace; components depend on the Store capability rather than
// on any concrete backend, so tests substitute the in-memory implementation.
package localstore

import (
	"context"
	"encoding/json"
	"fmt"
)

// Key names are a persisted-state contract shared by every page. Do not
// rename them.
const (
	KeyToken   = "token"
	KeyUser    = "neurocare_user"
	KeyProfile = "neurocare_profile"
	KeyMoods   = "neurocare_moods"
	KeyStreaks = "neurocare_streaks"
	KeyBadges  = "neurocare_badges"
)

// SessionKeys lists every key wiped when a session is invalidated or the
// user logs out.
var SessionKeys = []string{KeyToken, KeyUser, KeyProfile, KeyMoods, KeyStreaks, KeyBadges}

// Store is get/set/remove over named keys for a single browser.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key.
	Set(ctx context.Context, key, value string) error

	// Remove deletes the given keys. Missing keys are not an error.
	Remove(ctx context.Context, keys ...string) error
}

// Provider hands out the Store belonging to one browser ID.
type Provider interface {
	For(browserID string) Store
}

// GetJSON decodes the JSON value under key into dst. It reports false when
// the key is absent; a malformed value is returned as an error.
func GetJSON(ctx context.Context, s Store, key string, dst any) (bool, error) {
	raw, ok, err := s.Get(ctx, key)
	if err != nil || !ok {
		return false, err
	}
	if err := json.Unmarshal([]byte(raw), dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SetJSON encodes v as JSON and stores it under key.
func SetJSON(ctx context.Context, s Store, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	return s.Set(ctx, key, string(data))
}
