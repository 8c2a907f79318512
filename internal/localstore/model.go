package localstore

import (
	"context"
	"time"
)

// UserProfile is the display cache of the signed-in user. It is never
// authoritative; the backend owns the account record.
type UserProfile struct {
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	RegisteredAt time.Time `json:"registeredAt"`
}

// MoodEntry is one journal entry. Mood is expected in the range 1-5.
type MoodEntry struct {
	Mood float64   `json:"mood"`
	Date time.Time `json:"date"`
	Note string    `json:"note,omitempty"`
}

// StreakRecord tracks consecutive days with at least one entry. LastDate
// is a calendar date in YYYY-MM-DD form.
type StreakRecord struct {
	Current  int    `json:"current"`
	Longest  int    `json:"longest"`
	LastDate string `json:"lastDate,omitempty"`
}

// Badge is an award earned for journaling milestones.
type Badge struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	EarnedAt time.Time `json:"earnedAt"`
}

// --- Typed accessors ---

// Token returns the stored bearer token, or "".
func Token(ctx context.Context, s Store) (string, error) {
	token, _, err := s.Get(ctx, KeyToken)
	return token, err
}

// Identity returns the stored display name / identity string, or "".
func Identity(ctx context.Context, s Store) (string, error) {
	name, _, err := s.Get(ctx, KeyUser)
	return name, err
}

// Profile returns the cached profile, or nil when none is stored.
func Profile(ctx context.Context, s Store) (*UserProfile, error) {
	var p UserProfile
	ok, err := GetJSON(ctx, s, KeyProfile, &p)
	if err != nil || !ok {
		return nil, err
	}
	return &p, nil
}

// Moods returns the journal in insertion order. A missing key is an empty journal.
func Moods(ctx context.Context, s Store) ([]MoodEntry, error) {
	var entries []MoodEntry
	if _, err := GetJSON(ctx, s, KeyMoods, &entries); err != nil {
		return nil, err
	}
	return entries, nil
}

// Streak returns the streak record. A missing key is the zero record.
func Streak(ctx context.Context, s Store) (StreakRecord, error) {
	var rec StreakRecord
	if _, err := GetJSON(ctx, s, KeyStreaks, &rec); err != nil {
		return StreakRecord{}, err
	}
	return rec, nil
}

// Badges returns earned badges in award order.
func Badges(ctx context.Context, s Store) ([]Badge, error) {
	var badges []Badge
	if _, err := GetJSON(ctx, s, KeyBadges, &badges); err != nil {
		return nil, err
	}
	return badges, nil
}

// Clear removes every session-related key.
func Clear(ctx context.Context, s Store) error {
	return s.Remove(ctx, SessionKeys...)
}
