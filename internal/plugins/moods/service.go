package moods

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/neurocare/neurocare-web/internal/apperror"
	"github.com/neurocare/neurocare-web/internal/localstore"
	"github.com/neurocare/neurocare-web/internal/sanitize"
)

// MoodService defines the business logic contract for the mood journal.
type MoodService interface {
	// Journal returns the browser's entries (newest first), streak and badges.
	Journal(ctx context.Context, store localstore.Store) (*Journal, error)

	// Record appends an entry for now, advances the streak and awards any
	// newly earned badges.
	Record(ctx context.Context, store localstore.Store, input RecordInput) (*RecordResult, error)
}

// moodService implements MoodService over the local store.
type moodService struct {
	now func() time.Time
}

// NewMoodService creates a new mood service.
func NewMoodService() MoodService {
	return &moodService{now: time.Now}
}

// ParseMood converts the submitted form value into a scale point.
func ParseMood(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < MinMood || v > MaxMood {
		return 0, apperror.NewValidation(fmt.Sprintf("Please choose a mood between %d and %d", MinMood, MaxMood))
	}
	return v, nil
}

// Journal reads the whole journal.
func (s *moodService) Journal(ctx context.Context, store localstore.Store) (*Journal, error) {
	entries, err := localstore.Moods(ctx, store)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading moods: %w", err))
	}
	streak, err := localstore.Streak(ctx, store)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading streak: %w", err))
	}
	badges, err := localstore.Badges(ctx, store)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading badges: %w", err))
	}

	newest := slices.Clone(entries)
	slices.Reverse(newest)
	return &Journal{Entries: newest, Streak: streak, Badges: badges}, nil
}

// Record stores a new entry. The read-modify-write is not atomic; two tabs
// recording in the same instant can lose one entry.
func (s *moodService) Record(ctx context.Context, store localstore.Store, input RecordInput) (*RecordResult, error) {
	if input.Mood < MinMood || input.Mood > MaxMood {
		return nil, apperror.NewValidation(fmt.Sprintf("Please choose a mood between %d and %d", MinMood, MaxMood))
	}

	entries, err := localstore.Moods(ctx, store)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading moods: %w", err))
	}
	streak, err := localstore.Streak(ctx, store)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading streak: %w", err))
	}
	badges, err := localstore.Badges(ctx, store)
	if err != nil {
		return nil, apperror.NewInternal(fmt.Errorf("reading badges: %w", err))
	}

	now := s.now()
	entry := localstore.MoodEntry{
		Mood: float64(input.Mood),
		Date: now,
		Note: sanitize.Note(input.Note, maxNoteRunes),
	}
	entries = append(entries, entry)
	streak = nextStreak(streak, now)

	var awarded []localstore.Badge
	for _, m := range milestones {
		if hasBadge(badges, m.ID) || !m.Earned(len(entries), streak) {
			continue
		}
		b := localstore.Badge{ID: m.ID, Name: m.Name, EarnedAt: now}
		badges = append(badges, b)
		awarded = append(awarded, b)
	}

	if err := localstore.SetJSON(ctx, store, localstore.KeyMoods, entries); err != nil {
		return nil, apperror.NewInternal(err)
	}
	if err := localstore.SetJSON(ctx, store, localstore.KeyStreaks, streak); err != nil {
		return nil, apperror.NewInternal(err)
	}
	if len(awarded) > 0 {
		if err := localstore.SetJSON(ctx, store, localstore.KeyBadges, badges); err != nil {
			return nil, apperror.NewInternal(err)
		}
		for _, b := range awarded {
			slog.Info("badge awarded", slog.String("badge", b.ID))
		}
	}

	return &RecordResult{Entry: entry, Awarded: awarded}, nil
}

func hasBadge(badges []localstore.Badge, id string) bool {
	return slices.ContainsFunc(badges, func(b localstore.Badge) bool { return b.ID == id })
}
