// Package moods is the mood journal: recording how the user feels, keeping
// the day streak, and awarding milestone badges. Everything lives in the
// browser's local store under the journal keys; nothing is sent to the
// backend.
package moods

import (
	"time"

	"github.com/neurocare/neurocare-web/internal/localstore"
)

// Mood scale bounds.
const (
	MinMood = 1
	MaxMood = 5
)

// maxNoteRunes caps the optional note.
const maxNoteRunes = 500

// dayLayout is the calendar-date form used by StreakRecord.LastDate.
const dayLayout = "2006-01-02"

// Option is one selectable point on the mood scale.
type Option struct {
	Value int
	Label string
	Emoji string
}

// Options lists the scale from best to worst, as the form shows it.
var Options = []Option{
	{5, "Great", "😊"},
	{4, "Good", "🙂"},
	{3, "Okay", "😐"},
	{2, "Low", "😔"},
	{1, "Struggling", "😢"},
}

// OptionFor returns the scale option closest to v.
func OptionFor(v float64) Option {
	for _, o := range Options {
		if v >= float64(o.Value)-0.5 {
			return o
		}
	}
	return Options[len(Options)-1]
}

// Badge IDs.
const (
	BadgeFirstEntry = "first-entry"
	BadgeWeekStreak = "week-streak"
	BadgeTenEntries = "ten-entries"
)

// milestone is a badge and the rule that earns it.
type milestone struct {
	ID     string
	Name   string
	Earned func(entries int, streak localstore.StreakRecord) bool
}

// milestones are checked in order after every recorded entry.
var milestones = []milestone{
	{BadgeFirstEntry, "First Step", func(n int, _ localstore.StreakRecord) bool { return n >= 1 }},
	{BadgeWeekStreak, "Week Warrior", func(_ int, s localstore.StreakRecord) bool { return s.Current >= 7 }},
	{BadgeTenEntries, "Dedicated Tracker", func(n int, _ localstore.StreakRecord) bool { return n >= 10 }},
}

// --- Request DTOs ---

// RecordRequest is the mood form submission.
type RecordRequest struct {
	Mood string `form:"mood"`
	Note string `form:"note"`
}

// --- Service DTOs ---

// RecordInput is a validated-shape request for a new entry.
type RecordInput struct {
	Mood int
	Note string
}

// Journal is the mood history as shown on the page.
type Journal struct {
	// Entries are newest first.
	Entries []localstore.MoodEntry
	Streak  localstore.StreakRecord
	Badges  []localstore.Badge
}

// RecordResult is what recording an entry changed.
type RecordResult struct {
	Entry   localstore.MoodEntry
	Awarded []localstore.Badge
}

// nextStreak advances the streak for an entry made on day today.
// Same day leaves it unchanged; the following day extends it; anything
// else starts over at 1.
func nextStreak(rec localstore.StreakRecord, today time.Time) localstore.StreakRecord {
	day := today.Format(dayLayout)
	switch {
	case rec.LastDate == day && rec.Current > 0:
		return rec
	case rec.LastDate != "" && isDayAfter(rec.LastDate, today):
		rec.Current++
	default:
		rec.Current = 1
	}
	rec.LastDate = day
	if rec.Current > rec.Longest {
		rec.Longest = rec.Current
	}
	return rec
}

// isDayAfter reports whether today is the calendar day after last.
func isDayAfter(last string, today time.Time) bool {
	prev, err := time.ParseInLocation(dayLayout, last, today.Location())
	if err != nil {
		return false
	}
	return prev.AddDate(0, 0, 1).Format(dayLayout) == today.Format(dayLayout)
}
