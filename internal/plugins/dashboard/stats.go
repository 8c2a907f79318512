// Package dashboard renders the signed-in overview: who the user is, and
// what their mood journal says so far. Identity comes from reconciling the
// local session against the backend; statistics are derived on every
// render and never stored.
package dashboard

import (
	"math"
	"time"

	"github.com/neurocare/neurocare-web/internal/localstore"
)

// MoodStats summarizes the mood journal.
type MoodStats struct {
	TotalEntries  int
	CurrentStreak int

	// AverageMood is rounded to one decimal place. It is zero only when
	// there are no entries.
	AverageMood float64

	// LastEntry is the date of the most recently appended entry.
	LastEntry *time.Time
}

// encouragementThreshold splits praise from a nudge.
const encouragementThreshold = 3.5

// moodBand is one row of the label table.
type moodBand struct {
	min   float64
	label string
	emoji string
}

// moodBands is checked top to bottom; the last row catches everything.
var moodBands = []moodBand{
	{4, "Great", "😊"},
	{3, "Good", "😐"},
	{2, "Okay", "😔"},
	{math.Inf(-1), "Poor", "😢"},
}

// Derive computes MoodStats from the journal and the streak record.
// The streak's Current value is taken as-is.
func Derive(entries []localstore.MoodEntry, streak localstore.StreakRecord) MoodStats {
	stats := MoodStats{
		TotalEntries:  len(entries),
		CurrentStreak: streak.Current,
	}
	if len(entries) == 0 {
		return stats
	}

	var sum float64
	for _, e := range entries {
		sum += e.Mood
	}
	stats.AverageMood = roundTenth(sum / float64(len(entries)))

	last := entries[len(entries)-1].Date
	stats.LastEntry = &last
	return stats
}

// MoodLabel names a mood value: Great, Good, Okay or Poor.
func MoodLabel(v float64) string {
	return band(v).label
}

// MoodEmoji returns the emoji for a mood value.
func MoodEmoji(v float64) string {
	return band(v).emoji
}

// Encouragement returns the closing sentence of the progress card.
func Encouragement(stats MoodStats) string {
	if stats.AverageMood >= encouragementThreshold {
		return "Great job maintaining positive mental health!"
	}
	return "Consider tracking more regularly to build better habits."
}

// MoodPercent maps a 0-5 mood onto the progress bar's 0-100 scale.
func MoodPercent(v float64) float64 {
	return math.Max(0, math.Min(100, v/5*100))
}

func band(v float64) moodBand {
	for _, b := range moodBands {
		if v >= b.min {
			return b
		}
	}
	return moodBands[len(moodBands)-1]
}

// roundTenth rounds half up to one decimal place.
func roundTenth(v float64) float64 {
	return math.Floor(v*10+0.5) / 10
}
