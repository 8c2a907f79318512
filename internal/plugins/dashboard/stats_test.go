package dashboard

import (
	"testing"
	"time"

	"github.com/neurocare/neurocare-web/internal/localstore"
)

func entries(moods ...float64) []localstore.MoodEntry {
	base := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	out := make([]localstore.MoodEntry, len(moods))
	for i, m := range moods {
		out[i] = localstore.MoodEntry{Mood: m, Date: base.AddDate(0, 0, i)}
	}
	return out
}

func TestDerive_Empty(t *testing.T) {
	stats := Derive(nil, localstore.StreakRecord{Current: 2})
	if stats.TotalEntries != 0 || stats.AverageMood != 0 || stats.LastEntry != nil {
		t.Errorf("unexpected stats for empty journal: %+v", stats)
	}
	if stats.CurrentStreak != 2 {
		t.Errorf("streak should be copied verbatim, got %d", stats.CurrentStreak)
	}
}

func TestDerive_AverageAndLastEntry(t *testing.T) {
	e := entries(4, 5, 3)
	stats := Derive(e, localstore.StreakRecord{Current: 3, Longest: 5})

	if stats.TotalEntries != 3 {
		t.Errorf("total = %d", stats.TotalEntries)
	}
	if stats.AverageMood != 4 {
		t.Errorf("average = %v, want 4", stats.AverageMood)
	}
	if stats.CurrentStreak != 3 {
		t.Errorf("streak = %d", stats.CurrentStreak)
	}
	if stats.LastEntry == nil || !stats.LastEntry.Equal(e[2].Date) {
		t.Errorf("last entry = %v, want %v", stats.LastEntry, e[2].Date)
	}
}

func TestDerive_RoundsToOneDecimal(t *testing.T) {
	tests := []struct {
		moods []float64
		want  float64
	}{
		{[]float64{4, 3, 3}, 3.3},    // 3.333...
		{[]float64{5, 4, 4}, 4.3},    // 4.333...
		{[]float64{1, 2}, 1.5},       // exact
		{[]float64{2, 2, 3}, 2.3},    // 2.333...
		{[]float64{5, 5, 4}, 4.7},    // 4.666...
		{[]float64{3.25, 3.25}, 3.3}, // half rounds up
	}
	for _, tt := range tests {
		if got := Derive(entries(tt.moods...), localstore.StreakRecord{}).AverageMood; got != tt.want {
			t.Errorf("Derive(%v).AverageMood = %v, want %v", tt.moods, got, tt.want)
		}
	}
}

func TestMoodLabelAndEmoji_Boundaries(t *testing.T) {
	tests := []struct {
		v     float64
		label string
		emoji string
	}{
		{5, "Great", "😊"},
		{4, "Great", "😊"},
		{3.9, "Good", "😐"},
		{3, "Good", "😐"},
		{2.9, "Okay", "😔"},
		{2, "Okay", "😔"},
		{1.9, "Poor", "😢"},
		{0, "Poor", "😢"},
	}
	for _, tt := range tests {
		if got := MoodLabel(tt.v); got != tt.label {
			t.Errorf("MoodLabel(%v) = %q, want %q", tt.v, got, tt.label)
		}
		if got := MoodEmoji(tt.v); got != tt.emoji {
			t.Errorf("MoodEmoji(%v) = %q, want %q", tt.v, got, tt.emoji)
		}
	}
}

func TestEncouragement_Threshold(t *testing.T) {
	praise := Encouragement(MoodStats{AverageMood: 3.5})
	nudge := Encouragement(MoodStats{AverageMood: 3.4})
	if praise == nudge {
		t.Fatal("expected different sentences either side of 3.5")
	}
	if praise != "Great job maintaining positive mental health!" {
		t.Errorf("unexpected praise %q", praise)
	}
}

func TestMoodPercent_Clamped(t *testing.T) {
	cases := map[float64]float64{0: 0, 2.5: 50, 5: 100, 7: 100, -1: 0}
	for in, want := range cases {
		if got := MoodPercent(in); got != want {
			t.Errorf("MoodPercent(%v) = %v, want %v", in, got, want)
		}
	}
}

func TestFormatMood(t *testing.T) {
	if got := formatMood(4); got != "4" {
		t.Errorf("got %q", got)
	}
	if got := formatMood(3.5); got != "3.5" {
		t.Errorf("got %q", got)
	}
}
