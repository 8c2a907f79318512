package moods

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/neurocare/neurocare-web/internal/apperror"
	"github.com/neurocare/neurocare-web/internal/localstore"
)

func day(d int) time.Time {
	return time.Date(2026, 3, d, 20, 30, 0, 0, time.UTC)
}

func newTestService(clock *time.Time) *moodService {
	s := NewMoodService().(*moodService)
	s.now = func() time.Time { return *clock }
	return s
}

func TestNextStreak(t *testing.T) {
	tests := []struct {
		name string
		rec  localstore.StreakRecord
		want localstore.StreakRecord
	}{
		{"first entry", localstore.StreakRecord{}, localstore.StreakRecord{Current: 1, Longest: 1, LastDate: "2026-03-10"}},
		{"same day", localstore.StreakRecord{Current: 3, Longest: 4, LastDate: "2026-03-10"}, localstore.StreakRecord{Current: 3, Longest: 4, LastDate: "2026-03-10"}},
		{"next day", localstore.StreakRecord{Current: 3, Longest: 3, LastDate: "2026-03-09"}, localstore.StreakRecord{Current: 4, Longest: 4, LastDate: "2026-03-10"}},
		{"gap resets", localstore.StreakRecord{Current: 5, Longest: 5, LastDate: "2026-03-07"}, localstore.StreakRecord{Current: 1, Longest: 5, LastDate: "2026-03-10"}},
		{"garbage date resets", localstore.StreakRecord{Current: 2, Longest: 2, LastDate: "yesterday"}, localstore.StreakRecord{Current: 1, Longest: 2, LastDate: "2026-03-10"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := nextStreak(tt.rec, day(10)); got != tt.want {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestNextStreak_AcrossMonthBoundary(t *testing.T) {
	rec := localstore.StreakRecord{Current: 1, Longest: 1, LastDate: "2026-02-28"}
	if got := nextStreak(rec, day(1)); got.Current != 2 {
		t.Errorf("Feb 28 -> Mar 1 should extend the streak, got %+v", got)
	}
}

func TestParseMood(t *testing.T) {
	for _, raw := range []string{"1", " 5 "} {
		if _, err := ParseMood(raw); err != nil {
			t.Errorf("ParseMood(%q) unexpected error: %v", raw, err)
		}
	}
	for _, raw := range []string{"", "0", "6", "3.5", "great"} {
		_, err := ParseMood(raw)
		if apperror.SafeCode(err) != http.StatusUnprocessableEntity {
			t.Errorf("ParseMood(%q) expected 422, got %v", raw, err)
		}
	}
}

func TestRecord_StreakAndBadges(t *testing.T) {
	clock := day(1)
	svc := newTestService(&clock)
	store := localstore.NewMemoryStore()
	ctx := context.Background()

	res, err := svc.Record(ctx, store, RecordInput{Mood: 4, Note: "<b>good</b> day"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Awarded) != 1 || res.Awarded[0].ID != BadgeFirstEntry {
		t.Fatalf("expected first-entry badge, got %+v", res.Awarded)
	}
	if res.Entry.Note != "good day" {
		t.Errorf("note should be sanitized, got %q", res.Entry.Note)
	}

	// Six more consecutive days complete a week.
	for d := 2; d <= 7; d++ {
		clock = day(d)
		res, err = svc.Record(ctx, store, RecordInput{Mood: 3})
		if err != nil {
			t.Fatal(err)
		}
	}
	if len(res.Awarded) != 1 || res.Awarded[0].ID != BadgeWeekStreak {
		t.Fatalf("expected week-streak on day 7, got %+v", res.Awarded)
	}

	// Same day entries don't move the streak but count toward ten.
	for i := 0; i < 3; i++ {
		res, err = svc.Record(ctx, store, RecordInput{Mood: 5})
		if err != nil {
			t.Fatal(err)
		}
	}
	if len(res.Awarded) != 1 || res.Awarded[0].ID != BadgeTenEntries {
		t.Fatalf("expected ten-entries on the tenth entry, got %+v", res.Awarded)
	}

	journal, err := svc.Journal(ctx, store)
	if err != nil {
		t.Fatal(err)
	}
	if len(journal.Entries) != 10 {
		t.Errorf("entries = %d", len(journal.Entries))
	}
	if journal.Entries[0].Mood != 5 || journal.Entries[9].Mood != 4 {
		t.Error("journal should list newest first")
	}
	if journal.Streak.Current != 7 || journal.Streak.Longest != 7 {
		t.Errorf("streak = %+v", journal.Streak)
	}
	if len(journal.Badges) != 3 {
		t.Errorf("badges = %+v", journal.Badges)
	}

	// Stored order stays chronological for the dashboard.
	stored, _ := localstore.Moods(ctx, store)
	if stored[0].Mood != 4 {
		t.Error("stored journal should be in insertion order")
	}
}

func TestRecord_BadgesAwardedOnce(t *testing.T) {
	clock := day(1)
	svc := newTestService(&clock)
	store := localstore.NewMemoryStore()

	_, _ = svc.Record(context.Background(), store, RecordInput{Mood: 3})
	res, err := svc.Record(context.Background(), store, RecordInput{Mood: 3})
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Awarded) != 0 {
		t.Errorf("no badge expected on the second entry, got %+v", res.Awarded)
	}
}

func TestRecord_RejectsOutOfRange(t *testing.T) {
	clock := day(1)
	store := localstore.NewMemoryStore()
	_, err := newTestService(&clock).Record(context.Background(), store, RecordInput{Mood: 9})
	if apperror.SafeCode(err) != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %v", err)
	}
	if store.Has(localstore.KeyMoods) {
		t.Error("nothing should be stored for an invalid entry")
	}
}

// --- Handler Tests ---

const testBrowserID = "0b7e0f5c-6f2e-4d8a-9a51-3c2f1e6d7b90"

func postMood(t *testing.T, provider localstore.Provider, form url.Values, htmx bool) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/moods", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.AddCookie(&http.Cookie{Name: "neurocare_browser", Value: testBrowserID})
	if htmx {
		req.Header.Set("HX-Request", "true")
	}
	rec := httptest.NewRecorder()

	h := NewHandler(NewMoodService())
	if err := localstore.Middleware(provider)(h.Record)(e.NewContext(req, rec)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return rec
}

func TestHandlerRecord_InvalidIs422(t *testing.T) {
	rec := postMood(t, localstore.NewMemoryProvider(), url.Values{"mood": {"9"}, "note": {"kept"}}, false)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "Please choose a mood between 1 and 5") {
		t.Error("expected inline validation message")
	}
	if !strings.Contains(body, ">kept</textarea>") {
		t.Error("note should be kept on validation failure")
	}
}

func TestHandlerRecord_SuccessRedirects(t *testing.T) {
	provider := localstore.NewMemoryProvider()
	rec := postMood(t, provider, url.Values{"mood": {"4"}}, false)
	if rec.Code != http.StatusSeeOther || rec.Header().Get("Location") != "/moods" {
		t.Fatalf("expected redirect to /moods, got %d %q", rec.Code, rec.Header().Get("Location"))
	}
	entries, _ := localstore.Moods(context.Background(), provider.For(testBrowserID))
	if len(entries) != 1 {
		t.Errorf("expected one stored entry, got %d", len(entries))
	}
	if cookie := rec.Header().Get("Set-Cookie"); !strings.Contains(cookie, "neurocare_flash=") || !strings.Contains(cookie, "First+Step") {
		t.Errorf("expected a flash naming the new badge, got %q", cookie)
	}
}

func TestHandlerRecord_HTMXSwapsJournal(t *testing.T) {
	rec := postMood(t, localstore.NewMemoryProvider(), url.Values{"mood": {"5"}}, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.HasPrefix(body, `<div id="journal">`) {
		t.Error("HTMX response should be the journal fragment")
	}
	if !strings.Contains(body, "New badge earned: First Step") {
		t.Error("expected badge notice")
	}
}
