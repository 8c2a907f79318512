package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct {
		name, in, want string
	}{
		{"empty", "", ""},
		{"plain", "You are doing great.", "You are doing great."},
		{"apostrophe survives", "I'm here for you", "I'm here for you"},
		{"script removed", `Hi <script>alert(1)</script>there`, "Hi there"},
		{"tags stripped", "<b>Breathe</b> slowly", "Breathe slowly"},
		{"whitespace trimmed", "  ok \n", "ok"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Text(tc.in); got != tc.want {
				t.Errorf("Text(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestNote_Truncates(t *testing.T) {
	if got := Note("héllo world", 5); got != "héllo" {
		t.Errorf("expected rune-aware truncation, got %q", got)
	}
	if got := Note("short", 0); got != "short" {
		t.Errorf("zero limit should not truncate, got %q", got)
	}
}
