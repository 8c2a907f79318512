package pages

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/neurocare/neurocare-web/internal/templates/layouts"
)

// render renders a component to a string.
func render(t *testing.T, ctx context.Context, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	if err := c.Render(ctx, &buf); err != nil {
		t.Fatalf("render: %v", err)
	}
	return buf.String()
}

func TestCrisisResources_ListsHelplines(t *testing.T) {
	html := render(t, context.Background(), CrisisResources())
	for _, want := range []string{"AASRA", `href="tel:+919820466726"`, `href="tel:112"`, "findahelpline.com"} {
		if !strings.Contains(html, want) {
			t.Errorf("expected page to contain %q", want)
		}
	}
}

func TestMentalHealthTips_RendersEverySection(t *testing.T) {
	html := render(t, context.Background(), MentalHealthTips())
	for _, s := range TipSections {
		if !strings.Contains(html, templ.EscapeString(s.Title)) {
			t.Errorf("missing section %q", s.Title)
		}
	}
}

func TestErrorPage_EscapesMessage(t *testing.T) {
	html := render(t, context.Background(), ErrorPage(404, "<script>x</script>"))
	if strings.Contains(html, "<script>x</script>") {
		t.Error("message should be escaped")
	}
	if !strings.Contains(html, "Not Found") {
		t.Error("expected status text")
	}
}

func TestLanding_DependsOnAuthState(t *testing.T) {
	anon := render(t, context.Background(), Landing())
	if !strings.Contains(anon, `href="/register"`) {
		t.Error("anonymous landing should offer registration")
	}

	ctx := layouts.WithChrome(context.Background(), layouts.Chrome{SignedIn: true, UserName: "Ana"})
	authed := render(t, ctx, Landing())
	if !strings.Contains(authed, "Go to your dashboard") {
		t.Error("signed-in landing should link to the dashboard")
	}
	if !strings.Contains(authed, "Log out") {
		t.Error("signed-in navbar should offer logout")
	}
}

func TestTelURI(t *testing.T) {
	cases := map[string]string{
		"1860 266 2345":                  "18602662345",
		"+91-22-2552 1111":               "+912225521111",
		"112 (Police / Ambulance / Fire)": "112",
	}
	for in, want := range cases {
		if got := telURI(in); got != want {
			t.Errorf("telURI(%q) = %q, want %q", in, got, want)
		}
	}
}
