package layouts

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"
)

func renderBase(t *testing.T, c Chrome) string {
	t.Helper()
	var b strings.Builder
	ctx := templ.WithChildren(WithChrome(context.Background(), c), templ.Raw("<p>body</p>"))
	if err := Base("Test").Render(ctx, &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestBase_SignedOutHidesPrivateLinks(t *testing.T) {
	html := renderBase(t, Chrome{})
	if strings.Contains(html, `href="/moods"`) || strings.Contains(html, "Log out") {
		t.Error("signed-out navbar should hide journal links and logout")
	}
}

func TestBase_SignedInShowsNameAndActiveLink(t *testing.T) {
	html := renderBase(t, Chrome{SignedIn: true, UserName: "<Ana>", ActivePath: "/moods", CSRFToken: "tok"})
	if !strings.Contains(html, "&lt;Ana&gt;") {
		t.Error("display name should be escaped")
	}
	if !strings.Contains(html, `<a href="/moods" class="active">`) {
		t.Error("active path should be highlighted")
	}
	if !strings.Contains(html, `hx-headers="{&#34;X-CSRF-Token&#34;:&#34;tok&#34;}"`) {
		t.Error("CSRF token should be exposed to htmx")
	}
}

func TestBase_Flash(t *testing.T) {
	html := renderBase(t, Chrome{Flash: Flash{Kind: FlashSuccess, Message: "Mood saved."}})
	if !strings.Contains(html, `alert-success" role="status">Mood saved.`) {
		t.Error("expected success banner")
	}

	html = renderBase(t, Chrome{Flash: Flash{Kind: "bogus", Message: "hidden"}})
	if strings.Contains(html, "hidden") {
		t.Error("unknown flash kinds should not render")
	}
}

func TestBase_WrapsChildrenInMain(t *testing.T) {
	html := renderBase(t, Chrome{})
	if !strings.HasPrefix(html, "<!doctype html>") {
		t.Errorf("expected doctype first, got %.40q", html)
	}
	main := strings.Index(html, `<main class="container">`)
	body := strings.Index(html, "<p>body</p>")
	if main < 0 || body < main || body > strings.Index(html, "</main>") {
		t.Error("page content should render inside <main>")
	}
	if !strings.Contains(html, "<title>Test | NeuroCare</title>") {
		t.Error("expected page title")
	}
}

func TestCSRFField_EscapesToken(t *testing.T) {
	var b strings.Builder
	if err := CSRFField(`a"b`).Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	if got, want := b.String(), `<input type="hidden" name="csrf_token" value="a&#34;b">`; got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}
