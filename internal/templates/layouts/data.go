package layouts

import "context"

// Chrome is what the page shell needs to know about the current request.
// The layout injector in app/routes.go builds one per render; plugin
// templates never import plugin types through it.
type Chrome struct {
	// SignedIn is true when the browser holds a token or identity marker.
	SignedIn bool

	// UserName is the navbar display name. May be empty when SignedIn.
	UserName string

	// CSRFToken goes into every form and into hx-headers on <body>.
	CSRFToken string

	// ActivePath highlights the matching nav link.
	ActivePath string

	// Flash is a one-shot banner carried across a redirect.
	Flash Flash
}

// Flash kinds understood by Base.
const (
	FlashSuccess = "success"
	FlashError   = "error"
)

// Flash is a banner shown above the page body.
type Flash struct {
	Kind    string
	Message string
}

type chromeKey struct{}

// WithChrome attaches c to ctx for the templates rendered under it.
func WithChrome(ctx context.Context, c Chrome) context.Context {
	return context.WithValue(ctx, chromeKey{}, c)
}

// ChromeFrom returns the Chrome attached to ctx, or the signed-out zero value.
func ChromeFrom(ctx context.Context) Chrome {
	c, _ := ctx.Value(chromeKey{}).(Chrome)
	return c
}

// IsAuthenticated reports whether the current browser is signed in.
func IsAuthenticated(ctx context.Context) bool {
	return ChromeFrom(ctx).SignedIn
}
