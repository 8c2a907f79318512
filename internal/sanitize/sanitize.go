// Package sanitize cleans text that arrives from outside this server before
// it is stored or rendered: chat replies from the completion endpoints and
// notes typed into the mood journal. Uses bluemonday's strict policy, which
// strips every tag, so what remains is plain text.
package sanitize

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// policy is the singleton strict policy. Initialized once via sync.Once.
var (
	policy     *bluemonday.Policy
	policyOnce sync.Once
)

// getPolicy returns the shared policy, initializing it on first call.
func getPolicy() *bluemonday.Policy {
	policyOnce.Do(func() {
		policy = bluemonday.StrictPolicy()
	})
	return policy
}

// Text strips all HTML from input and returns plain text. The strict
// policy entity-encodes what it keeps; those entities are decoded again
// because templates escape on output.
func Text(input string) string {
	if input == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(getPolicy().Sanitize(input)))
}

// Note sanitizes a journal note and truncates it to maxRunes characters.
func Note(input string, maxRunes int) string {
	s := Text(input)
	if maxRunes > 0 {
		if r := []rune(s); len(r) > maxRunes {
			s = strings.TrimSpace(string(r[:maxRunes]))
		}
	}
	return s
}
