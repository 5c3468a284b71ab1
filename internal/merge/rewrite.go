package merge

import (
	"strings"

	"github.com/lherron/sitemerge/internal/domain"
)

// Rewriter substitutes the source base URL with the destination base URL.
// It is a plain substring replacement, not a URL-aware parser: stored
// content is predominantly HTML with literal absolute links, and the blunt
// approach survives malformed markup that a parser would choke on.
type Rewriter struct {
	oldURL string
	newURL string
}

// NewRewriter creates a rewriter mapping oldURL to newURL. Trailing
// slashes are stripped from both sides so a configured base URL of
// "https://x/" does not double the slash in rewritten paths. Either side
// being empty disables rewriting.
func NewRewriter(oldURL, newURL string) *Rewriter {
	return &Rewriter{
		oldURL: strings.TrimRight(oldURL, "/"),
		newURL: strings.TrimRight(newURL, "/"),
	}
}

// Apply rewrites every occurrence of the source URL in s.
func (r *Rewriter) Apply(s string) string {
	if r.oldURL == "" || r.newURL == "" || r.oldURL == r.newURL {
		return s
	}
	return strings.ReplaceAll(s, r.oldURL, r.newURL)
}

// ApplyMeta rewrites a metadata value when it is string-shaped. Structured
// values pass through untouched.
func (r *Rewriter) ApplyMeta(v domain.MetaValue) domain.MetaValue {
	return v.MapString(r.Apply)
}
