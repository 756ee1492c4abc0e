// Package bluemonday provides the HTML sanitizer for block custom content.
package bluemonday

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/JimmyYuu29/cartarev"
)

var _ cartarev.Sanitizer = (*Sanitizer)(nil)

// Sanitizer reduces employee-entered rich text to the small markup subset
// allowed in documents. Anything outside the allow list is removed, not
// escaped.
type Sanitizer struct {
	rich  *bluemonday.Policy
	strip *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer with the document markup allow list:
// b, i, u, em, strong, br, ul, ol, li, p. No attributes are allowed.
func NewSanitizer() *Sanitizer {
	rich := bluemonday.NewPolicy()
	rich.AllowElements("b", "i", "u", "em", "strong", "br", "ul", "ol", "li", "p")

	return &Sanitizer{
		rich:  rich,
		strip: bluemonday.StrictPolicy(),
	}
}

// Sanitize returns html reduced to the allowed markup subset.
func (s *Sanitizer) Sanitize(src string) string {
	return strings.TrimSpace(s.rich.Sanitize(src))
}

// StripTags returns the plain text content of html with all markup removed.
// Entities introduced by the sanitizer are decoded so the result is plain
// text, not HTML.
func (s *Sanitizer) StripTags(src string) string {
	return strings.TrimSpace(html.UnescapeString(s.strip.Sanitize(src)))
}
