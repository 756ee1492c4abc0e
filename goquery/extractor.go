// Package goquery extracts resolved content back out of rendered HTML
// previews for cross-format consistency checks.
package goquery

import (
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/JimmyYuu29/cartarev"
)

var _ cartarev.TextExtractor = (*Extractor)(nil)

// Extractor reads the data-var and data-block annotations the preview
// renderer attaches to resolved content.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// ExtractVars returns the text of every element annotated with data-var,
// keyed by variable name.
func (e *Extractor) ExtractVars(html string) (map[string]string, error) {
	return e.extract(html, "data-var")
}

// ExtractBlocks returns the text of every element annotated with data-block,
// keyed by block key.
func (e *Extractor) ExtractBlocks(html string) (map[string]string, error) {
	return e.extract(html, "data-block")
}

func (e *Extractor) extract(html, attr string) (map[string]string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, cartarev.Errorf(cartarev.EINVALID, "parsing HTML: %s", err)
	}

	out := make(map[string]string)
	doc.Find("[" + attr + "]").Each(func(_ int, sel *goquery.Selection) {
		name, ok := sel.Attr(attr)
		if !ok || name == "" {
			return
		}
		out[name] = sel.Text()
	})
	return out, nil
}
