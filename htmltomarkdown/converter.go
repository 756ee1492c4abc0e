package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	"github.com/JimmyYuu29/cartarev"
)

// Ensure Converter implements cartarev.Converter at compile time.
var _ cartarev.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to produce the Markdown export of a
// rendered document preview.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter. The table plugin keeps tabular
// sections of the preview readable in the exported Markdown.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", cartarev.Errorf(cartarev.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return result, nil
}
