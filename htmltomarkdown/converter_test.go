package htmltomarkdown_test

import (
	"testing"

	"github.com/JimmyYuu29/cartarev"
	"github.com/JimmyYuu29/cartarev/htmltomarkdown"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Converter implements cartarev.Converter at compile time.
var _ cartarev.Converter = (*htmltomarkdown.Converter)(nil)

func TestConverter_Convert(t *testing.T) {
	t.Parallel()

	t.Run("converts basic paragraph", func(t *testing.T) {
		t.Parallel()

		html := `<p>Carta de manifestaciones.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "Carta de manifestaciones.")
	})

	t.Run("converts headings", func(t *testing.T) {
		t.Parallel()

		html := `<h1>Carta</h1><h2>Alcance</h2>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "# Carta")
		assert.Contains(t, md, "## Alcance")
	})

	t.Run("converts unordered lists", func(t *testing.T) {
		t.Parallel()

		html := `<ul><li>Primera</li><li>Segunda</li></ul>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "- Primera")
		assert.Contains(t, md, "- Segunda")
	})

	t.Run("converts tables to pipe syntax", func(t *testing.T) {
		t.Parallel()

		html := `<table><thead><tr><th>Concepto</th><th>Importe</th></tr></thead>` +
			`<tbody><tr><td>Honorarios</td><td>1.200,00 EUR</td></tr></tbody></table>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "| Concepto | Importe |")
		assert.Contains(t, md, "| Honorarios | 1.200,00 EUR |")
	})

	t.Run("converts bold and italic", func(t *testing.T) {
		t.Parallel()

		html := `<p><strong>Importante</strong> y <em>adicional</em>.</p>`

		conv := htmltomarkdown.NewConverter()
		md, err := conv.Convert(html)

		require.NoError(t, err)
		assert.Contains(t, md, "**Importante**")
		assert.Contains(t, md, "*adicional*")
	})

	t.Run("returns error for empty input", func(t *testing.T) {
		t.Parallel()

		conv := htmltomarkdown.NewConverter()
		_, err := conv.Convert("")

		require.Error(t, err)
		assert.Equal(t, cartarev.EINVALID, cartarev.ErrorCode(err))
	})
}
