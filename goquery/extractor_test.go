package goquery_test

import (
	"testing"

	"github.com/JimmyYuu29/cartarev/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractorExtractVars(t *testing.T) {
	t.Parallel()

	extractor := goquery.NewExtractor()

	html := `<html><body>
<p>Cliente: <span data-var="Nombre_Cliente">ACME S.L.</span></p>
<p>Cierre: <span data-var="Fecha_Cierre">31 de diciembre de 2026</span></p>
<p>Sin anotar</p>
</body></html>`

	vars, err := extractor.ExtractVars(html)
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"Nombre_Cliente": "ACME S.L.",
		"Fecha_Cierre":   "31 de diciembre de 2026",
	}, vars)
}

func TestExtractorExtractBlocks(t *testing.T) {
	t.Parallel()

	extractor := goquery.NewExtractor()

	html := `<html><body>
<div data-block="alcance">El alcance cubre todo.
Nota: detalle adicional</div>
<div data-block="honorarios">Honorarios según contrato <b>firmado</b></div>
</body></html>`

	blocks, err := extractor.ExtractBlocks(html)
	require.NoError(t, err)

	assert.Equal(t, "El alcance cubre todo.\nNota: detalle adicional", blocks["alcance"])
	assert.Equal(t, "Honorarios según contrato firmado", blocks["honorarios"])
}

func TestExtractorEmptyDocument(t *testing.T) {
	t.Parallel()

	extractor := goquery.NewExtractor()

	vars, err := extractor.ExtractVars("<html><body></body></html>")
	require.NoError(t, err)
	assert.Empty(t, vars)
}
