package mock

import (
	"context"

	"github.com/JimmyYuu29/cartarev"
)

var _ cartarev.DocumentRenderer = (*DocumentRenderer)(nil)

// DocumentRenderer is a mock implementation of cartarev.DocumentRenderer.
type DocumentRenderer struct {
	RenderDocumentFn func(ctx context.Context, templatePath string, vars map[string]string) ([]byte, []cartarev.Warning, error)
}

func (r *DocumentRenderer) RenderDocument(ctx context.Context, templatePath string, vars map[string]string) ([]byte, []cartarev.Warning, error) {
	return r.RenderDocumentFn(ctx, templatePath, vars)
}

var _ cartarev.PreviewRenderer = (*PreviewRenderer)(nil)

// PreviewRenderer is a mock implementation of cartarev.PreviewRenderer.
type PreviewRenderer struct {
	RenderPreviewFn func(ctx context.Context, params cartarev.PreviewParams) (string, error)
}

func (r *PreviewRenderer) RenderPreview(ctx context.Context, params cartarev.PreviewParams) (string, error) {
	return r.RenderPreviewFn(ctx, params)
}

var _ cartarev.Sanitizer = (*Sanitizer)(nil)

// Sanitizer is a mock implementation of cartarev.Sanitizer. Zero-value
// methods pass content through unchanged.
type Sanitizer struct {
	SanitizeFn  func(html string) string
	StripTagsFn func(html string) string
}

func (s *Sanitizer) Sanitize(html string) string {
	if s.SanitizeFn == nil {
		return html
	}
	return s.SanitizeFn(html)
}

func (s *Sanitizer) StripTags(html string) string {
	if s.StripTagsFn == nil {
		return html
	}
	return s.StripTagsFn(html)
}

var _ cartarev.Converter = (*Converter)(nil)

// Converter is a mock implementation of cartarev.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}

var _ cartarev.TextExtractor = (*TextExtractor)(nil)

// TextExtractor is a mock implementation of cartarev.TextExtractor.
type TextExtractor struct {
	ExtractVarsFn   func(html string) (map[string]string, error)
	ExtractBlocksFn func(html string) (map[string]string, error)
}

func (e *TextExtractor) ExtractVars(html string) (map[string]string, error) {
	return e.ExtractVarsFn(html)
}

func (e *TextExtractor) ExtractBlocks(html string) (map[string]string, error) {
	return e.ExtractBlocksFn(html)
}
