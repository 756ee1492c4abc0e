package cartarev

import "context"

// DocxMediaType is the MIME type of rendered Word documents.
const DocxMediaType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// DocumentRenderer projects fully-resolved display variables into a Word
// document. The template is treated as read-only; concurrent renders of the
// same template are safe.
type DocumentRenderer interface {
	// RenderDocument substitutes vars into the .docx template at
	// templatePath and returns the rendered document bytes. Unresolvable
	// placeholders become empty strings and are reported as warnings.
	RenderDocument(ctx context.Context, templatePath string, vars map[string]string) ([]byte, []Warning, error)
}

// PreviewBlock is a block prepared for HTML preview rendering: the block's
// definition plus the employee's editable custom field.
type PreviewBlock struct {
	Key         string
	CustomField string
	CustomValue string
	CustomType  CustomFieldType
	AppendMode  AppendMode
	Label       string
	MaxLength   int
	Description string
}

// PreviewParams carries everything the HTML preview needs. BodyHTML is the
// document body with all variables and blocks already resolved; it must
// contain the exact same text content as the Word rendering.
type PreviewParams struct {
	Schema         *DocumentSchema
	ReviewID       string
	Status         ReviewStatus
	CanEdit        bool
	EditableFields []string
	BodyHTML       string
	Blocks         []PreviewBlock
}

// PreviewRenderer produces the HTML projection of a review document.
type PreviewRenderer interface {
	RenderPreview(ctx context.Context, params PreviewParams) (string, error)
}

// Sanitizer reduces user-supplied rich text to the allowed minimal markup
// subset (bold, italic, underline, line break, lists, paragraph). Unknown
// tags are removed with their inner text preserved.
type Sanitizer interface {
	// Sanitize returns html restricted to the allowed subset.
	Sanitize(html string) string

	// StripTags removes all markup and returns plain text.
	StripTags(html string) string
}

// Converter transforms HTML content into Markdown.
type Converter interface {
	Convert(html string) (string, error)
}

// TextExtractor pulls resolved variable and block text back out of a
// rendered HTML preview, keyed by variable name and block key. Used to
// verify cross-format consistency against the Word rendering.
type TextExtractor interface {
	ExtractVars(html string) (map[string]string, error)
	ExtractBlocks(html string) (map[string]string, error)
}

// RenderResult is the outcome of one dual render. Given identical inputs
// the result is byte-identical; warnings record non-fatal conditions such
// as truncated custom content or unresolved placeholders.
type RenderResult struct {
	DocType  string
	ReviewID string

	// Docx holds the rendered Word document, empty if the schema declares
	// no Word template.
	Docx     []byte
	Filename string

	// HTML holds the rendered preview.
	HTML string

	// Vars are the resolved display strings used by both projections.
	Vars map[string]string

	// ContentHash fingerprints the rendered content of both projections.
	ContentHash string

	Warnings []Warning
}
