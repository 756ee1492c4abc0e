// Package html renders the employee preview and supervisor pages from
// embedded templates.
package html

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/JimmyYuu29/cartarev"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var _ cartarev.PreviewRenderer = (*Renderer)(nil)

// Renderer renders HTML pages. Templates are parsed once at construction;
// rendering is safe for concurrent use.
type Renderer struct {
	tmpl *template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer() (*Renderer, error) {
	tmpl, err := template.New("").Funcs(template.FuncMap{
		// BodyHTML is assembled from escaped values by the render pipeline.
		"safe": func(s string) template.HTML { return template.HTML(s) },
	}).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parsing templates: %w", err)
	}
	return &Renderer{tmpl: tmpl}, nil
}

// RenderPreview renders the employee-facing document preview and edit form.
func (r *Renderer) RenderPreview(ctx context.Context, params cartarev.PreviewParams) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := r.tmpl.ExecuteTemplate(&sb, "preview.tmpl", params); err != nil {
		return "", fmt.Errorf("rendering preview: %w", err)
	}
	return sb.String(), nil
}

// ManagerPage carries everything the supervisor approval page needs.
type ManagerPage struct {
	Review      *cartarev.Review
	Schema      *cartarev.DocumentSchema
	Supervisors []*cartarev.Supervisor

	// Error holds a message shown after a failed authorization attempt.
	Error string

	// DownloadURL is set once authorization succeeded.
	DownloadURL string
}

// RenderManagerPage renders the supervisor approval page.
func (r *Renderer) RenderManagerPage(ctx context.Context, page ManagerPage) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := r.tmpl.ExecuteTemplate(&sb, "manager.tmpl", page); err != nil {
		return "", fmt.Errorf("rendering manager page: %w", err)
	}
	return sb.String(), nil
}
