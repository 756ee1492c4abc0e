// Package render assembles review documents: it resolves block content,
// binds display variables and produces the Word and HTML projections of a
// review in one pass.
package render

import (
	"context"
	"encoding/hex"
	"fmt"
	"html"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/JimmyYuu29/cartarev"
	"github.com/JimmyYuu29/cartarev/expr"
)

// Pipeline renders reviews. Both projections are produced from one shared
// variable map, so identical inputs yield identical content in both formats.
type Pipeline struct {
	Schemas   cartarev.SchemaRegistry
	Docx      cartarev.DocumentRenderer
	Sanitizer cartarev.Sanitizer

	// TemplateDir is where schema template file names are resolved.
	TemplateDir string

	// Now is injectable for deterministic filenames in tests.
	Now func() time.Time
}

// NewPipeline creates a Pipeline.
func NewPipeline(schemas cartarev.SchemaRegistry, docx cartarev.DocumentRenderer, sanitizer cartarev.Sanitizer, templateDir string) *Pipeline {
	return &Pipeline{
		Schemas:     schemas,
		Docx:        docx,
		Sanitizer:   sanitizer,
		TemplateDir: templateDir,
		Now:         time.Now,
	}
}

// Render produces the Word and HTML projections of a review.
func (p *Pipeline) Render(ctx context.Context, review *cartarev.Review) (*cartarev.RenderResult, error) {
	schema, err := p.Schemas.Schema(review.DocType)
	if err != nil {
		return nil, err
	}
	if schema.HTMLTemplate == "" {
		return nil, cartarev.Errorf(cartarev.EINVALID, "schema %q declares no HTML template", schema.DocType)
	}

	raw, err := os.ReadFile(filepath.Join(p.TemplateDir, schema.HTMLTemplate))
	if err != nil {
		return nil, fmt.Errorf("reading HTML template: %w", err)
	}
	prepared, extracted := cartarev.PrepareTemplate(string(raw))

	renderCtx := make(cartarev.RenderContext, len(review.Data))
	for name, value := range review.Data {
		renderCtx[name] = value
	}
	if err := p.evalConditionals(schema, renderCtx); err != nil {
		return nil, err
	}

	binder := cartarev.NewBinder(schema.Formats, schema.Fields)
	vars := binder.DisplayVars(renderCtx)

	warnings, err := p.resolveBlocks(schema, extracted, review.Data, vars)
	if err != nil {
		return nil, err
	}

	result := &cartarev.RenderResult{
		DocType:  schema.DocType,
		ReviewID: review.ID,
		Vars:     vars,
	}

	blockKeys := make(map[string]bool, len(schema.Blocks))
	for i := range schema.Blocks {
		blockKeys[schema.Blocks[i].Key] = true
	}
	for _, b := range extracted {
		blockKeys[b.Key] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	var docxWarns, bodyWarns []cartarev.Warning
	g.Go(func() error {
		var err error
		result.HTML, bodyWarns, err = buildBodyHTML(prepared, vars, blockKeys)
		return err
	})
	if schema.DocxTemplate != "" {
		g.Go(func() error {
			var err error
			result.Docx, docxWarns, err = p.Docx.RenderDocument(gctx, filepath.Join(p.TemplateDir, schema.DocxTemplate), vars)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	result.Warnings = dedupeWarnings(append(warnings, append(bodyWarns, docxWarns...)...))
	result.ContentHash = contentHash(result.HTML, result.Docx)
	if len(result.Docx) > 0 {
		result.Filename = p.filename(review)
	}
	return result, nil
}

// evalConditionals computes derived variables from the schema's expressions
// over the raw form data. Expressions were parse-checked at schema load;
// an evaluation failure here means the data and the expression disagree on
// types, which is a configuration error.
func (p *Pipeline) evalConditionals(schema *cartarev.DocumentSchema, renderCtx cartarev.RenderContext) error {
	for name, src := range schema.Conditionals {
		e, err := expr.Parse(src)
		if err != nil {
			return err
		}
		value, err := e.Eval(renderCtx)
		if err != nil {
			return cartarev.Errorf(cartarev.EINVALID, "conditional %q: %s", name, cartarev.ErrorMessage(err))
		}
		renderCtx[name] = value
	}
	return nil
}

// resolveBlocks computes the final content of every block and stores it in
// vars under the block's precomputed variable name. Base text comes from the
// schema's inner template, or from the anchor region in the HTML template
// when the schema declares none. A block with neither is a configuration
// error.
func (p *Pipeline) resolveBlocks(schema *cartarev.DocumentSchema, extracted []cartarev.ExtractedBlock, data map[string]any, vars map[string]string) ([]cartarev.Warning, error) {
	var warnings []cartarev.Warning

	baseFor := func(key string) (string, bool) {
		for _, b := range extracted {
			if b.Key == key {
				return b.BaseText, true
			}
		}
		return "", false
	}

	for i := range schema.Blocks {
		def := &schema.Blocks[i]
		base := def.InnerTemplate
		if base == "" {
			found, ok := baseFor(def.Key)
			if !ok {
				return nil, cartarev.Errorf(cartarev.EINVALID, "block %q not found in template", def.Key)
			}
			base = found
		}
		baseResolved, warns := cartarev.ReplacePlaceholders(base, vars)
		warnings = append(warnings, warns...)

		custom := p.customText(def, data[def.CustomField])
		max := def.MaxLength
		if max <= 0 {
			max = cartarev.DefaultMaxCustomLength
		}
		custom, truncated := cartarev.TruncateCustom(custom, max)
		if truncated {
			warnings = append(warnings, cartarev.Warning{
				Code:    cartarev.WarnTruncated,
				Field:   def.CustomField,
				Message: fmt.Sprintf("custom content of block %q truncated to %d characters", def.Key, max),
			})
		}

		vars[cartarev.BlockVar(def.Key)] = cartarev.Combine(baseResolved, custom, def.AppendMode, def.Label)
	}

	// Anchor regions without a schema definition render their base text only.
	for _, b := range extracted {
		name := cartarev.BlockVar(b.Key)
		if _, ok := vars[name]; ok {
			continue
		}
		resolved, warns := cartarev.ReplacePlaceholders(b.BaseText, vars)
		warnings = append(warnings, warns...)
		vars[name] = resolved
	}
	return warnings, nil
}

// customText reduces the stored custom value to the plain text shared by
// both projections.
func (p *Pipeline) customText(def *cartarev.BlockDefinition, value any) string {
	s, _ := value.(string)
	if s == "" {
		return ""
	}
	if def.CustomType == cartarev.CustomRichText {
		return WordText(p.Sanitizer.Sanitize(s))
	}
	return strings.TrimSpace(p.Sanitizer.StripTags(s))
}

// buildBodyHTML substitutes placeholders in the prepared template, wrapping
// every resolved value in an annotated element so the consistency check can
// read it back. Values are escaped; newlines stay literal and render via
// white-space handling in the page styles.
func buildBodyHTML(prepared string, vars map[string]string, blockKeys map[string]bool) (string, []cartarev.Warning, error) {
	var warnings []cartarev.Warning
	seen := make(map[string]bool)

	body := cartarev.PlaceholderPattern.ReplaceAllStringFunc(prepared, func(match string) string {
		name := cartarev.PlaceholderPattern.FindStringSubmatch(match)[1]
		value, ok := vars[name]
		if !ok && !seen[name] {
			seen[name] = true
			warnings = append(warnings, cartarev.Warning{
				Code:    cartarev.WarnUnresolved,
				Field:   name,
				Message: fmt.Sprintf("placeholder %q has no value", name),
			})
		}

		if key, isBlock := blockVarKey(name); isBlock && blockKeys[key] {
			return `<div data-block="` + key + `">` + html.EscapeString(value) + `</div>`
		}
		return `<span data-var="` + name + `">` + html.EscapeString(value) + `</span>`
	})
	return body, warnings, nil
}

// blockVarKey reports whether name is a precomputed block variable and
// returns its block key.
func blockVarKey(name string) (string, bool) {
	const prefix, suffix = "__block_", "__"
	if strings.HasPrefix(name, prefix) && strings.HasSuffix(name, suffix) && len(name) > len(prefix)+len(suffix) {
		return name[len(prefix) : len(name)-len(suffix)], true
	}
	return "", false
}

func contentHash(body string, docx []byte) string {
	h := xxhash.New()
	h.WriteString(body)
	h.Write([]byte{0})
	h.Write(docx)
	sum := h.Sum64()
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(sum >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

// filename builds the download name: document prefix, sanitized client name
// and a second-resolution timestamp.
func (p *Pipeline) filename(review *cartarev.Review) string {
	client, _ := review.Data["Nombre_Cliente"].(string)
	if client == "" {
		client = "documento"
	}
	var sb strings.Builder
	for _, r := range client {
		switch {
		case r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-':
			sb.WriteRune(r)
		case r == ' ':
			sb.WriteByte('_')
		}
	}
	client = sb.String()
	if len(client) > 50 {
		client = client[:50]
	}
	if client == "" {
		client = "documento"
	}
	return fmt.Sprintf("Carta_Manifestacion_%s_%s.docx", client, p.Now().UTC().Format("20060102_150405"))
}

func dedupeWarnings(warnings []cartarev.Warning) []cartarev.Warning {
	var out []cartarev.Warning
	seen := make(map[string]bool, len(warnings))
	for _, w := range warnings {
		key := w.Code + "\x00" + w.Field
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, w)
	}
	return out
}
