// Package etree renders Word documents by substituting placeholders into a
// .docx template. The template's XML is edited in place with etree, so all
// styling, numbering and section properties survive untouched.
package etree

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/beevik/etree"

	"github.com/JimmyYuu29/cartarev"
)

const documentPart = "word/document.xml"

var _ cartarev.DocumentRenderer = (*DocxRenderer)(nil)

// DocxRenderer substitutes {{ name }} placeholders into .docx templates.
// Word splits runs unpredictably (spell check, formatting), so placeholders
// are matched against the joined text of each paragraph, not run by run.
type DocxRenderer struct{}

// NewDocxRenderer creates a new DocxRenderer.
func NewDocxRenderer() *DocxRenderer {
	return &DocxRenderer{}
}

// RenderDocument renders the template at templatePath with vars. Newlines in
// values become <w:br/> elements. Unresolvable placeholders render empty and
// are reported once per name.
func (r *DocxRenderer) RenderDocument(ctx context.Context, templatePath string, vars map[string]string) ([]byte, []cartarev.Warning, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}

	raw, err := os.ReadFile(templatePath)
	if err != nil {
		return nil, nil, fmt.Errorf("reading template: %w", err)
	}
	return r.Render(raw, vars)
}

// Render renders an in-memory .docx template with vars.
func (r *DocxRenderer) Render(template []byte, vars map[string]string) ([]byte, []cartarev.Warning, error) {
	reader, err := zip.NewReader(bytes.NewReader(template), int64(len(template)))
	if err != nil {
		return nil, nil, cartarev.Errorf(cartarev.EINVALID, "template is not a valid .docx archive")
	}

	var docFile *zip.File
	for _, f := range reader.File {
		if f.Name == documentPart {
			docFile = f
			break
		}
	}
	if docFile == nil {
		return nil, nil, cartarev.Errorf(cartarev.EINVALID, "template has no %s part", documentPart)
	}

	rc, err := docFile.Open()
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", documentPart, err)
	}
	docXML, err := io.ReadAll(rc)
	rc.Close()
	if err != nil {
		return nil, nil, fmt.Errorf("reading %s: %w", documentPart, err)
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(docXML); err != nil {
		return nil, nil, cartarev.Errorf(cartarev.EINVALID, "template document.xml is not well-formed XML")
	}

	var warnings []cartarev.Warning
	seen := make(map[string]bool)
	for _, p := range wordElements(doc.Root(), "p") {
		for _, w := range renderParagraph(p, vars) {
			if seen[w.Field] {
				continue
			}
			seen[w.Field] = true
			warnings = append(warnings, w)
		}
	}

	rendered, err := doc.WriteToBytes()
	if err != nil {
		return nil, nil, fmt.Errorf("serializing document.xml: %w", err)
	}

	out, err := rewriteArchive(reader, rendered)
	if err != nil {
		return nil, nil, err
	}
	return out, warnings, nil
}

// renderParagraph substitutes placeholders in one paragraph. Placeholders are
// matched against the joined text of all text nodes, so one split across runs
// still resolves; each substituted value lands in the node where its match
// starts, and nodes outside any match keep their text, so sibling runs retain
// their formatting.
func renderParagraph(p *etree.Element, vars map[string]string) []cartarev.Warning {
	texts := wordElements(p, "t")
	if len(texts) == 0 {
		return nil
	}

	offsets := make([]int, len(texts))
	var joined strings.Builder
	for i, t := range texts {
		offsets[i] = joined.Len()
		joined.WriteString(t.Text())
	}
	original := joined.String()

	matches := cartarev.PlaceholderPattern.FindAllStringSubmatchIndex(original, -1)
	if len(matches) == 0 {
		return nil
	}

	// owner returns the index of the text node covering byte position pos.
	owner := func(pos int) int {
		for i := len(offsets) - 1; i > 0; i-- {
			if pos >= offsets[i] {
				return i
			}
		}
		return 0
	}

	// distribute copies original[from:to] back to the nodes that held it.
	pieces := make([]strings.Builder, len(texts))
	distribute := func(from, to int) {
		for i, start := range offsets {
			end := len(original)
			if i+1 < len(offsets) {
				end = offsets[i+1]
			}
			if start >= to || end <= from {
				continue
			}
			pieces[i].WriteString(original[max(start, from):min(end, to)])
		}
	}

	var warnings []cartarev.Warning
	prev := 0
	for _, m := range matches {
		distribute(prev, m[0])
		name := original[m[2]:m[3]]
		value, ok := vars[name]
		if !ok {
			warnings = append(warnings, cartarev.Warning{
				Code:    cartarev.WarnUnresolved,
				Field:   name,
				Message: fmt.Sprintf("placeholder %q has no value", name),
			})
		}
		pieces[owner(m[0])].WriteString(value)
		prev = m[1]
	}
	distribute(prev, len(original))

	for i, t := range texts {
		if text := pieces[i].String(); text != t.Text() {
			setNodeText(t, text)
		}
	}
	return warnings
}

// setNodeText replaces a text node's content, expanding newlines into w:br
// elements inserted after the node within its own run.
func setNodeText(t *etree.Element, text string) {
	segments := strings.Split(text, "\n")
	t.SetText(segments[0])
	t.CreateAttr("xml:space", "preserve")

	run := t.Parent()
	insertAt := t.Index() + 1
	for _, segment := range segments[1:] {
		run.InsertChildAt(insertAt, etree.NewElement("w:br"))
		insertAt++
		next := etree.NewElement("w:t")
		next.CreateAttr("xml:space", "preserve")
		next.SetText(segment)
		run.InsertChildAt(insertAt, next)
		insertAt++
	}
}

// rewriteArchive copies every entry of the template archive, swapping in the
// rendered document part.
func rewriteArchive(reader *zip.Reader, rendered []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, f := range reader.File {
		entry, err := w.CreateHeader(&zip.FileHeader{Name: f.Name, Method: f.Method})
		if err != nil {
			return nil, fmt.Errorf("writing archive entry %s: %w", f.Name, err)
		}
		if f.Name == documentPart {
			if _, err := entry.Write(rendered); err != nil {
				return nil, fmt.Errorf("writing %s: %w", f.Name, err)
			}
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("opening archive entry %s: %w", f.Name, err)
		}
		_, err = io.Copy(entry, rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("copying archive entry %s: %w", f.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("closing archive: %w", err)
	}
	return buf.Bytes(), nil
}

// ExtractText returns the plain text of a rendered .docx: paragraph texts
// joined by newlines, with breaks and tabs preserved. Used to verify that
// the Word and HTML projections carry identical content.
func ExtractText(docx []byte) (string, error) {
	reader, err := zip.NewReader(bytes.NewReader(docx), int64(len(docx)))
	if err != nil {
		return "", cartarev.Errorf(cartarev.EINVALID, "not a valid .docx archive")
	}

	for _, f := range reader.File {
		if f.Name != documentPart {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", documentPart, err)
		}
		raw, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", documentPart, err)
		}

		doc := etree.NewDocument()
		if err := doc.ReadFromBytes(raw); err != nil {
			return "", cartarev.Errorf(cartarev.EINVALID, "document.xml is not well-formed XML")
		}

		var paragraphs []string
		for _, p := range wordElements(doc.Root(), "p") {
			var sb strings.Builder
			collectText(p, &sb)
			paragraphs = append(paragraphs, sb.String())
		}
		return strings.Join(paragraphs, "\n"), nil
	}
	return "", cartarev.Errorf(cartarev.EINVALID, "archive has no %s part", documentPart)
}

func collectText(el *etree.Element, sb *strings.Builder) {
	for _, child := range el.ChildElements() {
		if child.Space != "w" {
			continue
		}
		switch child.Tag {
		case "t":
			sb.WriteString(child.Text())
		case "br", "cr":
			sb.WriteString("\n")
		case "tab":
			sb.WriteString("\t")
		default:
			collectText(child, sb)
		}
	}
}

// wordElements collects all w:<tag> descendants of el in document order.
func wordElements(el *etree.Element, tag string) []*etree.Element {
	var out []*etree.Element
	for _, child := range el.ChildElements() {
		if child.Space == "w" && child.Tag == tag {
			out = append(out, child)
			continue
		}
		out = append(out, wordElements(child, tag)...)
	}
	return out
}
