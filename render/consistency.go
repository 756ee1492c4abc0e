package render

import (
	"strings"

	"github.com/JimmyYuu29/cartarev"
)

// Mismatch is one disagreement found between the two projections.
type Mismatch struct {
	// Kind is "var", "block" or "docx".
	Kind string
	Name string
	HTML string
	Docx string
	Want string
}

// Report is the outcome of a cross-format consistency check.
type Report struct {
	Mismatches []Mismatch
}

// OK reports whether both projections carry the expected content.
func (r *Report) OK() bool { return len(r.Mismatches) == 0 }

// CrossCheck verifies that the HTML projection carries exactly the resolved
// variable and block content, and that the same text appears in the Word
// projection's extracted text. docxText may be empty when the schema
// declares no Word template.
func CrossCheck(result *cartarev.RenderResult, extractor cartarev.TextExtractor, docxText string) (*Report, error) {
	report := &Report{}

	htmlVars, err := extractor.ExtractVars(result.HTML)
	if err != nil {
		return nil, err
	}
	for name, got := range htmlVars {
		if want := result.Vars[name]; got != want {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Kind: "var", Name: name, HTML: got, Want: want,
			})
		}
	}

	htmlBlocks, err := extractor.ExtractBlocks(result.HTML)
	if err != nil {
		return nil, err
	}
	for key, got := range htmlBlocks {
		if want := result.Vars[cartarev.BlockVar(key)]; got != want {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Kind: "block", Name: key, HTML: got, Want: want,
			})
		}
	}

	if docxText == "" {
		return report, nil
	}
	for name, want := range htmlVars {
		if want != "" && !strings.Contains(docxText, want) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Kind: "docx", Name: name, Docx: docxText, Want: want,
			})
		}
	}
	for key, want := range htmlBlocks {
		if want != "" && !strings.Contains(docxText, want) {
			report.Mismatches = append(report.Mismatches, Mismatch{
				Kind: "docx", Name: key, Docx: docxText, Want: want,
			})
		}
	}
	return report, nil
}
