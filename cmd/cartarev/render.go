package main

import (
	"fmt"
	"os"

	"github.com/JimmyYuu29/cartarev"
	"github.com/JimmyYuu29/cartarev/etree"
	"github.com/JimmyYuu29/cartarev/render"
)

// Run executes the render command.
func (c *RenderCmd) Run(deps *Dependencies) error {
	review, err := deps.Reviews.FindReviewByID(deps.Ctx, c.ID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cartarev.ErrorMessage(err))
		return err
	}

	result, err := deps.Pipeline.Render(deps.Ctx, review)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cartarev.ErrorMessage(err))
		return err
	}
	for _, warning := range result.Warnings {
		fmt.Fprintf(deps.Stderr, "warning: %s\n", warning.Message)
	}

	if c.Check {
		var docxText string
		if len(result.Docx) > 0 {
			docxText, err = etree.ExtractText(result.Docx)
			if err != nil {
				return err
			}
		}
		report, err := render.CrossCheck(result, deps.Extractor, docxText)
		if err != nil {
			return err
		}
		if !report.OK() {
			for _, m := range report.Mismatches {
				fmt.Fprintf(deps.Stderr, "mismatch (%s) %s: want %q\n", m.Kind, m.Name, m.Want)
			}
			return fmt.Errorf("projections disagree on %d values", len(report.Mismatches))
		}
		fmt.Fprintln(deps.Stdout, "projections are consistent")
	}

	if len(result.Docx) == 0 {
		return fmt.Errorf("document type %q has no Word template", review.DocType)
	}

	out := c.Out
	if out == "" {
		out = result.Filename
	}
	if err := os.WriteFile(out, result.Docx, 0644); err != nil {
		return fmt.Errorf("failed to write %q: %w", out, err)
	}

	fmt.Fprintf(deps.Stdout, "wrote %s (%d bytes, hash %s)\n", out, len(result.Docx), result.ContentHash)
	return nil
}
