package main

import (
	"fmt"

	"github.com/JimmyYuu29/cartarev"
)

// Run executes the export command.
func (c *ExportCmd) Run(deps *Dependencies) error {
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

	markdown, err := deps.Converter.Convert(result.HTML)
	if err != nil {
		return err
	}

	fmt.Fprintln(deps.Stdout, markdown)
	return nil
}
