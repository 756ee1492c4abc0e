package main

import (
	"fmt"

	"github.com/JimmyYuu29/cartarev"
)

// Run executes the list command.
func (c *ListCmd) Run(deps *Dependencies) error {
	var filter cartarev.ReviewFilter
	if c.Status != "" {
		status := cartarev.ReviewStatus(c.Status)
		filter.Status = &status
	}
	if c.DocType != "" {
		filter.DocType = &c.DocType
	}

	reviews, err := deps.Reviews.FindReviews(deps.Ctx, filter)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", cartarev.ErrorMessage(err))
		return err
	}

	if len(reviews) == 0 {
		fmt.Fprintln(deps.Stdout, "No reviews found.")
		return nil
	}

	for _, r := range reviews {
		client, _ := r.Data["Nombre_Cliente"].(string)
		fmt.Fprintf(deps.Stdout, "%s  %-10s  %s  %s\n", r.ID, r.Status, r.DocType, client)
	}

	return nil
}
