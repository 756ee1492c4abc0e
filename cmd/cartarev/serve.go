package main

import (
	"fmt"
	"os"
	"os/signal"

	cartahttp "github.com/JimmyYuu29/cartarev/http"
)

// Run executes the serve command. It blocks until interrupted.
func (c *ServeCmd) Run(deps *Dependencies) error {
	server := cartahttp.NewServer()
	server.Addr = c.Addr
	server.BaseURL = c.BaseURL
	server.ReviewService = deps.Reviews
	server.Schemas = deps.Schemas
	server.Validator = deps.Validator
	server.Auth = deps.Auth
	server.Tokens = deps.Tokens
	server.Pipeline = deps.Pipeline
	server.Pages = deps.Pages
	server.Converter = deps.Converter

	if err := server.Open(); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	defer server.Close()

	fmt.Fprintf(deps.Stdout, "listening on %s\n", server.URL())

	ctx, stop := signal.NotifyContext(deps.Ctx, os.Interrupt)
	defer stop()
	<-ctx.Done()

	fmt.Fprintln(deps.Stdout, "shutting down")
	return nil
}
