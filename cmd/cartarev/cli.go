package main

import (
	"context"
	"io"

	"github.com/JimmyYuu29/cartarev"
	"github.com/JimmyYuu29/cartarev/auth"
	cartahtml "github.com/JimmyYuu29/cartarev/html"
	"github.com/JimmyYuu29/cartarev/render"
	"github.com/JimmyYuu29/cartarev/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx         context.Context
	Stdout      io.Writer
	Stderr      io.Writer
	DB          *sqlite.DB
	Reviews     cartarev.ReviewService
	Schemas     cartarev.SchemaRegistry
	Supervisors cartarev.SupervisorDirectory
	Tokens      cartarev.TokenService
	Codes       cartarev.ApprovalCodeService
	Validator   *cartarev.Validator
	Auth        *auth.Service
	Pipeline    *render.Pipeline
	Pages       *cartahtml.Renderer
	Converter   cartarev.Converter
	Extractor   cartarev.TextExtractor
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Serve        ServeCmd        `cmd:"" help:"Start the review web server"`
	List         ListCmd         `cmd:"" help:"List reviews"`
	Render       RenderCmd       `cmd:"" help:"Render a review's Word document to a file"`
	Export       ExportCmd       `cmd:"" help:"Export a review as Markdown"`
	Schemas      SchemasCmd      `cmd:"" help:"List registered document types"`
	Cleanup      CleanupCmd      `cmd:"" help:"Remove expired approval codes and download tokens"`
	HashPassword HashPasswordCmd `cmd:"" name:"hash-password" help:"Hash a supervisor password for supervisors.yaml"`
}

// ServeCmd is the "serve" subcommand.
type ServeCmd struct {
	Addr    string `default:":8080" help:"Bind address"`
	BaseURL string `name:"base-url" help:"External base URL used in manager links"`
}

// ListCmd is the "list" subcommand.
type ListCmd struct {
	Status  string `help:"Filter by status (DRAFT, SUBMITTED, DOWNLOADED)"`
	DocType string `name:"doc-type" help:"Filter by document type"`
}

// RenderCmd is the "render" subcommand.
type RenderCmd struct {
	ID    string `arg:"" help:"Review ID"`
	Out   string `short:"o" help:"Output path (defaults to the generated filename)"`
	Check bool   `help:"Cross-check that the Word and HTML projections carry the same content"`
}

// ExportCmd is the "export" subcommand.
type ExportCmd struct {
	ID string `arg:"" help:"Review ID"`
}

// SchemasCmd is the "schemas" subcommand.
type SchemasCmd struct{}

// CleanupCmd is the "cleanup" subcommand.
type CleanupCmd struct{}

// HashPasswordCmd is the "hash-password" subcommand.
type HashPasswordCmd struct {
	Password string `arg:"" help:"Password to hash"`
}
