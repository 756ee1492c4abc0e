package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/JimmyYuu29/cartarev"
	"github.com/JimmyYuu29/cartarev/auth"
	"github.com/JimmyYuu29/cartarev/bluemonday"
	"github.com/JimmyYuu29/cartarev/etree"
	"github.com/JimmyYuu29/cartarev/goquery"
	cartahtml "github.com/JimmyYuu29/cartarev/html"
	"github.com/JimmyYuu29/cartarev/htmltomarkdown"
	"github.com/JimmyYuu29/cartarev/render"
	cartaslog "github.com/JimmyYuu29/cartarev/slog"
	"github.com/JimmyYuu29/cartarev/sqlite"
	"github.com/JimmyYuu29/cartarev/yaml"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// ConfigDir holds the schema YAML files, the supervisor directory and
	// the document templates.
	ConfigDir string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	ReviewService cartarev.ReviewService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:    defaultDBPath(),
		ConfigDir: defaultConfigDir(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("cartarev"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'cartarev --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// hash-password needs no configuration or database.
	if cmd == "hash-password" {
		return kongCtx.Run(deps)
	}

	schemas, err := yaml.NewRegistry(filepath.Join(m.ConfigDir, "schemas"))
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Set CARTAREV_CONFIG to the directory holding schemas/, templates/ and supervisors.yaml\n")
		return fmt.Errorf("failed to load schemas from %q: %w", m.ConfigDir, err)
	}
	supervisors, err := yaml.NewDirectory(filepath.Join(m.ConfigDir, "supervisors.yaml"))
	if err != nil {
		fmt.Fprintf(stderr, "Hint: Passwords must be stored as SHA-256 hex hashes; use 'cartarev hash-password'\n")
		return fmt.Errorf("failed to load supervisor directory: %w", err)
	}

	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set CARTAREV_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.ReviewService = cartaslog.NewLoggingReviewService(sqlite.NewReviewService(m.DB), slog.Default())
	tokens := sqlite.NewTokenService(m.DB)
	codes := sqlite.NewApprovalCodeService(m.DB)
	sanitizer := bluemonday.NewSanitizer()

	pages, err := cartahtml.NewRenderer()
	if err != nil {
		return fmt.Errorf("failed to parse page templates: %w", err)
	}

	deps.DB = m.DB
	deps.Reviews = m.ReviewService
	deps.Schemas = schemas
	deps.Supervisors = supervisors
	deps.Tokens = tokens
	deps.Codes = codes
	deps.Validator = cartarev.NewValidator(sanitizer)
	deps.Auth = auth.NewService(m.ReviewService, codes, tokens, supervisors)
	deps.Pipeline = render.NewPipeline(schemas, etree.NewDocxRenderer(), sanitizer, filepath.Join(m.ConfigDir, "templates"))
	deps.Pages = pages
	deps.Converter = htmltomarkdown.NewConverter()
	deps.Extractor = goquery.NewExtractor()

	return kongCtx.Run(deps)
}

func defaultDBPath() string {
	if path := os.Getenv("CARTAREV_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "cartarev.db"
	}
	dir := filepath.Join(home, ".cartarev")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "cartarev.db")
}

func defaultConfigDir() string {
	if dir := os.Getenv("CARTAREV_CONFIG"); dir != "" {
		return dir
	}
	return "config"
}
