package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/inlay"
	"github.com/fwojciec/inlay/extract"
	"github.com/fwojciec/inlay/fs"
	"github.com/fwojciec/inlay/goquery"
	inlayslog "github.com/fwojciec/inlay/slog"
	"github.com/joho/godotenv"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// A .env file is optional; it only supplies flag defaults.
	_ = godotenv.Load()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		stop()
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Services for end-to-end testing. Wired from the filesystem when nil.
	Extractor inlay.Extractor
	Scanner   inlay.Scanner
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{}
}

// Run executes the CLI with the given arguments. A failure is reported on
// stderr once, here, and returned.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	err := m.run(ctx, args, stdout, stderr)
	if err != nil {
		reportError(stderr, err)
	}
	return err
}

func (m *Main) run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("inlay"),
		kong.Description("Turn bundler build output into an embeddable HTML fragment"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'inlay --help' to see available commands")
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

	deps.Logger = newLogger(stderr, cli.Verbose)

	deps.Scanner = m.Scanner
	if deps.Scanner == nil {
		deps.Scanner = goquery.NewScanner()
	}

	deps.Extractor = m.Extractor
	if deps.Extractor == nil {
		ex := extract.NewExtractor(
			inlayslog.NewLoggingLoader(fs.NewLoader(), deps.Logger),
			deps.Scanner,
			inlayslog.NewLoggingWriter(fs.NewWriter(), deps.Logger),
		)
		ex.Detector = inlayslog.NewLoggingDetector(goquery.NewDetector(), deps.Logger)
		deps.Extractor = ex
	}
	deps.Extractor = inlayslog.NewLoggingExtractor(deps.Extractor, deps.Logger)

	return kongCtx.Run(deps)
}

// reportError writes the user-facing form of err, naming the widget and
// rule it belongs to.
func reportError(w io.Writer, err error) {
	var e *inlay.Error
	if !errors.As(err, &e) {
		fmt.Fprintf(w, "error: %v\n", err)
		return
	}

	prefix := ""
	if e.Widget != "" {
		prefix += e.Widget + ": "
	}
	if e.Rule != "" {
		prefix += e.Rule + ": "
	}
	fmt.Fprintf(w, "error: %s%s\n", prefix, e.Message)
}

func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
