package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/docharvest"
	"github.com/fwojciec/docharvest/fs"
	"github.com/fwojciec/docharvest/git"
	"github.com/fwojciec/docharvest/harvest"
	"github.com/fwojciec/docharvest/htmltomarkdown"
	dochttp "github.com/fwojciec/docharvest/http"
	"github.com/fwojciec/docharvest/mkdocs"
	"github.com/fwojciec/docharvest/pandoc"
	"github.com/fwojciec/docharvest/plain"
	"github.com/fwojciec/docharvest/publish"
	"github.com/fwojciec/docharvest/pypi"
	"github.com/fwojciec/docharvest/rst"
	docslog "github.com/fwojciec/docharvest/slog"
	"github.com/fwojciec/docharvest/sphinx"
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
	Logger *slog.Logger
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		Logger: slog.New(slog.NewTextHandler(os.Stderr, nil)),
	}
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: m.Logger,
		NewHarvester: func(outputDir string) (Batcher, error) {
			return m.newHarvester(outputDir)
		},
		Publisher: publish.NewPublisher(publish.WithLogger(m.Logger)),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("docharvest"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'docharvest --help' to see available commands")
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

	return kongCtx.Run(deps)
}

// newHarvester wires the full pipeline for the given output directory.
func (m *Main) newHarvester(outputDir string) (*harvest.Harvester, error) {
	storage, err := fs.NewStorage(outputDir, fs.WithLogger(m.Logger))
	if err != nil {
		return nil, err
	}

	// Two-tier RST conversion: pandoc when installed, built-in otherwise.
	builtin := rst.NewConverter(htmltomarkdown.NewConverter())
	var converter docharvest.RSTConverter = builtin
	external := pandoc.NewConverter()
	if external.Available() {
		converter = external
	} else {
		m.Logger.Warn("pandoc not found, using built-in RST conversion")
	}

	return &harvest.Harvester{
		Registries: map[docharvest.RegistryType]docharvest.RegistryProvider{
			docharvest.RegistryPyPI: docslog.NewLoggingProvider(pypi.NewProvider(), m.Logger),
		},
		RepoFetcher: docslog.NewLoggingFetcher(git.NewFetcher(), m.Logger),
		URLFetcher:  docslog.NewLoggingFetcher(dochttp.NewFetcher(), m.Logger),
		Processors: []docharvest.Processor{
			plain.NewProcessor(converter, plain.WithLogger(m.Logger)),
			mkdocs.NewProcessor(converter, mkdocs.WithLogger(m.Logger)),
			sphinx.NewProcessor(external, builtin, sphinx.WithLogger(m.Logger)),
		},
		Storage: storage,
		Logger:  m.Logger,
	}, nil
}
