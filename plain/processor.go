// Package plain provides the pass-through processor for loose Markdown,
// text, and reStructuredText files in a documentation root.
package plain

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/fwojciec/docharvest"
)

// markdownExtensions and textExtensions identify the loose files the
// processor picks up. RST files are converted; everything else passes
// through untouched.
var (
	markdownExtensions = map[string]bool{".md": true, ".markdown": true, ".mdown": true, ".mkdn": true}
	textExtensions     = map[string]bool{".txt": true, ".text": true}
	rstExtensions      = map[string]bool{".rst": true, ".rest": true}
)

// ignoredFiles are dependency-lock files that match the text extensions but
// are never documentation.
var ignoredFiles = map[string]bool{
	"requirements.txt":     true,
	"requirements-dev.txt": true,
}

// Ensure Processor implements docharvest.Processor at compile time.
var _ docharvest.Processor = (*Processor)(nil)

// Processor handles standalone documentation files directly in the root of
// a fetched location. It never claims roots: it only inspects top-level
// loose files and may overlap with the format-aware processors.
type Processor struct {
	converter docharvest.RSTConverter
	logger    *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger for per-file degrade messages.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// NewProcessor creates a plain-file Processor. The converter is used for
// RST files and may be nil, in which case RST content passes through
// unconverted.
func NewProcessor(converter docharvest.RSTConverter, opts ...Option) *Processor {
	p := &Processor{
		converter: converter,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Format returns the plain format tag.
func (p *Processor) Format() docharvest.DocFormat { return docharvest.FormatPlain }

// Exclusive reports that plain processing never claims roots.
func (p *Processor) Exclusive() bool { return false }

// Detect returns the location root if it contains any loose documentation
// files, and nothing otherwise.
func (p *Processor) Detect(ctx context.Context, loc *docharvest.CodeLocation) ([]string, error) {
	names, err := p.matchingFiles(loc.Path)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EPROCESSING, "scan %q", loc.Path)
	}
	if len(names) == 0 {
		return nil, nil
	}
	return []string{loc.Path}, nil
}

// Process reads every matching loose file in the directory. RST files are
// converted to Markdown; conversion failure degrades to the original text.
// Markdown files pass through byte-for-byte.
func (p *Processor) Process(ctx context.Context, loc *docharvest.CodeLocation, dir string) (*docharvest.ProcessedDirectory, error) {
	names, err := p.matchingFiles(dir)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EPROCESSING, "scan %q", dir)
	}

	content := make(map[string]string, len(names))
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			p.logger.Error("read file", "file", name, "error", err)
			continue
		}

		text := string(data)
		if rstExtensions[strings.ToLower(filepath.Ext(name))] && p.converter != nil {
			if converted, err := p.converter.ConvertRST(ctx, text); err != nil {
				p.logger.Warn("rst conversion failed, keeping original", "file", name, "error", err)
			} else {
				text = converted
			}
		}
		content[name] = text
	}

	rel, err := filepath.Rel(loc.Path, dir)
	if err != nil {
		rel = "."
	}

	return &docharvest.ProcessedDirectory{
		RelativePath: rel,
		Format:       docharvest.FormatPlain,
		Content:      content,
		Metadata: map[string]any{
			"file_count": len(content),
		},
	}, nil
}

// matchingFiles returns the sorted loose documentation file names directly
// in dir.
func (p *Processor) matchingFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if ignoredFiles[name] {
			continue
		}
		ext := strings.ToLower(filepath.Ext(name))
		if markdownExtensions[ext] || textExtensions[ext] || rstExtensions[ext] {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
