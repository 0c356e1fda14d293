// Package mkdocs provides the processor for MkDocs documentation sites.
package mkdocs

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/docharvest"
)

// ConfigFile marks an MkDocs documentation root.
const ConfigFile = "mkdocs.yml"

// Ensure Processor implements docharvest.Processor at compile time.
var _ docharvest.Processor = (*Processor)(nil)

// Processor handles MkDocs sites: it parses mkdocs.yml, walks the declared
// navigation in order, then sweeps the docs directory for files the
// navigation does not reference.
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

// NewProcessor creates an MkDocs Processor. The converter is used for RST
// files referenced from navigation and may be nil.
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

// Format returns the mkdocs format tag.
func (p *Processor) Format() docharvest.DocFormat { return docharvest.FormatMkDocs }

// Exclusive reports that processed roots are claimed.
func (p *Processor) Exclusive() bool { return true }

// Detect returns every directory under the location that contains an
// mkdocs.yml configuration file.
func (p *Processor) Detect(ctx context.Context, loc *docharvest.CodeLocation) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(loc.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && d.Name() == ConfigFile {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EPROCESSING, "scan %q", loc.Path)
	}
	return dirs, nil
}

// Process transforms one MkDocs site directory. Navigation-declared files
// are read first, in declared order; remaining Markdown files in the docs
// directory follow, with first-seen precedence. Fails with EPROCESSING if
// the declared docs directory does not exist; per-file failures degrade to
// empty content for that file.
func (p *Processor) Process(ctx context.Context, loc *docharvest.CodeLocation, dir string) (*docharvest.ProcessedDirectory, error) {
	config, err := LoadConfig(filepath.Join(dir, ConfigFile))
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EPROCESSING, "parse mkdocs config in %q", dir)
	}

	docsDirName := "docs"
	if s, ok := config["docs_dir"].(string); ok && s != "" {
		docsDirName = s
	}
	docsDir := filepath.Join(dir, docsDirName)
	if info, err := os.Stat(docsDir); err != nil || !info.IsDir() {
		return nil, docharvest.Errorf(docharvest.EPROCESSING, "docs directory not found: %q", docsDir)
	}

	content := make(map[string]string)

	if nav, ok := config["nav"].([]any); ok {
		p.walkNav(ctx, nav, docsDir, content)
	}

	// Sweep for markdown files the navigation did not reference.
	err = filepath.WalkDir(docsDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(strings.ToLower(d.Name()), ".md") {
			return nil
		}
		rel, err := filepath.Rel(docsDir, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		if _, ok := content[key]; !ok {
			content[key] = p.readFile(ctx, docsDir, key)
		}
		return nil
	})
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EPROCESSING, "walk docs directory %q", docsDir)
	}

	rel, err := filepath.Rel(loc.Path, dir)
	if err != nil {
		rel = "."
	}

	var theme string
	if t, ok := config["theme"].(map[string]any); ok {
		theme, _ = t["name"].(string)
	}

	return &docharvest.ProcessedDirectory{
		RelativePath: rel,
		Format:       docharvest.FormatMkDocs,
		Content:      content,
		Metadata: map[string]any{
			"site_name": config["site_name"],
			"theme":     theme,
			"nav":       config["nav"],
			"docs_dir":  docsDirName,
		},
	}, nil
}

// walkNav visits a navigation tree in declared order: a string leaf is a
// file reference, a mapping is a titled entry or subtree, a list recurses.
func (p *Processor) walkNav(ctx context.Context, item any, docsDir string, content map[string]string) {
	switch v := item.(type) {
	case string:
		if isDocFile(v) {
			if _, ok := content[v]; !ok {
				content[v] = p.readFile(ctx, docsDir, v)
			}
		}
	case map[string]any:
		for _, child := range v {
			p.walkNav(ctx, child, docsDir, content)
		}
	case []any:
		for _, child := range v {
			p.walkNav(ctx, child, docsDir, content)
		}
	}
}

func isDocFile(name string) bool {
	lower := strings.ToLower(name)
	return strings.HasSuffix(lower, ".md") || strings.HasSuffix(lower, ".rst")
}

// readFile reads one referenced file and applies the inline transforms:
// code inclusions, relative-link re-rooting, and RST conversion. Any
// failure degrades to an empty string and is logged; it never aborts the
// directory.
func (p *Processor) readFile(ctx context.Context, docsDir, relPath string) string {
	path := filepath.Join(docsDir, filepath.FromSlash(relPath))

	data, err := os.ReadFile(path)
	if err != nil {
		p.logger.Warn("read referenced file", "file", relPath, "error", err)
		return ""
	}

	text := string(data)
	text = ResolveInclusions(text, path, p.logger)
	text = RewriteRelativeLinks(text, path)

	ext := strings.ToLower(filepath.Ext(path))
	if (ext == ".rst" || ext == ".rest") && p.converter != nil {
		if converted, err := p.converter.ConvertRST(ctx, text); err != nil {
			p.logger.Warn("rst conversion failed, keeping original", "file", relPath, "error", err)
		} else {
			text = converted
		}
	}

	return text
}
