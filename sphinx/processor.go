// Package sphinx provides the processor for Sphinx documentation projects.
package sphinx

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/fwojciec/docharvest"
)

// ConfigFile marks a Sphinx documentation root.
const ConfigFile = "conf.py"

// excludedDirs are build, cache, and virtual-env-like directory names that
// never contain documentation sources.
var excludedDirs = map[string]bool{
	"node_modules":  true,
	"venv":          true,
	".git":          true,
	".pytest_cache": true,
	"__pycache__":   true,
	"build":         true,
	"dist":          true,
	".tox":          true,
	".venv":         true,
	".env":          true,
	"_build":        true,
	"_static":       true,
	"_templates":    true,
}

// Ensure Processor implements docharvest.Processor at compile time.
var _ docharvest.Processor = (*Processor)(nil)

// Processor handles Sphinx projects: it extracts declared configuration
// variables from conf.py without executing it, then converts every RST file
// under the directory to Markdown using a two-tier strategy (external tool
// first, built-in fallback second).
type Processor struct {
	primary  docharvest.RSTConverter
	fallback docharvest.RSTConverter
	logger   *slog.Logger
}

// Option configures a Processor.
type Option func(*Processor)

// WithLogger sets the logger for per-file degrade messages.
func WithLogger(l *slog.Logger) Option {
	return func(p *Processor) {
		p.logger = l
	}
}

// NewProcessor creates a Sphinx Processor. The primary converter is tried
// first for each file; on its failure the fallback is used. Either may be
// nil.
func NewProcessor(primary, fallback docharvest.RSTConverter, opts ...Option) *Processor {
	p := &Processor{
		primary:  primary,
		fallback: fallback,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Format returns the sphinx format tag.
func (p *Processor) Format() docharvest.DocFormat { return docharvest.FormatSphinx }

// Exclusive reports that processed roots are claimed.
func (p *Processor) Exclusive() bool { return true }

// Detect returns every directory under the location that contains a conf.py
// script, skipping build and cache directories.
func (p *Processor) Detect(ctx context.Context, loc *docharvest.CodeLocation) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(loc.Path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() == ConfigFile {
			dirs = append(dirs, filepath.Dir(path))
		}
		return nil
	})
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EPROCESSING, "scan %q", loc.Path)
	}
	return dirs, nil
}

// Process converts every RST file under the directory to Markdown, writing
// results under the same relative path with the extension swapped to .md.
// Single-file conversion failures are logged and the file omitted; they do
// not fail the directory.
func (p *Processor) Process(ctx context.Context, loc *docharvest.CodeLocation, dir string) (*docharvest.ProcessedDirectory, error) {
	config := ReadConfig(filepath.Join(dir, ConfigFile))

	content := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if excludedDirs[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(strings.ToLower(d.Name()), ".rst") {
			return nil
		}

		md, convErr := p.convertFile(ctx, path)
		if convErr != nil {
			p.logger.Warn("rst conversion failed, omitting file", "file", path, "error", convErr)
			return nil
		}

		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		key := strings.TrimSuffix(filepath.ToSlash(rel), filepath.Ext(rel)) + ".md"
		content[key] = md
		return nil
	})
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EPROCESSING, "walk %q", dir)
	}

	rel, err := filepath.Rel(loc.Path, dir)
	if err != nil {
		rel = "."
	}

	return &docharvest.ProcessedDirectory{
		RelativePath: rel,
		Format:       docharvest.FormatSphinx,
		Content:      content,
		Metadata: map[string]any{
			"sphinx_config": config,
			"project":       config["project"],
			"version":       config["version"],
			"master_doc":    config["master_doc"],
		},
	}, nil
}

// convertFile reads and converts a single RST file: preprocess, two-tier
// conversion, postprocess.
func (p *Processor) convertFile(ctx context.Context, path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	src := PreprocessRST(string(data), path, p.logger)

	var md string
	var primaryErr error
	if p.primary != nil {
		md, primaryErr = p.primary.ConvertRST(ctx, src)
	} else {
		primaryErr = docharvest.Errorf(docharvest.EPROCESSING, "no primary converter configured")
	}
	if primaryErr != nil {
		if p.fallback == nil {
			return "", primaryErr
		}
		p.logger.Debug("primary conversion failed, using fallback", "file", path, "error", primaryErr)
		md, err = p.fallback.ConvertRST(ctx, src)
		if err != nil {
			return "", err
		}
	}

	return PostprocessMarkdown(md), nil
}

var (
	configVarRes = map[string]*regexp.Regexp{
		"project":    regexp.MustCompile(`project\s*=\s*['"]([^'"]+)['"]`),
		"version":    regexp.MustCompile(`version\s*=\s*['"]([^'"]+)['"]`),
		"release":    regexp.MustCompile(`release\s*=\s*['"]([^'"]+)['"]`),
		"master_doc": regexp.MustCompile(`master_doc\s*=\s*['"]([^'"]+)['"]`),
	}
	extensionsRe = regexp.MustCompile(`(?s)extensions\s*=\s*\[(.*?)\]`)
)

// ReadConfig extracts declared string variables from a conf.py script via
// pattern matching against the script text. The script is never executed.
// Missing variables get defaults.
func ReadConfig(path string) map[string]any {
	config := map[string]any{
		"project":    "unknown",
		"version":    "0.1",
		"release":    "0.1",
		"master_doc": "index",
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return config
	}
	text := string(data)

	for name, re := range configVarRes {
		if m := re.FindStringSubmatch(text); m != nil {
			config[name] = m[1]
		}
	}

	if m := extensionsRe.FindStringSubmatch(text); m != nil {
		var extensions []string
		for _, ext := range strings.Split(m[1], ",") {
			ext = strings.Trim(ext, " \t\n'\"")
			if ext != "" {
				extensions = append(extensions, ext)
			}
		}
		config["extensions"] = extensions
	}

	return config
}
