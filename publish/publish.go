// Package publish renders harvested documentation as a static site: one
// combined llms.txt per package plus an index page linking them.
package publish

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/docharvest"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// combinedExtensions are the file types joined into llms.txt.
var combinedExtensions = map[string]bool{
	".md":  true,
	".txt": true,
	".rst": true,
}

const pageTemplate = `<html>
<head>
<title>LLM Friendly Documentation</title>
<style>
body {
    font-family: system-ui, -apple-system, sans-serif;
    max-width: 800px;
    margin: 0 auto;
    padding: 2rem;
    line-height: 1.5;
}
h1 { color: #2563eb; }
a {
    color: #3b82f6;
    text-decoration: none;
}
a:hover { text-decoration: underline; }
li { margin: 0.5rem 0; }
</style>
</head>
<body>
%s</body>
</html>
`

// Publisher combines harvested package output into a browsable static site.
type Publisher struct {
	logger   *slog.Logger
	markdown goldmark.Markdown
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

// NewPublisher creates a new Publisher.
func NewPublisher(opts ...Option) *Publisher {
	p := &Publisher{
		logger:   slog.Default(),
		markdown: goldmark.New(goldmark.WithExtensions(extension.GFM)),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Publish walks every package directory under dataDir, writes the combined
// llms.txt files under siteDir, and renders the index page. It returns the
// published package names in index order. Unreadable files degrade the
// combined output; only site-level I/O failures abort.
func (p *Publisher) Publish(ctx context.Context, dataDir, siteDir string) ([]string, error) {
	if err := os.MkdirAll(siteDir, 0o755); err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to create site directory")
	}

	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to read data directory %s", dataDir)
	}

	var published []string
	titles := make(map[string]string)
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}

		name := entry.Name()
		title, ok, err := p.publishPackage(filepath.Join(dataDir, name), filepath.Join(siteDir, name))
		if err != nil {
			return nil, err
		}
		if !ok {
			p.logger.Info("no documentation files found", slog.String("package", name))
			continue
		}
		published = append(published, name)
		titles[name] = title
	}
	sort.Strings(published)

	if err := p.writeIndex(siteDir, published, titles); err != nil {
		return nil, err
	}

	p.logger.Info("published site",
		slog.String("path", siteDir),
		slog.Int("packages", len(published)))
	return published, nil
}

// publishPackage combines the package's harvested files into llms.txt and
// returns a display title for the index. ok is false when the package has
// no documentation files.
func (p *Publisher) publishPackage(packageDir, outDir string) (title string, ok bool, err error) {
	files, err := docFiles(filepath.Join(packageDir, "data"))
	if err != nil || len(files) == 0 {
		return "", false, nil
	}

	var sections []string
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			p.logger.Error("failed to read documentation file",
				slog.String("file", file),
				slog.Any("error", err))
			continue
		}
		sections = append(sections, filepath.Base(file), string(content))

		if title == "" && strings.HasSuffix(file, ".md") {
			title = p.extractTitle(content)
		}
	}
	if len(sections) == 0 {
		return "", false, nil
	}
	if title == "" {
		title = strings.TrimSuffix(filepath.Base(packageDir), "-latest")
	}

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return "", false, docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to create package site directory")
	}
	combined := strings.Join(sections, "\n\n---\n\n")
	if err := os.WriteFile(filepath.Join(outDir, "llms.txt"), []byte(combined), 0o644); err != nil {
		return "", false, docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to write llms.txt")
	}
	return title, true, nil
}

// docFiles returns every combinable documentation file under root, sorted.
func docFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && combinedExtensions[strings.ToLower(filepath.Ext(path))] {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// extractTitle renders the markdown and pulls the first heading's text.
func (p *Publisher) extractTitle(markdown []byte) string {
	var buf bytes.Buffer
	if err := p.markdown.Convert(markdown, &buf); err != nil {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(&buf)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(doc.Find("h1, h2").First().Text())
}

// writeIndex renders the index page from a markdown listing.
func (p *Publisher) writeIndex(siteDir string, published []string, titles map[string]string) error {
	var md strings.Builder
	md.WriteString("# LLMs Documentation\n\n")
	for _, name := range published {
		title := titles[name]
		if title == "" {
			title = name
		}
		fmt.Fprintf(&md, "- [%s](%s/llms.txt)\n", title, name)
	}

	var body bytes.Buffer
	if err := p.markdown.Convert([]byte(md.String()), &body); err != nil {
		return docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to render index")
	}

	page := fmt.Sprintf(pageTemplate, body.String())
	if err := os.WriteFile(filepath.Join(siteDir, "index.html"), []byte(page), 0o644); err != nil {
		return docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to write index.html")
	}
	return nil
}
