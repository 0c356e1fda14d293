// Package http provides an HTTP-based implementation of
// docharvest.ContentFetcher for direct documentation URLs.
package http

import (
	"context"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/docharvest"
	"github.com/google/uuid"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// supportedExtensions maps direct-file document extensions to their format
// names. A URL whose path ends in one of these is downloaded as a file;
// anything else is treated as a website.
var supportedExtensions = map[string]string{
	".md":   "markdown",
	".txt":  "text",
	".rst":  "restructuredtext",
	".adoc": "asciidoc",
}

// Ensure Fetcher implements docharvest.ContentFetcher at compile time.
var _ docharvest.ContentFetcher = (*Fetcher)(nil)

// Fetcher downloads documentation files from direct URLs into scratch
// directories. Generic website URLs are an explicit unsupported case: the
// scratch directory is allocated and the intent recorded, but nothing is
// fetched. Not safe for concurrent use; the pipeline is sequential.
type Fetcher struct {
	client   *http.Client
	tempDirs []string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithHTTPClient overrides the HTTP client.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new URL Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client: &http.Client{Timeout: DefaultFetchTimeout},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch downloads the package's documentation URL into a scratch directory.
// Requires a documentation URL. On any failure every scratch directory
// allocated so far is removed before the error is returned.
func (f *Fetcher) Fetch(ctx context.Context, pkg *docharvest.Package) (*docharvest.CodeLocation, error) {
	if pkg.DocumentationURL == "" {
		return nil, docharvest.Errorf(docharvest.EFETCH, "no documentation URL provided for package %q", pkg.Name)
	}

	dir := filepath.Join(os.TempDir(), "docharvest-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EFETCH, "create scratch directory")
	}
	f.tempDirs = append(f.tempDirs, dir)

	var loc *docharvest.CodeLocation
	var err error
	switch {
	case isLocalFile(pkg.DocumentationURL):
		loc, err = copyLocalFile(pkg.DocumentationURL, dir)
	case isDirectFile(pkg.DocumentationURL):
		loc, err = f.fetchDirectFile(ctx, pkg.DocumentationURL, dir)
	default:
		loc, err = websiteLocation(pkg.DocumentationURL, dir)
	}
	if err != nil {
		if cleanupErr := f.Cleanup(); cleanupErr != nil {
			return nil, docharvest.WrapErrorf(cleanupErr, docharvest.EFETCH, "cleanup after failed fetch of %q", pkg.DocumentationURL)
		}
		return nil, err
	}

	return loc, nil
}

// Cleanup removes all scratch directories the fetcher has allocated.
// Missing directories are skipped, so calling Cleanup twice is safe.
func (f *Fetcher) Cleanup() error {
	var firstErr error
	for _, dir := range f.tempDirs {
		if err := os.RemoveAll(dir); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	f.tempDirs = nil
	return firstErr
}

// isDirectFile reports whether the URL path ends in a supported document
// extension.
func isDirectFile(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	lower := strings.ToLower(u.Path)
	for ext := range supportedExtensions {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}

// isLocalFile reports whether the URL is a plain filesystem path to an
// existing regular file. Local specs carry absolute paths here instead of
// http(s) URLs.
func isLocalFile(rawURL string) bool {
	if strings.HasPrefix(rawURL, "http://") || strings.HasPrefix(rawURL, "https://") {
		return false
	}
	info, err := os.Stat(rawURL)
	return err == nil && info.Mode().IsRegular()
}

func copyLocalFile(src, dir string) (*docharvest.CodeLocation, error) {
	data, err := os.ReadFile(src)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EFETCH, "read local file %q", src)
	}

	filename := filepath.Base(src)
	if err := os.WriteFile(filepath.Join(dir, filename), data, 0o644); err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EFETCH, "write %q", filename)
	}

	return &docharvest.CodeLocation{
		Path:      dir,
		SourceURL: src,
		Metadata: map[string]any{
			"type":              "local_file",
			"original_filename": filename,
		},
	}, nil
}

func (f *Fetcher) fetchDirectFile(ctx context.Context, rawURL, dir string) (*docharvest.CodeLocation, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EFETCH, "build request for %q", rawURL)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EFETCH, "fetch URL %q", rawURL)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, docharvest.Errorf(docharvest.EFETCH, "HTTP %d for %q", resp.StatusCode, rawURL)
	}

	filename := Filename(rawURL, resp.Header.Get("Content-Disposition"), resp.Header.Get("Content-Type"))

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EFETCH, "read body of %q", rawURL)
	}

	if err := os.WriteFile(filepath.Join(dir, filename), body, 0o644); err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.EFETCH, "write %q", filename)
	}

	return &docharvest.CodeLocation{
		Path:      dir,
		SourceURL: rawURL,
		Metadata: map[string]any{
			"type":              "direct_file",
			"original_filename": filename,
			"content_type":      resp.Header.Get("Content-Type"),
		},
	}, nil
}

// websiteLocation records the unsupported website case without fetching.
// Callers tolerate the empty scratch directory: processors find nothing and
// storage is skipped.
func websiteLocation(rawURL, dir string) (*docharvest.CodeLocation, error) {
	return &docharvest.CodeLocation{
		Path:      dir,
		SourceURL: rawURL,
		Metadata: map[string]any{
			"type":   "website",
			"status": "unsupported",
		},
	}, nil
}

// Filename derives the downloaded file's name: the content-disposition
// filename if present, else the URL path's base name, with an extension
// sniffed from the content type when the name has none, falling back to
// "document.md".
func Filename(rawURL, contentDisposition, contentType string) string {
	if contentDisposition != "" {
		if _, params, err := mime.ParseMediaType(contentDisposition); err == nil {
			if name := params["filename"]; name != "" {
				return name
			}
		}
	}

	filename := ""
	if u, err := url.Parse(rawURL); err == nil {
		filename = path.Base(u.Path)
		if filename == "." || filename == "/" {
			filename = ""
		}
	}

	if filename != "" && path.Ext(filename) == "" {
		ct := strings.ToLower(contentType)
		switch {
		case strings.Contains(ct, "markdown"):
			filename += ".md"
		case strings.Contains(ct, "text/plain"):
			filename += ".txt"
		}
	}

	if filename == "" {
		return "document.md"
	}
	return filename
}
