// Package fs persists processed documentation to the local filesystem.
package fs

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fwojciec/docharvest"
)

// Ensure Storage implements docharvest.Storage at compile time.
var _ docharvest.Storage = (*Storage)(nil)

// Storage writes each harvested package to a directory under the base path.
// Re-harvesting a package overwrites the previous output; there is no
// versioned history.
type Storage struct {
	basePath string
	logger   *slog.Logger
}

// Option configures a Storage.
type Option func(*Storage)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Storage) {
		s.logger = logger
	}
}

// NewStorage creates a Storage rooted at basePath, creating it if needed.
func NewStorage(basePath string, opts ...Option) (*Storage, error) {
	s := &Storage{
		basePath: basePath,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := os.MkdirAll(basePath, 0o755); err != nil {
		return nil, docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to create output directory %s", basePath)
	}
	return s, nil
}

// metadata is the package-level metadata file layout. Directory contents
// live in their own sibling files.
type metadata struct {
	Package     *docharvest.Package      `json:"package"`
	Location    *docharvest.CodeLocation `json:"location"`
	ProcessedAt string                   `json:"processed_at"`
	Errors      []string                 `json:"errors"`
}

// Store persists the document and returns the package directory path.
// Partial writes before a failure are not rolled back.
func (s *Storage) Store(ctx context.Context, doc *docharvest.ProcessedDoc) (string, error) {
	if err := doc.Validate(); err != nil {
		return "", err
	}

	packageDir := filepath.Join(s.basePath, doc.Package.Name+"-latest")
	if err := os.MkdirAll(packageDir, 0o755); err != nil {
		return "", docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to create package directory")
	}

	meta := metadata{
		Package:     doc.Package,
		Location:    doc.Location,
		ProcessedAt: doc.ProcessedAt.Format(time.RFC3339),
		Errors:      doc.Errors,
	}
	if meta.Errors == nil {
		meta.Errors = []string{}
	}
	if err := writeJSON(filepath.Join(packageDir, "metadata.json"), meta); err != nil {
		return "", err
	}

	dataDir := filepath.Join(packageDir, "data")
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return "", docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to create data directory")
	}

	for _, dir := range doc.Directories {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		dirName := dir.RelativePath
		if dirName == "." {
			dirName = "root"
		}

		metaName := strings.ReplaceAll(dirName, "/", "_") + "_metadata.json"
		if err := writeJSON(filepath.Join(packageDir, metaName), dir); err != nil {
			return "", err
		}

		for fileName, content := range dir.Content {
			path := filepath.Join(dataDir, filepath.FromSlash(dirName), filepath.FromSlash(fileName))
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return "", docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to create content directory")
			}
			if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
				return "", docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to write %s", fileName)
			}
		}
	}

	s.logger.Info("stored processed documentation",
		slog.String("package", doc.Package.Name),
		slog.String("path", packageDir),
		slog.Int("directories", len(doc.Directories)))

	return packageDir, nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to encode %s", filepath.Base(path))
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return docharvest.WrapErrorf(err, docharvest.ESTORAGE, "failed to write %s", filepath.Base(path))
	}
	return nil
}
