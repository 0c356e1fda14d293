package docharvest

import "context"

// CodeLocation describes where fetched source material lives on disk.
// It is owned exclusively by the fetch step that created it and is removed
// by that fetcher's Cleanup after all processors finish.
type CodeLocation struct {
	Path      string         `json:"path"`
	SourceURL string         `json:"source_url,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// ContentFetcher materializes documentation source files into a local
// scratch location. Implementations track every scratch directory they
// allocate across their lifetime.
type ContentFetcher interface {
	// Fetch materializes the package's documentation source and returns its
	// location. Fails with EFETCH on any acquisition error; on failure all
	// scratch directories allocated so far are removed before returning.
	Fetch(ctx context.Context, pkg *Package) (*CodeLocation, error)

	// Cleanup removes every scratch directory the fetcher has allocated.
	// It is idempotent: missing directories are skipped, not an error.
	Cleanup() error
}
