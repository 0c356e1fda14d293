package docharvest

import "context"

// RSTConverter converts reStructuredText to Markdown.
// Implementations may shell out to an external tool; unavailability of the
// tool surfaces as an error that callers treat as non-fatal.
type RSTConverter interface {
	ConvertRST(ctx context.Context, src string) (string, error)
}

// Converter converts HTML to Markdown. Used as the second leg of the
// built-in reST fallback conversion path.
type Converter interface {
	// Convert transforms HTML content into Markdown.
	Convert(html string) (string, error)
}
