package docharvest

import "context"

// Storage persists processed documentation aggregates.
type Storage interface {
	// Store persists the document and returns a location identifier for
	// the stored output. Fails with ESTORAGE wrapping any I/O failure;
	// partial writes before the failure are not rolled back.
	Store(ctx context.Context, doc *ProcessedDoc) (string, error)
}
