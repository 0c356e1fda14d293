package docharvest

import "context"

// Processor detects and transforms documentation roots of one format.
type Processor interface {
	// Format returns the format tag this processor produces.
	Format() DocFormat

	// Exclusive reports whether a root processed by this processor is
	// claimed, excluding it from reprocessing by other exclusive
	// processors. The plain-text processor returns false: it only inspects
	// top-level loose files and may overlap with format-aware processors.
	Exclusive() bool

	// Detect returns the candidate documentation roots found under the
	// location, as absolute directory paths.
	Detect(ctx context.Context, loc *CodeLocation) ([]string, error)

	// Process transforms one candidate directory into a ProcessedDirectory.
	// Fails with EPROCESSING; per-file failures inside the directory
	// degrade the output instead of failing.
	Process(ctx context.Context, loc *CodeLocation, dir string) (*ProcessedDirectory, error)
}
