package docharvest

import "time"

// DocFormat tags the documentation format a processor detected.
type DocFormat string

// Known documentation formats.
const (
	FormatMkDocs DocFormat = "mkdocs"
	FormatSphinx DocFormat = "sphinx"
	FormatPlain  DocFormat = "plain"
	FormatOther  DocFormat = "other"
)

// ProcessedDirectory is the result of processing one documentation root.
// Content maps root-relative file paths to final Markdown text.
type ProcessedDirectory struct {
	RelativePath string            `json:"relative_path"`
	Format       DocFormat         `json:"format"`
	Content      map[string]string `json:"content"`
	Metadata     map[string]any    `json:"metadata,omitempty"`
}

// ProcessedDoc is the aggregate handed to storage: one package, the location
// its source was fetched to, and every processed directory. It is
// append-only during harvesting and immutable afterward. Errors accumulates
// non-fatal per-directory and per-processor failures.
type ProcessedDoc struct {
	Package     *Package              `json:"package"`
	Location    *CodeLocation         `json:"location"`
	ProcessedAt time.Time             `json:"processed_at"`
	Directories []*ProcessedDirectory `json:"directories"`
	Errors      []string              `json:"errors"`
}

// Validate returns an error if the document contains invalid fields.
func (d *ProcessedDoc) Validate() error {
	if d.Package == nil {
		return Errorf(EINVALID, "processed doc package required")
	}
	if d.Location == nil {
		return Errorf(EINVALID, "processed doc location required")
	}
	return nil
}
