// Package pandoc converts reStructuredText to Markdown by shelling out to
// the pandoc binary. It is the primary conversion tier; callers fall back
// to the built-in converter when pandoc is missing or fails.
package pandoc

import (
	"bytes"
	"context"
	"os/exec"
	"strings"

	"github.com/fwojciec/docharvest"
)

// Ensure Converter implements docharvest.RSTConverter at compile time.
var _ docharvest.RSTConverter = (*Converter)(nil)

// DefaultBinary is the pandoc executable name resolved via PATH.
const DefaultBinary = "pandoc"

// Converter runs pandoc with reST input on stdin and reads GitHub-flavored
// Markdown from stdout.
type Converter struct {
	binary string
}

// Option configures a Converter.
type Option func(*Converter)

// WithBinary overrides the pandoc executable path.
func WithBinary(path string) Option {
	return func(c *Converter) {
		c.binary = path
	}
}

// NewConverter creates a pandoc-backed Converter.
func NewConverter(opts ...Option) *Converter {
	c := &Converter{binary: DefaultBinary}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Available reports whether the pandoc binary can be resolved.
func (c *Converter) Available() bool {
	_, err := exec.LookPath(c.binary)
	return err == nil
}

// ConvertRST converts reST source to Markdown. It returns an EPROCESSING
// error when pandoc is missing or exits non-zero, so callers can fall back.
func (c *Converter) ConvertRST(ctx context.Context, src string) (string, error) {
	cmd := exec.CommandContext(ctx, c.binary, "--from=rst", "--to=gfm", "--wrap=none")
	cmd.Stdin = strings.NewReader(src)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return "", docharvest.WrapErrorf(err, docharvest.EPROCESSING, "pandoc conversion failed: %s", msg)
	}

	return stdout.String(), nil
}
