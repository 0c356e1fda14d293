package sphinx_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/docharvest/sphinx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPreprocessRST_Includes(t *testing.T) {
	t.Parallel()

	t.Run("inlines referenced file", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "shared.rst"), []byte("Shared text."), 0o644))
		source := filepath.Join(dir, "index.rst")

		got := sphinx.PreprocessRST("Before\n.. include:: shared.rst\nAfter", source, nil)

		assert.Equal(t, "Before\nShared text.\nAfter", got)
	})

	t.Run("nested includes resolve recursively", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "outer.rst"), []byte(".. include:: inner.rst\n"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(dir, "inner.rst"), []byte("Innermost."), 0o644))
		source := filepath.Join(dir, "index.rst")

		got := sphinx.PreprocessRST(".. include:: outer.rst", source, nil)

		assert.Contains(t, got, "Innermost.")
		assert.NotContains(t, got, ".. include::")
	})

	t.Run("missing include degrades to placeholder", func(t *testing.T) {
		t.Parallel()

		source := filepath.Join(t.TempDir(), "index.rst")

		got := sphinx.PreprocessRST(".. include:: missing.rst", source, nil)

		assert.Equal(t, "<!-- Failed to include missing.rst -->", got)
	})
}

func TestPreprocessRST_CodeBlocks(t *testing.T) {
	t.Parallel()

	src := ".. code-block:: python\n\n    x = 1\n    y = 2\n"
	source := filepath.Join(t.TempDir(), "index.rst")

	got := sphinx.PreprocessRST(src, source, nil)

	assert.Equal(t, "```python\nx = 1\ny = 2\n```\n", got)
}

func TestPreprocessRST_Admonitions(t *testing.T) {
	t.Parallel()

	src := ".. note::\n\n    Be careful here.\n"
	source := filepath.Join(t.TempDir(), "index.rst")

	got := sphinx.PreprocessRST(src, source, nil)

	assert.Equal(t, "> **Note**\n> \n> Be careful here.\n", got)
}

func TestPreprocessRST_Roles(t *testing.T) {
	t.Parallel()

	source := filepath.Join(t.TempDir(), "index.rst")

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "ref role becomes anchor link",
			src:  "See :ref:`Getting Started`.",
			want: "See [Getting Started](#getting-started).",
		},
		{
			name: "doc role becomes md link",
			src:  "See :doc:`install`.",
			want: "See [install](install.md).",
		},
		{
			name: "class role becomes inline code",
			src:  "Use :class:`Session`.",
			want: "Use `Session`.",
		},
		{
			name: "func role becomes inline code",
			src:  "Call :func:`get`.",
			want: "Call `get`.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := sphinx.PreprocessRST(tt.src, source, nil)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPostprocessMarkdown(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		src  string
		want string
	}{
		{
			name: "fence attributes normalized",
			src:  "``` {python}\nx = 1\n```",
			want: "```python\nx = 1\n```",
		},
		{
			name: "rst links rewritten to md",
			src:  "[Guide](guide.rst)",
			want: "[Guide](guide.md)",
		},
		{
			name: "static prefix stripped from images",
			src:  "![logo](_static/logo.png)",
			want: "![logo](logo.png)",
		},
		{
			name: "non-static image untouched",
			src:  "![logo](img/logo.png)",
			want: "![logo](img/logo.png)",
		},
		{
			name: "blank runs collapsed",
			src:  "a\n\n\n\nb",
			want: "a\n\nb",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := sphinx.PostprocessMarkdown(tt.src)
			assert.Equal(t, tt.want, got)
		})
	}
}
