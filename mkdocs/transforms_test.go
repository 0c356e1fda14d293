package mkdocs_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/docharvest/mkdocs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveInclusions(t *testing.T) {
	t.Parallel()

	t.Run("inlines sibling file as fenced block", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "sibling.py"), []byte("print(\"hi\")"), 0o644))
		current := filepath.Join(dir, "page.md")

		got := mkdocs.ResolveInclusions("Before\n{* sibling.py *}\nAfter", current, nil)

		assert.Equal(t, "Before\n```py\nprint(\"hi\")\n```\nAfter", got)
	})

	t.Run("all three bracket forms are equivalent", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ex.go"), []byte("package main"), 0o644))
		current := filepath.Join(dir, "page.md")

		for _, src := range []string{"{* ex.go *}", "{! ex.go !}", "{= ex.go =}"} {
			got := mkdocs.ResolveInclusions(src, current, nil)
			assert.Equal(t, "```go\npackage main\n```", got, "form %s", src)
		}
	})

	t.Run("missing reference produces placeholder block", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		current := filepath.Join(dir, "page.md")

		got := mkdocs.ResolveInclusions("{* nope.py *}", current, nil)

		assert.Equal(t, "```\n# File not found: nope.py\n```", got)
	})

	t.Run("resolves upward toward documentation root", func(t *testing.T) {
		t.Parallel()

		root := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(root, "mkdocs.yml"), []byte("site_name: x"), 0o644))
		require.NoError(t, os.WriteFile(filepath.Join(root, "snippet.py"), []byte("x = 1"), 0o644))
		docs := filepath.Join(root, "docs", "guide")
		require.NoError(t, os.MkdirAll(docs, 0o755))
		current := filepath.Join(docs, "page.md")

		got := mkdocs.ResolveInclusions("{* snippet.py *}", current, nil)

		assert.Equal(t, "```py\nx = 1\n```", got)
	})

	t.Run("keeps highlight info as a comment", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, "ex.py"), []byte("y = 2"), 0o644))
		current := filepath.Join(dir, "page.md")

		got := mkdocs.ResolveInclusions("{* ex.py hl[1] *}", current, nil)

		assert.Equal(t, "```py\n# Highlight: hl[1]\ny = 2\n```", got)
	})
}

func TestRewriteRelativeLinks(t *testing.T) {
	t.Parallel()

	current := filepath.Join(string(filepath.Separator), "docs", "guide", "page.md")

	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "external link untouched",
			content: "[text](https://x)",
			want:    "[text](https://x)",
		},
		{
			name:    "anchor untouched",
			content: "[text](#anchor)",
			want:    "[text](#anchor)",
		},
		{
			name:    "absolute path untouched",
			content: "[text](/abs)",
			want:    "[text](/abs)",
		},
		{
			name:    "parent-relative link left unchanged when not re-rootable",
			content: "[text](../other.rst)",
			want:    "[text](../other.rst)",
		},
		{
			name:    "dot-slash link normalized",
			content: "[text](./other.md)",
			want:    "[text](other.md)",
		},
		{
			name:    "redundant segments collapsed",
			content: "[text](sub/../other.md)",
			want:    "[text](other.md)",
		},
		{
			name:    "image link rewritten too",
			content: "![alt](./img/pic.png)",
			want:    "![alt](img/pic.png)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := mkdocs.RewriteRelativeLinks(tt.content, current)
			assert.Equal(t, tt.want, got)
		})
	}
}
