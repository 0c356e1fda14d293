package docharvest_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/docharvest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpec_VersionSeparators(t *testing.T) {
	t.Parallel()

	// All three separators must parse identically.
	for _, raw := range []string{"requests==1.2.3", "requests@1.2.3", "requests:1.2.3"} {
		t.Run(raw, func(t *testing.T) {
			t.Parallel()

			got := docharvest.ParseSpec(raw, docharvest.RegistryPyPI)

			assert.Equal(t, "requests", got.Name)
			assert.Equal(t, "1.2.3", got.Version)
			assert.Equal(t, docharvest.RegistryPyPI, got.Registry)
			assert.Empty(t, got.URL)
		})
	}
}

func TestParseSpec_BareName(t *testing.T) {
	t.Parallel()

	got := docharvest.ParseSpec("left-pad", docharvest.RegistryNPM)

	assert.Equal(t, "left-pad", got.Name)
	assert.Equal(t, docharvest.RegistryNPM, got.Registry)
	assert.Empty(t, got.Version)
}

func TestParseSpec_DefaultRegistry(t *testing.T) {
	t.Parallel()

	got := docharvest.ParseSpec("requests", "")

	assert.Equal(t, docharvest.RegistryPyPI, got.Registry)
}

func TestParseSpec_DirectURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		raw      string
		wantName string
		wantURL  bool
	}{
		{
			name:     "markdown file",
			raw:      "https://example.com/docs/readme.md",
			wantName: "readme.md",
			wantURL:  true,
		},
		{
			name:     "rst file uppercase extension",
			raw:      "https://example.com/docs/INDEX.RST",
			wantName: "INDEX.RST",
			wantURL:  true,
		},
		{
			name:     "txt file with query",
			raw:      "http://example.com/llms.txt?v=2",
			wantName: "llms.txt",
			wantURL:  true,
		},
		{
			name: "website without document extension falls through",
			raw:  "https://example.com/docs/",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := docharvest.ParseSpec(tt.raw, docharvest.RegistryPyPI)

			if tt.wantURL {
				assert.Equal(t, docharvest.RegistryHTTP, got.Registry)
				assert.Equal(t, tt.raw, got.URL)
				assert.Equal(t, tt.wantName, got.Name)
			} else {
				assert.NotEqual(t, docharvest.RegistryHTTP, got.Registry)
				assert.Empty(t, got.URL)
			}
		})
	}
}

func TestParseSpec_LocalPath(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	file := filepath.Join(dir, "notes.md")
	require.NoError(t, os.WriteFile(file, []byte("# notes"), 0o644))

	// Classified as local regardless of the registry flag passed.
	got := docharvest.ParseSpec(file, docharvest.RegistryCargo)

	assert.Equal(t, docharvest.RegistryLocal, got.Registry)
	assert.Equal(t, "notes.md", got.Name)
	assert.Equal(t, file, got.URL)
}

func TestPackage_Validate(t *testing.T) {
	t.Parallel()

	t.Run("valid", func(t *testing.T) {
		t.Parallel()

		pkg := &docharvest.Package{Name: "requests", Version: "2.0.0", Registry: docharvest.RegistryPyPI}
		assert.NoError(t, pkg.Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		t.Parallel()

		pkg := &docharvest.Package{Registry: docharvest.RegistryPyPI}
		err := pkg.Validate()
		assert.Equal(t, docharvest.EINVALID, docharvest.ErrorCode(err))
	})

	t.Run("missing registry", func(t *testing.T) {
		t.Parallel()

		pkg := &docharvest.Package{Name: "requests"}
		err := pkg.Validate()
		assert.Equal(t, docharvest.EINVALID, docharvest.ErrorCode(err))
	})
}
