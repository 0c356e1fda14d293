package harvest_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/docharvest"
	"github.com/fwojciec/docharvest/harvest"
	"github.com/fwojciec/docharvest/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newProcessor(format docharvest.DocFormat, exclusive bool, roots []string) *mock.Processor {
	return &mock.Processor{
		FormatFn:    func() docharvest.DocFormat { return format },
		ExclusiveFn: func() bool { return exclusive },
		DetectFn: func(ctx context.Context, loc *docharvest.CodeLocation) ([]string, error) {
			return roots, nil
		},
		ProcessFn: func(ctx context.Context, loc *docharvest.CodeLocation, dir string) (*docharvest.ProcessedDirectory, error) {
			return &docharvest.ProcessedDirectory{
				RelativePath: "docs",
				Format:       format,
				Content:      map[string]string{"index.md": "# Docs\n"},
			}, nil
		},
	}
}

func newFetcher(path string) *mock.ContentFetcher {
	return &mock.ContentFetcher{
		FetchFn: func(ctx context.Context, pkg *docharvest.Package) (*docharvest.CodeLocation, error) {
			return &docharvest.CodeLocation{Path: path}, nil
		},
		CleanupFn: func() error { return nil },
	}
}

func TestHarvester_Harvest_RegistrySpec(t *testing.T) {
	t.Parallel()

	provider := &mock.RegistryProvider{
		GetPackageInfoFn: func(ctx context.Context, name, version string) (*docharvest.Package, error) {
			return &docharvest.Package{
				Name:          name,
				Version:       "2.32.0",
				Registry:      docharvest.RegistryPyPI,
				RepositoryURL: "https://github.com/psf/requests",
			}, nil
		},
	}

	var stored *docharvest.ProcessedDoc
	storage := &mock.Storage{
		StoreFn: func(ctx context.Context, doc *docharvest.ProcessedDoc) (string, error) {
			stored = doc
			return "/out/requests-latest", nil
		},
	}

	h := &harvest.Harvester{
		Registries:  map[docharvest.RegistryType]docharvest.RegistryProvider{docharvest.RegistryPyPI: provider},
		RepoFetcher: newFetcher("/scratch/repo"),
		URLFetcher:  newFetcher("/scratch/url"),
		Processors:  []docharvest.Processor{newProcessor(docharvest.FormatMkDocs, true, []string{"/scratch/repo/docs"})},
		Storage:     storage,
	}

	doc, err := h.Harvest(context.Background(), docharvest.PackageSpec{Name: "requests", Registry: docharvest.RegistryPyPI})
	require.NoError(t, err)
	require.NotNil(t, doc)

	assert.Equal(t, "requests", doc.Package.Name)
	assert.Equal(t, "2.32.0", doc.Package.Version)
	require.Len(t, doc.Directories, 1)
	assert.Same(t, stored, doc)
}

func TestHarvester_Harvest_URLSpec_SynthesizesPackage(t *testing.T) {
	t.Parallel()

	var fetched *docharvest.Package
	urlFetcher := &mock.ContentFetcher{
		FetchFn: func(ctx context.Context, pkg *docharvest.Package) (*docharvest.CodeLocation, error) {
			fetched = pkg
			return &docharvest.CodeLocation{Path: "/scratch/url"}, nil
		},
		CleanupFn: func() error { return nil },
	}

	h := &harvest.Harvester{
		URLFetcher: urlFetcher,
		Processors: []docharvest.Processor{newProcessor(docharvest.FormatPlain, false, []string{"/scratch/url"})},
		Storage: &mock.Storage{
			StoreFn: func(ctx context.Context, doc *docharvest.ProcessedDoc) (string, error) {
				return "/out", nil
			},
		},
	}

	spec := docharvest.PackageSpec{
		Name:     "guide.md",
		Registry: docharvest.RegistryHTTP,
		URL:      "https://example.com/guide.md",
	}
	_, err := h.Harvest(context.Background(), spec)
	require.NoError(t, err)

	// Registry lookup is bypassed; the package is synthesized from the spec.
	require.NotNil(t, fetched)
	assert.Equal(t, "guide.md", fetched.Name)
	assert.Equal(t, "latest", fetched.Version)
	assert.Equal(t, "https://example.com/guide.md", fetched.DocumentationURL)
}

func TestHarvester_Harvest_UnsupportedRegistry(t *testing.T) {
	t.Parallel()

	h := &harvest.Harvester{
		Registries: map[docharvest.RegistryType]docharvest.RegistryProvider{},
	}

	_, err := h.Harvest(context.Background(), docharvest.PackageSpec{Name: "x", Registry: docharvest.RegistryNPM})
	require.Error(t, err)
	assert.Equal(t, docharvest.EDISCOVERY, docharvest.ErrorCode(err))
}

func TestHarvester_Harvest_ClaimedPaths(t *testing.T) {
	t.Parallel()

	mkdocs := newProcessor(docharvest.FormatMkDocs, true, []string{"/scratch/docs"})

	var sphinxProcessed []string
	sphinx := newProcessor(docharvest.FormatSphinx, true, []string{"/scratch/docs", "/scratch/manual"})
	sphinx.ProcessFn = func(ctx context.Context, loc *docharvest.CodeLocation, dir string) (*docharvest.ProcessedDirectory, error) {
		sphinxProcessed = append(sphinxProcessed, dir)
		return &docharvest.ProcessedDirectory{
			RelativePath: "manual",
			Format:       docharvest.FormatSphinx,
			Content:      map[string]string{"index.md": "x"},
		}, nil
	}

	h := &harvest.Harvester{
		URLFetcher: newFetcher("/scratch"),
		Processors: []docharvest.Processor{mkdocs, sphinx},
		Storage: &mock.Storage{
			StoreFn: func(ctx context.Context, doc *docharvest.ProcessedDoc) (string, error) {
				return "/out", nil
			},
		},
	}

	doc, err := h.Harvest(context.Background(), docharvest.PackageSpec{
		Name: "x", Registry: docharvest.RegistryHTTP, URL: "https://example.com/x.md",
	})
	require.NoError(t, err)

	// The root claimed by the mkdocs processor is skipped for sphinx.
	assert.Equal(t, []string{"/scratch/manual"}, sphinxProcessed)
	assert.Len(t, doc.Directories, 2)
}

func TestHarvester_Harvest_NonExclusiveDoesNotClaim(t *testing.T) {
	t.Parallel()

	plain := newProcessor(docharvest.FormatPlain, false, []string{"/scratch"})

	var mkdocsProcessed []string
	mkdocs := newProcessor(docharvest.FormatMkDocs, true, []string{"/scratch"})
	mkdocs.ProcessFn = func(ctx context.Context, loc *docharvest.CodeLocation, dir string) (*docharvest.ProcessedDirectory, error) {
		mkdocsProcessed = append(mkdocsProcessed, dir)
		return &docharvest.ProcessedDirectory{
			RelativePath: ".",
			Format:       docharvest.FormatMkDocs,
			Content:      map[string]string{"index.md": "x"},
		}, nil
	}

	h := &harvest.Harvester{
		URLFetcher: newFetcher("/scratch"),
		Processors: []docharvest.Processor{plain, mkdocs},
		Storage: &mock.Storage{
			StoreFn: func(ctx context.Context, doc *docharvest.ProcessedDoc) (string, error) {
				return "/out", nil
			},
		},
	}

	_, err := h.Harvest(context.Background(), docharvest.PackageSpec{
		Name: "x", Registry: docharvest.RegistryHTTP, URL: "https://example.com/x.md",
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"/scratch"}, mkdocsProcessed)
}

func TestHarvester_Harvest_NoContentSkipsStorage(t *testing.T) {
	t.Parallel()

	stored := false
	h := &harvest.Harvester{
		URLFetcher: newFetcher("/scratch"),
		Processors: []docharvest.Processor{newProcessor(docharvest.FormatPlain, false, nil)},
		Storage: &mock.Storage{
			StoreFn: func(ctx context.Context, doc *docharvest.ProcessedDoc) (string, error) {
				stored = true
				return "", nil
			},
		},
	}

	doc, err := h.Harvest(context.Background(), docharvest.PackageSpec{
		Name: "x", Registry: docharvest.RegistryHTTP, URL: "https://example.com/x.md",
	})
	require.NoError(t, err)
	assert.Nil(t, doc)
	assert.False(t, stored)
}

func TestHarvester_Harvest_CleanupRunsOnFailure(t *testing.T) {
	t.Parallel()

	cleaned := false
	fetcher := &mock.ContentFetcher{
		FetchFn: func(ctx context.Context, pkg *docharvest.Package) (*docharvest.CodeLocation, error) {
			return nil, docharvest.Errorf(docharvest.EFETCH, "no github link")
		},
		CleanupFn: func() error {
			cleaned = true
			return nil
		},
	}

	h := &harvest.Harvester{URLFetcher: fetcher}

	_, err := h.Harvest(context.Background(), docharvest.PackageSpec{
		Name: "x", Registry: docharvest.RegistryHTTP, URL: "https://example.com/x.md",
	})
	require.Error(t, err)
	assert.Equal(t, docharvest.EFETCH, docharvest.ErrorCode(err))
	assert.True(t, cleaned)
}

func TestHarvester_Harvest_ProcessorFailureRecorded(t *testing.T) {
	t.Parallel()

	broken := newProcessor(docharvest.FormatSphinx, true, []string{"/scratch/docs"})
	broken.ProcessFn = func(ctx context.Context, loc *docharvest.CodeLocation, dir string) (*docharvest.ProcessedDirectory, error) {
		return nil, docharvest.Errorf(docharvest.EPROCESSING, "boom")
	}

	h := &harvest.Harvester{
		URLFetcher: newFetcher("/scratch"),
		Processors: []docharvest.Processor{newProcessor(docharvest.FormatPlain, false, []string{"/scratch"}), broken},
		Storage: &mock.Storage{
			StoreFn: func(ctx context.Context, doc *docharvest.ProcessedDoc) (string, error) {
				return "/out", nil
			},
		},
	}

	doc, err := h.Harvest(context.Background(), docharvest.PackageSpec{
		Name: "x", Registry: docharvest.RegistryHTTP, URL: "https://example.com/x.md",
	})
	require.NoError(t, err)

	// The failing processor degrades the result instead of aborting it.
	require.Len(t, doc.Directories, 1)
	require.Len(t, doc.Errors, 1)
	assert.Contains(t, doc.Errors[0], "docs")
}

func TestHarvester_Harvest_ContentHashRecorded(t *testing.T) {
	t.Parallel()

	h := &harvest.Harvester{
		URLFetcher: newFetcher("/scratch"),
		Processors: []docharvest.Processor{newProcessor(docharvest.FormatPlain, false, []string{"/scratch"})},
		Storage: &mock.Storage{
			StoreFn: func(ctx context.Context, doc *docharvest.ProcessedDoc) (string, error) {
				return "/out", nil
			},
		},
	}

	doc, err := h.Harvest(context.Background(), docharvest.PackageSpec{
		Name: "x", Registry: docharvest.RegistryHTTP, URL: "https://example.com/x.md",
	})
	require.NoError(t, err)

	meta := doc.Directories[0].Metadata
	assert.Len(t, meta["content_hash"], 16)
	assert.Equal(t, 1, meta["file_count"])
}

func TestHarvester_HarvestAll_IsolatesFailures(t *testing.T) {
	t.Parallel()

	var attempted []string
	provider := &mock.RegistryProvider{
		GetPackageInfoFn: func(ctx context.Context, name, version string) (*docharvest.Package, error) {
			attempted = append(attempted, name)
			if name == "broken" {
				return nil, docharvest.Errorf(docharvest.EDISCOVERY, "package not found")
			}
			return &docharvest.Package{Name: name, Version: "1.0", Registry: docharvest.RegistryPyPI}, nil
		},
	}

	h := &harvest.Harvester{
		Registries:  map[docharvest.RegistryType]docharvest.RegistryProvider{docharvest.RegistryPyPI: provider},
		RepoFetcher: newFetcher("/scratch"),
		Processors:  []docharvest.Processor{newProcessor(docharvest.FormatPlain, false, []string{"/scratch"})},
		Storage: &mock.Storage{
			StoreFn: func(ctx context.Context, doc *docharvest.ProcessedDoc) (string, error) {
				return "/out", nil
			},
		},
	}

	specs := []docharvest.PackageSpec{
		{Name: "broken", Registry: docharvest.RegistryPyPI},
		{Name: "requests", Registry: docharvest.RegistryPyPI},
	}
	require.NoError(t, h.HarvestAll(context.Background(), specs))

	assert.Equal(t, []string{"broken", "requests"}, attempted)
}

func TestHarvester_HarvestAll_StopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h := &harvest.Harvester{}
	err := h.HarvestAll(ctx, []docharvest.PackageSpec{{Name: "x", Registry: docharvest.RegistryPyPI}})
	assert.True(t, errors.Is(err, context.Canceled))
}
