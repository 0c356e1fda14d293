// Package harvest orchestrates the documentation pipeline: resolve a
// package specification, look up registry metadata, fetch source content,
// run every format processor, and persist the aggregate.
package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/docharvest"
)

// Harvester drives the full pipeline for each package specification
// independently. Specs carrying a URL (direct document URLs and local
// files) bypass registry lookup and use the URL fetcher; registry specs go
// through the matching provider and the repository fetcher.
type Harvester struct {
	Registries  map[docharvest.RegistryType]docharvest.RegistryProvider
	RepoFetcher docharvest.ContentFetcher
	URLFetcher  docharvest.ContentFetcher
	Processors  []docharvest.Processor
	Storage     docharvest.Storage
	Logger      *slog.Logger
}

// HarvestAll harvests every spec in order. A failing spec is logged and the
// remaining specs still run; only context cancellation stops the batch.
func (h *Harvester) HarvestAll(ctx context.Context, specs []docharvest.PackageSpec) error {
	for _, spec := range specs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if _, err := h.Harvest(ctx, spec); err != nil {
			h.logger().Error("failed to harvest package",
				slog.String("package", spec.Name),
				slog.Any("error", err))
		}
	}
	return nil
}

// Harvest runs the pipeline for one spec and returns the stored document,
// or nil when no processor produced content and storage was skipped.
func (h *Harvester) Harvest(ctx context.Context, spec docharvest.PackageSpec) (*docharvest.ProcessedDoc, error) {
	logger := h.logger().With(slog.String("package", spec.Name))
	logger.Info("harvesting package", slog.String("registry", string(spec.Registry)))

	pkg, fetcher, err := h.resolve(ctx, spec)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := fetcher.Cleanup(); err != nil {
			logger.Error("scratch cleanup failed", slog.Any("error", err))
		}
	}()

	loc, err := fetcher.Fetch(ctx, pkg)
	if err != nil {
		return nil, err
	}
	logger.Info("fetched content", slog.String("path", loc.Path))

	directories, errs := h.process(ctx, loc, logger)

	if len(directories) == 0 {
		logger.Warn("no documentation found")
		return nil, nil
	}

	doc := &docharvest.ProcessedDoc{
		Package:     pkg,
		Location:    loc,
		ProcessedAt: time.Now(),
		Directories: directories,
		Errors:      errs,
	}

	path, err := h.Storage.Store(ctx, doc)
	if err != nil {
		return nil, err
	}
	logger.Info("stored documentation", slog.String("path", path))

	return doc, nil
}

// resolve turns a spec into a Package and the fetcher responsible for it.
func (h *Harvester) resolve(ctx context.Context, spec docharvest.PackageSpec) (*docharvest.Package, docharvest.ContentFetcher, error) {
	if spec.URL != "" {
		pkg := &docharvest.Package{
			Name:             spec.Name,
			Version:          "latest",
			Registry:         spec.Registry,
			DocumentationURL: spec.URL,
		}
		return pkg, h.URLFetcher, nil
	}

	provider, ok := h.Registries[spec.Registry]
	if !ok {
		return nil, nil, docharvest.Errorf(docharvest.EDISCOVERY, "unsupported registry type %q", spec.Registry)
	}

	pkg, err := provider.GetPackageInfo(ctx, spec.Name, spec.Version)
	if err != nil {
		return nil, nil, err
	}
	return pkg, h.RepoFetcher, nil
}

// process runs every processor over the location, merging results with
// claimed-path bookkeeping: a root claimed by an exclusive processor is not
// reprocessed by later processors. Failures are recorded, never propagated.
func (h *Harvester) process(ctx context.Context, loc *docharvest.CodeLocation, logger *slog.Logger) ([]*docharvest.ProcessedDirectory, []string) {
	var directories []*docharvest.ProcessedDirectory
	var errs []string
	claimed := make(map[string]bool)

	for _, processor := range h.Processors {
		format := string(processor.Format())

		roots, err := processor.Detect(ctx, loc)
		if err != nil {
			errs = append(errs, fmt.Sprintf("processor %s failed: %v", format, err))
			logger.Error("processor detection failed",
				slog.String("processor", format),
				slog.Any("error", err))
			continue
		}

		for _, root := range roots {
			rel, err := filepath.Rel(loc.Path, root)
			if err != nil {
				rel = root
			}
			if claimed[rel] {
				continue
			}

			result, err := processor.Process(ctx, loc, root)
			if err != nil {
				errs = append(errs, fmt.Sprintf("failed to process %s: %v", rel, err))
				logger.Error("processing failed",
					slog.String("processor", format),
					slog.String("directory", rel),
					slog.Any("error", err))
				continue
			}

			annotate(result)
			directories = append(directories, result)
			if processor.Exclusive() {
				claimed[rel] = true
			}
			logger.Info("processed directory",
				slog.String("processor", format),
				slog.String("directory", rel),
				slog.Int("files", len(result.Content)))
		}
	}

	return directories, errs
}

// annotate records a content digest in the directory metadata so repeated
// harvests can be compared cheaply.
func annotate(dir *docharvest.ProcessedDirectory) {
	digest := xxhash.New()
	for _, name := range sortedKeys(dir.Content) {
		digest.WriteString(name)
		digest.WriteString(dir.Content[name])
	}

	if dir.Metadata == nil {
		dir.Metadata = make(map[string]any)
	}
	dir.Metadata["content_hash"] = fmt.Sprintf("%016x", digest.Sum64())
	dir.Metadata["file_count"] = len(dir.Content)
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (h *Harvester) logger() *slog.Logger {
	if h.Logger != nil {
		return h.Logger
	}
	return slog.Default()
}
