// Package mock provides function-field mock implementations of the
// docharvest interfaces for testing.
package mock

import (
	"context"

	"github.com/fwojciec/docharvest"
)

var _ docharvest.RegistryProvider = (*RegistryProvider)(nil)

// RegistryProvider is a mock implementation of docharvest.RegistryProvider.
type RegistryProvider struct {
	GetPackageInfoFn func(ctx context.Context, name, version string) (*docharvest.Package, error)
}

func (p *RegistryProvider) GetPackageInfo(ctx context.Context, name, version string) (*docharvest.Package, error) {
	return p.GetPackageInfoFn(ctx, name, version)
}

var _ docharvest.ContentFetcher = (*ContentFetcher)(nil)

// ContentFetcher is a mock implementation of docharvest.ContentFetcher.
type ContentFetcher struct {
	FetchFn   func(ctx context.Context, pkg *docharvest.Package) (*docharvest.CodeLocation, error)
	CleanupFn func() error
}

func (f *ContentFetcher) Fetch(ctx context.Context, pkg *docharvest.Package) (*docharvest.CodeLocation, error) {
	return f.FetchFn(ctx, pkg)
}

func (f *ContentFetcher) Cleanup() error {
	return f.CleanupFn()
}

var _ docharvest.Processor = (*Processor)(nil)

// Processor is a mock implementation of docharvest.Processor.
type Processor struct {
	FormatFn    func() docharvest.DocFormat
	ExclusiveFn func() bool
	DetectFn    func(ctx context.Context, loc *docharvest.CodeLocation) ([]string, error)
	ProcessFn   func(ctx context.Context, loc *docharvest.CodeLocation, dir string) (*docharvest.ProcessedDirectory, error)
}

func (p *Processor) Format() docharvest.DocFormat {
	return p.FormatFn()
}

func (p *Processor) Exclusive() bool {
	return p.ExclusiveFn()
}

func (p *Processor) Detect(ctx context.Context, loc *docharvest.CodeLocation) ([]string, error) {
	return p.DetectFn(ctx, loc)
}

func (p *Processor) Process(ctx context.Context, loc *docharvest.CodeLocation, dir string) (*docharvest.ProcessedDirectory, error) {
	return p.ProcessFn(ctx, loc, dir)
}

var _ docharvest.Storage = (*Storage)(nil)

// Storage is a mock implementation of docharvest.Storage.
type Storage struct {
	StoreFn func(ctx context.Context, doc *docharvest.ProcessedDoc) (string, error)
}

func (s *Storage) Store(ctx context.Context, doc *docharvest.ProcessedDoc) (string, error) {
	return s.StoreFn(ctx, doc)
}

var _ docharvest.RSTConverter = (*RSTConverter)(nil)

// RSTConverter is a mock implementation of docharvest.RSTConverter.
type RSTConverter struct {
	ConvertRSTFn func(ctx context.Context, src string) (string, error)
}

func (c *RSTConverter) ConvertRST(ctx context.Context, src string) (string, error) {
	return c.ConvertRSTFn(ctx, src)
}

var _ docharvest.Converter = (*Converter)(nil)

// Converter is a mock implementation of docharvest.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
