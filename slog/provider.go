// Package slog provides logging decorators for docharvest services.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docharvest"
)

// Ensure LoggingProvider implements docharvest.RegistryProvider.
var _ docharvest.RegistryProvider = (*LoggingProvider)(nil)

// LoggingProvider wraps a RegistryProvider with operation logging.
type LoggingProvider struct {
	next   docharvest.RegistryProvider
	logger *slog.Logger
}

// NewLoggingProvider creates a new LoggingProvider.
func NewLoggingProvider(next docharvest.RegistryProvider, logger *slog.Logger) *LoggingProvider {
	return &LoggingProvider{next: next, logger: logger}
}

// GetPackageInfo delegates to the wrapped provider and logs the lookup.
func (p *LoggingProvider) GetPackageInfo(ctx context.Context, name, version string) (pkg *docharvest.Package, err error) {
	defer func(begin time.Time) {
		repo := ""
		if pkg != nil {
			repo = pkg.RepositoryURL
		}
		p.logger.Info("registry lookup",
			"package", name,
			"version", version,
			"repository", repo,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return p.next.GetPackageInfo(ctx, name, version)
}
