package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/docharvest"
)

// Ensure LoggingFetcher implements docharvest.ContentFetcher.
var _ docharvest.ContentFetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a ContentFetcher with operation logging.
type LoggingFetcher struct {
	next   docharvest.ContentFetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next docharvest.ContentFetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, pkg *docharvest.Package) (loc *docharvest.CodeLocation, err error) {
	defer func(begin time.Time) {
		path := ""
		if loc != nil {
			path = loc.Path
		}
		f.logger.Info("content fetch",
			"package", pkg.Name,
			"path", path,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return f.next.Fetch(ctx, pkg)
}

// Cleanup delegates to the wrapped fetcher.
func (f *LoggingFetcher) Cleanup() error {
	return f.next.Cleanup()
}
