// Package slog provides logging decorators for the domain interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// Ensure LoggingFetcher implements dealerscraper.Fetcher.
var _ dealerscraper.Fetcher = (*LoggingFetcher)(nil)

// LoggingFetcher wraps a Fetcher with logging of transport, size, and timing.
type LoggingFetcher struct {
	next   dealerscraper.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next dealerscraper.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the operation.
func (f *LoggingFetcher) Fetch(ctx context.Context, url string, opts dealerscraper.FetchOptions) (res *dealerscraper.FetchResult, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", url,
			"duration", time.Since(begin),
		}
		if res != nil {
			attrs = append(attrs, "transport", string(res.Transport), "bytes", len(res.HTML))
		}
		if err != nil {
			attrs = append(attrs, "err", err)
		}
		f.logger.Info("fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, url, opts)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}
