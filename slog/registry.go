package slog

import (
	"context"
	"log/slog"
	"time"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// Ensure LoggingRegistry implements dealerscraper.Registry.
var _ dealerscraper.Registry = (*LoggingRegistry)(nil)

// LoggingRegistry wraps a Registry with logging of strategy selection.
type LoggingRegistry struct {
	next   dealerscraper.Registry
	logger *slog.Logger
}

// NewLoggingRegistry creates a new LoggingRegistry.
func NewLoggingRegistry(next dealerscraper.Registry, logger *slog.Logger) *LoggingRegistry {
	return &LoggingRegistry{next: next, logger: logger}
}

// Register delegates to the wrapped registry.
func (r *LoggingRegistry) Register(s dealerscraper.Strategy) {
	r.next.Register(s)
}

// Select delegates to the wrapped registry and logs which strategy won.
func (r *LoggingRegistry) Select(ctx context.Context, html, url string) (sel *dealerscraper.Selection, err error) {
	defer func(begin time.Time) {
		r.log("strategy selection", url, sel, err, begin)
	}(time.Now())
	return r.next.Select(ctx, html, url)
}

// SelectFallback delegates to the wrapped registry and logs the result.
func (r *LoggingRegistry) SelectFallback(ctx context.Context, html, url string) (sel *dealerscraper.Selection, err error) {
	defer func(begin time.Time) {
		r.log("fallback selection", url, sel, err, begin)
	}(time.Now())
	return r.next.SelectFallback(ctx, html, url)
}

// Strategies delegates to the wrapped registry.
func (r *LoggingRegistry) Strategies() []dealerscraper.Strategy {
	return r.next.Strategies()
}

func (r *LoggingRegistry) log(msg, url string, sel *dealerscraper.Selection, err error, begin time.Time) {
	attrs := []any{
		"url", url,
		"duration", time.Since(begin),
	}
	if sel != nil {
		attrs = append(attrs,
			"strategy", sel.Strategy,
			"tier", sel.Tier.String(),
			"records", len(sel.Records),
		)
	}
	if err != nil {
		attrs = append(attrs, "err", err)
	}
	r.logger.Info(msg, attrs...)
}
