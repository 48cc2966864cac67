package mock

import (
	"context"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Registry = (*Registry)(nil)

// Registry is a mock implementation of dealerscraper.Registry.
type Registry struct {
	RegisterFn       func(s dealerscraper.Strategy)
	SelectFn         func(ctx context.Context, html, url string) (*dealerscraper.Selection, error)
	SelectFallbackFn func(ctx context.Context, html, url string) (*dealerscraper.Selection, error)
	StrategiesFn     func() []dealerscraper.Strategy
}

func (r *Registry) Register(s dealerscraper.Strategy) {
	r.RegisterFn(s)
}

func (r *Registry) Select(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
	return r.SelectFn(ctx, html, url)
}

func (r *Registry) SelectFallback(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
	return r.SelectFallbackFn(ctx, html, url)
}

func (r *Registry) Strategies() []dealerscraper.Strategy {
	if r.StrategiesFn == nil {
		return nil
	}
	return r.StrategiesFn()
}
