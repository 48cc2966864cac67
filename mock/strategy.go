package mock

import (
	"context"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Strategy = (*Strategy)(nil)

// Strategy is a mock implementation of dealerscraper.Strategy.
type Strategy struct {
	NameFn      func() string
	TierFn      func() dealerscraper.Tier
	CanHandleFn func(html, url string) bool
	ExtractFn   func(ctx context.Context, html, url string) ([]dealerscraper.RawRecord, error)
}

func (s *Strategy) Name() string {
	return s.NameFn()
}

func (s *Strategy) Tier() dealerscraper.Tier {
	return s.TierFn()
}

func (s *Strategy) CanHandle(html, url string) bool {
	return s.CanHandleFn(html, url)
}

func (s *Strategy) Extract(ctx context.Context, html, url string) ([]dealerscraper.RawRecord, error) {
	return s.ExtractFn(ctx, html, url)
}
