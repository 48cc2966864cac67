// Package mock provides function-field test doubles for the domain
// interfaces.
package mock

import (
	"context"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of dealerscraper.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
	return f.FetchFn(ctx, url, opts)
}

func (f *Fetcher) Close() error {
	if f.CloseFn == nil {
		return nil
	}
	return f.CloseFn()
}
