// Package extract provides the extraction pipeline: transport escalation,
// strategy selection with a bounded browser retry, normalization, and
// deduplication, plus batch orchestration over many sites.
package extract

import (
	"context"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// Ensure EscalatingFetcher implements dealerscraper.Fetcher at compile time.
var _ dealerscraper.Fetcher = (*EscalatingFetcher)(nil)

// EscalatingFetcher tries the light HTTP transport first and escalates to
// the browser transport when the light fetch fails for any reason: blocks,
// timeouts, transport errors. The browser is the expensive path, so it only
// runs when the cheap path has already lost.
type EscalatingFetcher struct {
	light   dealerscraper.Fetcher
	browser dealerscraper.Fetcher
	sink    dealerscraper.DebugSink
}

// NewEscalatingFetcher combines a light and a browser fetcher. sink may be
// nil; when set, fetches with DebugCapture persist their HTML through it.
func NewEscalatingFetcher(light, browser dealerscraper.Fetcher, sink dealerscraper.DebugSink) *EscalatingFetcher {
	return &EscalatingFetcher{light: light, browser: browser, sink: sink}
}

// Fetch retrieves the page, escalating from light to browser transport.
// With ForceBrowser set, the light transport is skipped entirely.
func (f *EscalatingFetcher) Fetch(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
	if opts.ForceBrowser {
		res, err := f.browser.Fetch(ctx, url, opts)
		if err != nil {
			return nil, err
		}
		return f.capture(res, opts), nil
	}

	res, err := f.light.Fetch(ctx, url, opts)
	if err == nil {
		return f.capture(res, opts), nil
	}
	if ctx.Err() != nil {
		return nil, err
	}

	res, berr := f.browser.Fetch(ctx, url, opts)
	if berr != nil {
		// The light error usually names the real obstacle (blocked,
		// unavailable); the browser error is the one worth surfacing only
		// when the light fetch never got a classification.
		return nil, dealerscraper.Errorf(dealerscraper.ErrorCode(err),
			"fetch %s: light: %v; browser: %v", url, err, berr)
	}
	return f.capture(res, opts), nil
}

// Close releases both transports, returning the first error encountered.
func (f *EscalatingFetcher) Close() error {
	lerr := f.light.Close()
	berr := f.browser.Close()
	if lerr != nil {
		return lerr
	}
	return berr
}

func (f *EscalatingFetcher) capture(res *dealerscraper.FetchResult, opts dealerscraper.FetchOptions) *dealerscraper.FetchResult {
	if res != nil && opts.DebugCapture && f.sink != nil {
		_ = f.sink.Capture(res.FinalURL, res.FetchedAt, res.HTML)
	}
	return res
}
