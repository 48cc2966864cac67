package extract

import (
	"context"
	"time"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// LogFunc is the signature for a retry logging function.
type LogFunc func(format string, args ...any)

var _ dealerscraper.Fetcher = (*RetryFetcher)(nil)

// RetryFetcher decorates a Fetcher with exponential-backoff retries.
type RetryFetcher struct {
	fetcher dealerscraper.Fetcher
	logger  LogFunc
	delays  []time.Duration
}

// NewRetryFetcher wraps fetcher with retries. logger may be nil; delays
// defaults to DefaultRetryDelays when empty.
func NewRetryFetcher(fetcher dealerscraper.Fetcher, logger LogFunc, delays []time.Duration) *RetryFetcher {
	if len(delays) == 0 {
		delays = DefaultRetryDelays()
	}
	return &RetryFetcher{fetcher: fetcher, logger: logger, delays: delays}
}

// Fetch retrieves the URL, retrying transient failures.
func (r *RetryFetcher) Fetch(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
	return FetchWithRetryDelays(ctx, r.fetcher, url, opts, r.logger, r.delays)
}

// Close releases the underlying fetcher.
func (r *RetryFetcher) Close() error {
	return r.fetcher.Close()
}

// DefaultRetryDelays returns the backoff delays for fetch retries: 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	return []time.Duration{1 * time.Second, 2 * time.Second, 4 * time.Second}
}

// FetchWithRetry fetches a URL with exponential backoff: one initial
// attempt plus a retry per DefaultRetryDelays entry.
func FetchWithRetry(ctx context.Context, fetcher dealerscraper.Fetcher, url string, opts dealerscraper.FetchOptions, logger LogFunc) (*dealerscraper.FetchResult, error) {
	return FetchWithRetryDelays(ctx, fetcher, url, opts, logger, DefaultRetryDelays())
}

// FetchWithRetryDelays is like FetchWithRetry with configurable delays,
// which keeps tests from sleeping through real backoff.
//
// EINVALID failures are not retried: a malformed URL will not improve.
func FetchWithRetryDelays(ctx context.Context, fetcher dealerscraper.Fetcher, url string, opts dealerscraper.FetchOptions, logger LogFunc, delays []time.Duration) (*dealerscraper.FetchResult, error) {
	maxAttempts := len(delays) + 1

	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		res, err := fetcher.Fetch(ctx, url, opts)
		if err == nil {
			return res, nil
		}
		lastErr = err

		if dealerscraper.ErrorCode(err) == dealerscraper.EINVALID {
			break
		}
		if attempt >= maxAttempts-1 {
			break
		}

		if logger != nil {
			logger("  retry %s (attempt %d): %v", url, attempt+2, err)
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delays[attempt]):
		}
	}

	return nil, lastErr
}
