// Package http provides the light transport: a plain HTTP implementation of
// dealerscraper.Fetcher for sites that neither block automated clients nor
// require JavaScript rendering.
package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 30 * time.Second

// DefaultMinBodySize is the response size below which a 2xx response is
// treated as blocked. Interstitial and challenge pages are typically tiny
// compared to a real locations page.
const DefaultMinBodySize = 512

// challengeMarkers indicate a bot-blocking or challenge page despite a 2xx
// status.
var challengeMarkers = []string{
	"just a moment",
	"attention required",
	"checking your browser",
	"verify you are a human",
	"are you a robot",
	"access denied",
	"pardon our interruption",
	"cf-chl",
}

// Ensure Fetcher implements dealerscraper.Fetcher at compile time.
var _ dealerscraper.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves HTML content from URLs using plain HTTP requests with a
// realistic browser header set. It does not execute JavaScript; callers fall
// back to the browser transport when it fails.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	minBodySize int
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMinBodySize sets the blocked-response size threshold.
func WithMinBodySize(n int) Option {
	return func(f *Fetcher) {
		f.minBodySize = n
	}
}

// WithClient sets the underlying HTTP client. Used by tests.
func WithClient(client *http.Client) Option {
	return func(f *Fetcher) {
		f.client = client
	}
}

// NewFetcher creates a new light-transport Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		minBodySize: DefaultMinBodySize,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.client == nil {
		f.client = &http.Client{Timeout: f.timeout}
	}
	return f
}

// Fetch retrieves the HTML content from the given URL. Failures are
// classified so the caller can decide whether the browser transport is worth
// trying: EBLOCKED (refused, challenged, or suspiciously small response),
// ETIMEOUT, or EUNAVAILABLE (network or HTTP failure).
func (f *Fetcher) Fetch(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "invalid URL %q: %v", url, err)
	}
	setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || ctx.Err() != nil {
			return nil, dealerscraper.Errorf(dealerscraper.ETIMEOUT, "fetch %s: %v", url, err)
		}
		return nil, dealerscraper.Errorf(dealerscraper.EUNAVAILABLE, "fetch %s: %v", url, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusTooManyRequests,
		resp.StatusCode == http.StatusServiceUnavailable:
		return nil, dealerscraper.Errorf(dealerscraper.EBLOCKED, "HTTP %d for %s", resp.StatusCode, url)
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, dealerscraper.Errorf(dealerscraper.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, url)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.EUNAVAILABLE, "reading %s: %v", url, err)
	}

	html := string(body)
	if len(body) < f.minBodySize {
		return nil, dealerscraper.Errorf(dealerscraper.EBLOCKED, "response for %s below %d bytes", url, f.minBodySize)
	}
	if marker := challengeMarker(html); marker != "" {
		return nil, dealerscraper.Errorf(dealerscraper.EBLOCKED, "challenge marker %q in response for %s", marker, url)
	}

	finalURL := url
	if resp.Request != nil && resp.Request.URL != nil {
		finalURL = resp.Request.URL.String()
	}

	return &dealerscraper.FetchResult{
		HTML:      html,
		FinalURL:  finalURL,
		Transport: dealerscraper.TransportLight,
		FetchedAt: time.Now(),
	}, nil
}

// Close releases resources. For the light transport this is a no-op since
// http.Client doesn't require explicit cleanup.
func (f *Fetcher) Close() error {
	return nil
}

// setBrowserHeaders applies a realistic desktop-browser header set.
func setBrowserHeaders(req *http.Request) {
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

func challengeMarker(html string) string {
	// Challenge pages are short; only scan the head of large documents.
	sample := html
	if len(sample) > 4096 {
		sample = sample[:4096]
	}
	sample = strings.ToLower(sample)
	for _, marker := range challengeMarkers {
		if strings.Contains(sample, marker) {
			return marker
		}
	}
	return ""
}
