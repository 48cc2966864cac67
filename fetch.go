package dealerscraper

import (
	"context"
	"time"
)

// Transport identifies which fetch mechanism produced a result.
type Transport string

// Fetch transports.
const (
	TransportLight   Transport = "light"   // plain HTTP GET, no script execution
	TransportBrowser Transport = "browser" // headless rendering browser
)

// FetchResult holds the HTML retrieved for one URL. It is immutable once
// produced and owned by the caller for the duration of one extraction
// attempt.
type FetchResult struct {
	HTML      string
	FinalURL  string // after redirects
	Transport Transport
	FetchedAt time.Time
}

// FetchOptions controls a single fetch.
type FetchOptions struct {
	// ForceBrowser skips the light transport entirely.
	ForceBrowser bool

	// Timeout bounds the fetch attempt. Zero means the fetcher's default.
	Timeout time.Duration

	// DebugCapture persists the raw HTML for post-mortem inspection.
	// It never affects the returned result.
	DebugCapture bool
}

// Fetcher retrieves the HTML for a URL.
// Implementations may execute JavaScript to handle rendered content.
type Fetcher interface {
	// Fetch retrieves the page. The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string, opts FetchOptions) (*FetchResult, error)

	// Close releases transport resources.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}

// DebugSink persists raw fetched HTML keyed by URL and timestamp.
// Purely diagnostic; nothing in the pipeline reads it back.
type DebugSink interface {
	Capture(url string, fetchedAt time.Time, html string) error
}

// DomainLimiter throttles outbound requests per domain.
type DomainLimiter interface {
	// Wait blocks until the domain's rate limit allows a request.
	// Returns an error if the context is canceled before then.
	Wait(ctx context.Context, domain string) error
}
