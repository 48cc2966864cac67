// Package rod provides the browser transport: a Chrome-automation
// implementation of dealerscraper.Fetcher for sites that block plain HTTP
// clients or render their locations with JavaScript.
package rod

import (
	"context"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/stealth"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// DefaultFetchTimeout bounds one browser fetch attempt.
const DefaultFetchTimeout = 60 * time.Second

// DefaultScrollPasses is how many times the page is scrolled to the bottom
// to trigger lazy-loaded location cards.
const DefaultScrollPasses = 3

// DefaultScrollDelay is the pause between scroll passes.
const DefaultScrollDelay = 1500 * time.Millisecond

// Ensure Fetcher implements dealerscraper.Fetcher at compile time.
var _ dealerscraper.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves rendered HTML using headless Chrome. Pages are created
// through the stealth plugin since dealer platforms (Dealer Inspire and
// similar) fingerprint automated browsers aggressively.
//
// Fetcher is safe for concurrent use by multiple goroutines; one rendering
// page is acquired per fetch attempt and released on every exit path.
type Fetcher struct {
	manager      *Manager
	timeout      time.Duration
	scrollPasses int
	scrollDelay  time.Duration
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the default per-fetch timeout.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithScrollPasses sets how many scroll-to-bottom passes run after load.
// Zero disables scrolling.
func WithScrollPasses(n int) Option {
	return func(f *Fetcher) {
		f.scrollPasses = n
	}
}

// WithScrollDelay sets the pause between scroll passes.
func WithScrollDelay(d time.Duration) Option {
	return func(f *Fetcher) {
		f.scrollDelay = d
	}
}

// NewFetcher creates a browser-transport Fetcher on top of a Manager.
// Close must be called when the Fetcher is no longer needed.
func NewFetcher(manager *Manager, opts ...Option) *Fetcher {
	f := &Fetcher{
		manager:      manager,
		timeout:      DefaultFetchTimeout,
		scrollPasses: DefaultScrollPasses,
		scrollDelay:  DefaultScrollDelay,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch navigates to the URL, waits for the page to settle, scrolls to
// trigger lazy content, and returns the rendered DOM.
func (f *Fetcher) Fetch(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
	timeout := f.timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.ETIMEOUT, "fetch %s: %v", url, err)
	}

	page, err := f.newPage()
	if err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.EINTERNAL, "creating page: %v", err)
	}
	defer page.Close()
	defer f.manager.PageDone()

	page = page.Context(ctx)

	html, finalURL, err := f.render(page, url)
	if err != nil {
		if ctx.Err() != nil {
			return nil, dealerscraper.Errorf(dealerscraper.ETIMEOUT, "render %s: %v", url, err)
		}
		return nil, dealerscraper.Errorf(dealerscraper.EINTERNAL, "render %s: %v", url, err)
	}

	return &dealerscraper.FetchResult{
		HTML:      html,
		FinalURL:  finalURL,
		Transport: dealerscraper.TransportBrowser,
		FetchedAt: time.Now(),
	}, nil
}

func (f *Fetcher) newPage() (page *rod.Page, err error) {
	// stealth.Page panics on protocol errors rather than returning them.
	defer func() {
		if r := recover(); r != nil {
			err = dealerscraper.Errorf(dealerscraper.EINTERNAL, "stealth page: %v", r)
		}
	}()
	return stealth.Page(f.manager.Browser())
}

func (f *Fetcher) render(page *rod.Page, url string) (html, finalURL string, err error) {
	if err := page.Navigate(url); err != nil {
		return "", "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", "", err
	}

	// Bounded settle: wait for the DOM to stop mutating, but don't treat a
	// chatty page as a failure.
	_ = rod.Try(func() {
		page.Timeout(5 * time.Second).MustWaitDOMStable()
	})

	for i := 0; i < f.scrollPasses; i++ {
		if _, err := page.Eval(`() => window.scrollTo(0, document.body.scrollHeight)`); err != nil {
			break
		}
		time.Sleep(f.scrollDelay)
	}

	html, err = page.HTML()
	if err != nil {
		return "", "", err
	}

	finalURL = url
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}
	return html, finalURL, nil
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
