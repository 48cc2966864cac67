package http

import (
	"bufio"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/beevik/etree"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// DefaultDiscoverLimit bounds sitemap discovery so it never turns into a
// general-purpose crawl.
const DefaultDiscoverLimit = 50

// directoryPatterns mark URLs that plausibly list dealership locations.
var directoryPatterns = []string{
	"/locations", "/dealers", "/store-locations", "state=", "/by-",
	"/find-", "/location/", "/our-locations", "/dealerships",
}

// LocationPageFinder discovers candidate location-directory pages from a
// site's sitemap. It is a bounded, single-step discovery aid for the fetch
// layer's caller, not a crawler.
type LocationPageFinder struct {
	client *http.Client
	limit  int
}

// FinderOption configures a LocationPageFinder.
type FinderOption func(*LocationPageFinder)

// WithLimit caps the number of returned URLs. Defaults to DefaultDiscoverLimit.
func WithLimit(n int) FinderOption {
	return func(f *LocationPageFinder) {
		f.limit = n
	}
}

// NewLocationPageFinder creates a new LocationPageFinder with the given HTTP
// client. If client is nil, http.DefaultClient is used.
func NewLocationPageFinder(client *http.Client, opts ...FinderOption) *LocationPageFinder {
	if client == nil {
		client = http.DefaultClient
	}
	f := &LocationPageFinder{client: client, limit: DefaultDiscoverLimit}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Discover returns location-directory candidate URLs for the site hosting
// baseURL, up to the configured limit. Returns an empty slice (not nil) when
// the site has no sitemap or no matching URLs.
func (f *LocationPageFinder) Discover(ctx context.Context, baseURL string) ([]string, error) {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "invalid base URL %q", baseURL)
	}

	sitemaps, err := f.sitemapURLs(ctx, base)
	if err != nil {
		return nil, err
	}

	found := []string{}
	seen := make(map[string]bool)
	seenSitemaps := make(map[string]bool)

	for len(sitemaps) > 0 && len(found) < f.limit {
		sm := sitemaps[0]
		sitemaps = sitemaps[1:]
		if seenSitemaps[sm] {
			continue
		}
		seenSitemaps[sm] = true

		urls, nested, err := f.readSitemap(ctx, sm)
		if err != nil {
			continue // a broken sitemap shouldn't sink discovery
		}
		sitemaps = append(sitemaps, nested...)

		for _, u := range urls {
			if len(found) >= f.limit {
				break
			}
			if seen[u] || !looksLikeLocationPage(u) {
				continue
			}
			seen[u] = true
			found = append(found, u)
		}
	}
	return found, nil
}

// sitemapURLs finds sitemap locations from robots.txt, falling back to the
// conventional /sitemap.xml.
func (f *LocationPageFinder) sitemapURLs(ctx context.Context, base *url.URL) ([]string, error) {
	root := *base
	root.Path = "/robots.txt"
	root.RawQuery = ""

	var sitemaps []string
	body, err := f.get(ctx, root.String())
	if err == nil {
		scanner := bufio.NewScanner(strings.NewReader(body))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if rest, ok := strings.CutPrefix(line, "Sitemap:"); ok {
				sitemaps = append(sitemaps, strings.TrimSpace(rest))
			}
		}
	}
	if len(sitemaps) == 0 {
		fallback := *base
		fallback.Path = "/sitemap.xml"
		fallback.RawQuery = ""
		sitemaps = append(sitemaps, fallback.String())
	}
	return sitemaps, nil
}

// readSitemap parses one sitemap document, returning page URLs and nested
// sitemap URLs (for sitemap index files).
func (f *LocationPageFinder) readSitemap(ctx context.Context, sitemapURL string) (urls, nested []string, err error) {
	body, err := f.get(ctx, sitemapURL)
	if err != nil {
		return nil, nil, err
	}

	doc := etree.NewDocument()
	if err := doc.ReadFromString(body); err != nil {
		return nil, nil, dealerscraper.Errorf(dealerscraper.EINVALID, "parsing sitemap %s: %v", sitemapURL, err)
	}

	root := doc.Root()
	if root == nil {
		return nil, nil, dealerscraper.Errorf(dealerscraper.EINVALID, "empty sitemap %s", sitemapURL)
	}

	for _, entry := range root.SelectElements("sitemap") {
		if loc := entry.SelectElement("loc"); loc != nil {
			nested = append(nested, strings.TrimSpace(loc.Text()))
		}
	}
	for _, entry := range root.SelectElements("url") {
		if loc := entry.SelectElement("loc"); loc != nil {
			urls = append(urls, strings.TrimSpace(loc.Text()))
		}
	}
	return urls, nested, nil
}

func (f *LocationPageFinder) get(ctx context.Context, u string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return "", dealerscraper.Errorf(dealerscraper.EINVALID, "invalid URL %q: %v", u, err)
	}
	setBrowserHeaders(req)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", dealerscraper.Errorf(dealerscraper.EUNAVAILABLE, "fetch %s: %v", u, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", dealerscraper.Errorf(dealerscraper.EUNAVAILABLE, "HTTP %d for %s", resp.StatusCode, u)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", dealerscraper.Errorf(dealerscraper.EUNAVAILABLE, "reading %s: %v", u, err)
	}
	return string(body), nil
}

func looksLikeLocationPage(u string) bool {
	lower := strings.ToLower(u)
	for _, pat := range directoryPatterns {
		if strings.Contains(lower, pat) {
			return true
		}
	}
	return false
}
