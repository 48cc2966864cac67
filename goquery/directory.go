package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Directory-page detection bounds. Below the minimum the links are probably
// nav chrome; above the maximum the page is a sitemap-scale index, not a
// location directory worth walking.
const (
	minDirectoryLinks = 3
	maxDirectoryLinks = 100
)

// directoryContainers are the elements dealer-group sites wrap their
// state/brand/region link lists in.
const directoryContainers = "div.af-location-container, .locations-directory, .state-list, .make-list, .location-list, .dealer-directory, .directory-list"

// directoryLinkPatterns mark hrefs that lead to location subpages.
var directoryLinkPatterns = []string{
	"/locations/", "/dealers/", "/store-locations", "state=", "/by-",
	"/find-", "/inventory/", "/location/", "/our-locations", "/search/",
}

// ExtractDirectoryLinks returns the subpage URLs of a directory page: a
// page that links out to per-state or per-brand location lists instead of
// listing dealerships itself. Links are resolved against baseURL and
// deduplicated preserving order. Returns nil when the count falls outside
// the directory bounds, meaning the page should not be treated as a
// directory.
func ExtractDirectoryLinks(html, baseURL string) []string {
	base, err := url.Parse(baseURL)
	if err != nil || base.Host == "" {
		return nil
	}
	doc, err := parseDoc(html)
	if err != nil {
		return nil
	}

	scope := doc.Find(directoryContainers)
	if scope.Length() == 0 {
		scope = doc.Selection
	}

	var links []string
	seen := make(map[string]bool)
	scope.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript") {
			return
		}
		if !matchesDirectoryPattern(href) {
			return
		}

		resolved := resolveLink(base, href)
		if resolved == "" || seen[resolved] {
			return
		}
		seen[resolved] = true
		links = append(links, resolved)
	})

	if len(links) < minDirectoryLinks || len(links) > maxDirectoryLinks {
		return nil
	}
	return links
}

func matchesDirectoryPattern(href string) bool {
	for _, pat := range directoryLinkPatterns {
		if strings.Contains(href, pat) {
			return true
		}
	}
	return false
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(href)
	if err != nil {
		return ""
	}
	return base.ResolveReference(ref).String()
}
