package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Strategy = (*LithiaStrategy)(nil)

// LithiaStrategy extracts locations from Lithia Motors sites, which render
// their store directory as li.info-window elements carrying hCard
// microformat classes.
type LithiaStrategy struct{}

// NewLithiaStrategy creates a new LithiaStrategy.
func NewLithiaStrategy() *LithiaStrategy {
	return &LithiaStrategy{}
}

func (s *LithiaStrategy) Name() string { return "lithia" }

func (s *LithiaStrategy) Tier() dealerscraper.Tier { return dealerscraper.TierSpecific }

// CanHandle reports whether the page looks like a Lithia store directory.
func (s *LithiaStrategy) CanHandle(html, url string) bool {
	if strings.Contains(strings.ToLower(url), "lithia") {
		return true
	}
	doc, err := parseDoc(html)
	if err != nil {
		return false
	}
	return doc.Find("li.info-window").Length() > 0
}

// Extract reads hCard fields out of each info-window element. Sales phone
// numbers live on the click-to-call attribute when present.
func (s *LithiaStrategy) Extract(ctx context.Context, html, url string) ([]dealerscraper.RawRecord, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "parsing HTML: %v", err)
	}

	var records []dealerscraper.RawRecord
	doc.Find("li.info-window").Each(func(_ int, card *goquery.Selection) {
		name := cleanText(card, ".org")
		if name == "" {
			return
		}

		phone := attrText(card, `.tel[data-click-to-call="Sales"]`, "data-click-to-call-phone")
		if phone == "" {
			phone = cleanText(card, `.tel[data-click-to-call="Sales"] .value`)
		}

		records = append(records, dealerscraper.RawRecord{
			Name:       name,
			Address:    cleanText(card, ".street-address"),
			City:       cleanText(card, ".locality"),
			Region:     cleanText(card, ".region"),
			PostalCode: cleanText(card, ".postal-code"),
			Phone:      phone,
			Website:    attrText(card, "a.url", "href"),
			SourceURL:  url,
			Strategy:   s.Name(),
		})
	})
	return records, nil
}
