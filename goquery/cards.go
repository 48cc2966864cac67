package goquery

import (
	"context"

	"github.com/PuerkitoBio/goquery"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Strategy = (*CardStrategy)(nil)

// cardPattern pairs a container selector with the selectors used to read
// fields out of each matching card.
type cardPattern struct {
	card    string
	name    string
	address string
}

// cardPatterns are the repeated-element layouts seen across dealer-group
// location pages, tried in order. The first pattern that yields records
// wins; mixing cards from different patterns double-counts locations.
var cardPatterns = []cardPattern{
	{card: ".dealer-card", name: "h2, h3, h4, .name, .dealer-name", address: ".address, address"},
	{card: ".location-card", name: "h2, h3, h4, .name, .location-name", address: ".address, address"},
	{card: ".location-item", name: "h2, h3, h4, .name", address: ".address, address"},
	{card: ".store-card", name: "h2, h3, h4, .name, .store-name", address: ".address, address"},
	{card: "[class*='dealer-location']", name: "h2, h3, h4", address: ".address, address"},
	{card: ".vcard", name: ".org, .fn", address: ".adr"},
}

// minCardRecords guards against matching a lone card that is really a
// contact block rather than a directory.
const minCardRecords = 2

// CardStrategy extracts locations from repeated card-style markup using a
// catalog of common class-name conventions.
type CardStrategy struct{}

// NewCardStrategy creates a new CardStrategy.
func NewCardStrategy() *CardStrategy {
	return &CardStrategy{}
}

func (s *CardStrategy) Name() string { return "cards" }

func (s *CardStrategy) Tier() dealerscraper.Tier { return dealerscraper.TierGeneric }

// CanHandle reports whether any card pattern appears at least
// minCardRecords times.
func (s *CardStrategy) CanHandle(html, url string) bool {
	doc, err := parseDoc(html)
	if err != nil {
		return false
	}
	for _, pat := range cardPatterns {
		if doc.Find(pat.card).Length() >= minCardRecords {
			return true
		}
	}
	return false
}

// Extract tries each card pattern in order and returns the records from the
// first pattern that produces any.
func (s *CardStrategy) Extract(ctx context.Context, html, url string) ([]dealerscraper.RawRecord, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "parsing HTML: %v", err)
	}

	for _, pat := range cardPatterns {
		records := s.extractPattern(doc, pat, url)
		if len(records) > 0 {
			return records, nil
		}
	}
	return nil, nil
}

func (s *CardStrategy) extractPattern(doc *goquery.Document, pat cardPattern, url string) []dealerscraper.RawRecord {
	var records []dealerscraper.RawRecord
	doc.Find(pat.card).Each(func(_ int, card *goquery.Selection) {
		name := cleanText(card, pat.name)
		if name == "" {
			return
		}

		address := cleanText(card, pat.address)
		if address == "" {
			address = joinAddressLines(card, "p")
		}

		records = append(records, dealerscraper.RawRecord{
			Name:      name,
			Address:   address,
			Phone:     findPhone(card),
			Website:   findWebsite(card),
			SourceURL: url,
			Strategy:  s.Name(),
		})
	})
	if len(records) < minCardRecords {
		return nil
	}
	return records
}
