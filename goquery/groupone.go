package goquery

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Strategy = (*GroupOneStrategy)(nil)

// groupOneCityStateZip matches the "City, ST 12345" line used on Group 1
// subpage cards.
var groupOneCityStateZip = regexp.MustCompile(`([\w\s.-]+),\s*([A-Z]{2})\s*(\d{5})`)

// GroupOneStrategy extracts locations from Group 1 Automotive sites. The
// main directory uses dealer-card layouts; brand subpages use
// div.location.dealer cards with positional paragraph fields.
type GroupOneStrategy struct{}

// NewGroupOneStrategy creates a new GroupOneStrategy.
func NewGroupOneStrategy() *GroupOneStrategy {
	return &GroupOneStrategy{}
}

func (s *GroupOneStrategy) Name() string { return "groupone" }

func (s *GroupOneStrategy) Tier() dealerscraper.Tier { return dealerscraper.TierSpecific }

// CanHandle reports whether the page is a Group 1 Automotive property.
func (s *GroupOneStrategy) CanHandle(html, url string) bool {
	if strings.Contains(strings.ToLower(url), "group1auto") {
		return true
	}
	doc, err := parseDoc(html)
	if err != nil {
		return false
	}
	return doc.Find("div.g1-location-card, div.location.dealer").Length() > 0
}

// Extract tries the main-page card patterns first, then the subpage
// pattern. The first layout that yields records wins.
func (s *GroupOneStrategy) Extract(ctx context.Context, html, url string) ([]dealerscraper.RawRecord, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "parsing HTML: %v", err)
	}

	for _, selector := range []string{"div.dealer-card", "div.location-card", "div.g1-location-card"} {
		if records := s.extractMainCards(doc, selector, url); len(records) > 0 {
			return records, nil
		}
	}
	return s.extractSubpageCards(doc, url), nil
}

func (s *GroupOneStrategy) extractMainCards(doc *goquery.Document, selector, url string) []dealerscraper.RawRecord {
	var records []dealerscraper.RawRecord
	doc.Find(selector).Each(func(_ int, card *goquery.Selection) {
		name := cleanText(card, ".dealer-title, .dealer-name, h2, h3, h4")
		address := cleanText(card, ".dealer-address, .address, address, .dealer-info__address")
		if name == "" && address == "" {
			return
		}

		phone := cleanText(card, `.dealer-phone, .phone, .dealer-info__phone`)
		if !phoneRe.MatchString(phone) {
			phone = findPhone(card)
		}

		// Per-dealer sites are the off-platform links; corporate links
		// point back at group1auto.com.
		website := attrText(card, `a[href^="http"]:not([href*="group1auto.com"])`, "href")
		if website == "" {
			website = attrText(card, `a.btn, a.button, a[role="button"]`, "href")
		}

		records = append(records, dealerscraper.RawRecord{
			Name:      name,
			Address:   address,
			Phone:     phone,
			Website:   website,
			SourceURL: url,
			Strategy:  s.Name(),
		})
	})
	return records
}

// extractSubpageCards handles brand subpages where each card lays out
// street, city/state/zip, and phone as consecutive paragraphs.
func (s *GroupOneStrategy) extractSubpageCards(doc *goquery.Document, url string) []dealerscraper.RawRecord {
	var records []dealerscraper.RawRecord
	doc.Find("div.location.dealer").Each(func(_ int, card *goquery.Selection) {
		name := cleanText(card, "h3.af-brand-text")
		if name == "" {
			return
		}

		rec := dealerscraper.RawRecord{
			Name:      name,
			SourceURL: url,
			Strategy:  s.Name(),
		}

		paras := card.Find("p")
		if paras.Length() > 0 {
			rec.Address = collapseSpaces(paras.Eq(0).Text())
		}
		if paras.Length() > 1 {
			if m := groupOneCityStateZip.FindStringSubmatch(collapseSpaces(paras.Eq(1).Text())); m != nil {
				rec.City = strings.TrimSpace(m[1])
				rec.Region = m[2]
				rec.PostalCode = m[3]
			}
		}
		if paras.Length() > 2 {
			rec.Phone = collapseSpaces(paras.Eq(2).Text())
		}

		card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if strings.EqualFold(collapseSpaces(a.Text()), "website") {
				rec.Website, _ = a.Attr("href")
				return false
			}
			return true
		})

		records = append(records, rec)
	})
	return records
}
