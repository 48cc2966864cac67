package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Strategy = (*WellCardStrategy)(nil)

// WellCardStrategy extracts locations from div.well.matchable-heights
// grids, the layout shared by Ken Garff, AutoCanada, and Pritchard Family
// Auto Stores. The two variants are told apart per page: Ken Garff and
// AutoCanada cards carry span.di-dealer-address and span.dealer-phone
// elements, Pritchard cards hold plain paragraphs.
type WellCardStrategy struct{}

// NewWellCardStrategy creates a new WellCardStrategy.
func NewWellCardStrategy() *WellCardStrategy {
	return &WellCardStrategy{}
}

func (s *WellCardStrategy) Name() string { return "wellcards" }

func (s *WellCardStrategy) Tier() dealerscraper.Tier { return dealerscraper.TierSpecific }

// CanHandle reports whether the page uses the well-card grid.
func (s *WellCardStrategy) CanHandle(html, url string) bool {
	doc, err := parseDoc(html)
	if err != nil {
		return false
	}
	return doc.Find("div.well.matchable-heights").Length() > 0
}

// Extract detects the variant from the first card and parses every card
// with the matching layout.
func (s *WellCardStrategy) Extract(ctx context.Context, html, url string) ([]dealerscraper.RawRecord, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "parsing HTML: %v", err)
	}

	cards := doc.Find("div.well.matchable-heights")
	if cards.Length() == 0 {
		return nil, nil
	}

	first := cards.First()
	structured := first.Find("span.di-dealer-address").Length() > 0 &&
		first.Find("span.dealer-phone").Length() > 0

	var records []dealerscraper.RawRecord
	cards.Each(func(_ int, card *goquery.Selection) {
		var rec dealerscraper.RawRecord
		var ok bool
		if structured {
			rec, ok = s.extractStructured(card)
		} else {
			rec, ok = s.extractParagraphs(card)
		}
		if !ok {
			return
		}
		rec.SourceURL = url
		rec.Strategy = s.Name()
		records = append(records, rec)
	})
	return records, nil
}

// extractStructured handles the Ken Garff / AutoCanada variant. The address
// element renders its lines with <br> separators, so goquery text joins
// them; the normalizer's address parser accepts the comma-joined form.
func (s *WellCardStrategy) extractStructured(card *goquery.Selection) (dealerscraper.RawRecord, bool) {
	name := cleanText(card, "h2")
	if name == "" {
		return dealerscraper.RawRecord{}, false
	}

	website := attrText(card, "a.button.primary-button.block", "href")
	if website == "" {
		// AutoCanada wraps the heading itself in the dealer link.
		card.Find("a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
			if a.Find("h2").Length() > 0 {
				website, _ = a.Attr("href")
				return false
			}
			return true
		})
	}

	return dealerscraper.RawRecord{
		Name:    name,
		Address: addressFromBreaks(card.Find("span.di-dealer-address").First()),
		Phone:   cleanText(card, "span.dealer-phone.sales span"),
		Website: website,
	}, true
}

// extractParagraphs handles the Pritchard variant: paragraphs are address
// lines except the one that looks like a phone number.
func (s *WellCardStrategy) extractParagraphs(card *goquery.Selection) (dealerscraper.RawRecord, bool) {
	name := cleanText(card, "h2")
	if name == "" {
		return dealerscraper.RawRecord{}, false
	}

	var addressParts []string
	phone := ""
	card.Find("p").Each(func(_ int, p *goquery.Selection) {
		text := collapseSpaces(p.Text())
		if text == "" {
			return
		}
		if phone == "" && phoneRe.MatchString(text) {
			phone = phoneRe.FindString(text)
			return
		}
		addressParts = append(addressParts, text)
	})
	if len(addressParts) == 0 {
		return dealerscraper.RawRecord{}, false
	}

	return dealerscraper.RawRecord{
		Name:    name,
		Address: strings.Join(addressParts, ", "),
		Phone:   phone,
		Website: attrText(card, `a[href^="http"]`, "href"),
	}, true
}

// addressFromBreaks converts a <br>-separated address element into a
// comma-joined string by re-rendering its children.
func addressFromBreaks(sel *goquery.Selection) string {
	html, err := sel.Html()
	if err != nil {
		return collapseSpaces(sel.Text())
	}

	var parts []string
	for _, chunk := range brSplitRe.Split(html, -1) {
		frag, err := parseDoc(chunk)
		if err != nil {
			continue
		}
		if t := collapseSpaces(frag.Text()); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, ", ")
}
