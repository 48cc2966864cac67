package goquery

import (
	"context"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Strategy = (*EdwardsStrategy)(nil)

var (
	edwardsSalesPhone = regexp.MustCompile(`Sales:\s*(\d{3}-\d{3}-\d{4})`)
	edwardsAnyPhone   = regexp.MustCompile(`\d{3}-\d{3}-\d{4}`)
	edwardsStreetLine = regexp.MustCompile(`^\d+\s+\w+`)
)

// edwardsBrands qualify a line starting with "Edwards" as a dealership name.
var edwardsBrands = []string{
	"Chevrolet", "Buick", "GMC", "Cadillac", "CDJR", "Hyundai",
	"Kia", "Toyota", "Ford", "Honda", "Nissan", "Mitsubishi", "Mazda", "Subaru",
}

// EdwardsStrategy extracts locations from the Edwards Auto Group site,
// whose directory is a Bootstrap column grid with no per-field markup. Card
// text is parsed line by line; Genesis of Council Bluffs belongs to the
// group despite not carrying the Edwards name.
type EdwardsStrategy struct{}

// NewEdwardsStrategy creates a new EdwardsStrategy.
func NewEdwardsStrategy() *EdwardsStrategy {
	return &EdwardsStrategy{}
}

func (s *EdwardsStrategy) Name() string { return "edwards" }

func (s *EdwardsStrategy) Tier() dealerscraper.Tier { return dealerscraper.TierSpecific }

// CanHandle reports whether the page is the Edwards Auto Group site.
func (s *EdwardsStrategy) CanHandle(html, url string) bool {
	if strings.Contains(strings.ToLower(url), "edwardsautogroup") {
		return true
	}
	return strings.Contains(html, "Edwards Chevrolet") ||
		strings.Contains(html, "Edwards CDJR") ||
		(strings.Contains(html, "Edwards") && strings.Contains(html, "Council Bluffs"))
}

// Extract scans Bootstrap columns for dealership cards, deduplicating by
// name since the grid repeats cards across breakpoint variants.
func (s *EdwardsStrategy) Extract(ctx context.Context, html, url string) ([]dealerscraper.RawRecord, error) {
	doc, err := parseDoc(html)
	if err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "parsing HTML: %v", err)
	}

	cards := doc.Find(`div[class*="col-"]`)
	if cards.Length() == 0 {
		cards = doc.Find("div.card, div.dealer-card, div.location")
	}

	var records []dealerscraper.RawRecord
	seen := make(map[string]bool)
	cards.Each(func(_ int, card *goquery.Selection) {
		rec, ok := s.extractCard(card, url)
		if !ok || seen[rec.Name] {
			return
		}
		if !strings.HasPrefix(rec.Name, "Edwards") && !strings.Contains(rec.Name, "Genesis") {
			return
		}
		seen[rec.Name] = true
		records = append(records, rec)
	})
	return records, nil
}

func (s *EdwardsStrategy) extractCard(card *goquery.Selection, url string) (dealerscraper.RawRecord, bool) {
	text := card.Text()
	name := s.findName(text)
	if name == "" {
		return dealerscraper.RawRecord{}, false
	}

	rec := dealerscraper.RawRecord{
		Name:      name,
		Address:   s.findAddress(text),
		Phone:     s.findPhone(text),
		Website:   s.findWebsite(card),
		SourceURL: url,
		Strategy:  s.Name(),
	}
	return rec, true
}

func (s *EdwardsStrategy) findName(text string) string {
	for _, line := range textLines(text) {
		if strings.HasPrefix(line, "Edwards") {
			for _, brand := range edwardsBrands {
				if strings.Contains(line, brand) {
					return line
				}
			}
		}
		if strings.Contains(line, "Genesis") && strings.Contains(line, "Council Bluffs") {
			return "Genesis of Council Bluffs"
		}
	}
	return ""
}

// findAddress returns the card's address lines joined for the normalizer:
// the street line plus the City, ST ZIP line when both are present.
func (s *EdwardsStrategy) findAddress(text string) string {
	var street, cityLine string
	for _, line := range textLines(text) {
		switch {
		case street == "" && edwardsStreetLine.MatchString(line) && !edwardsAnyPhone.MatchString(line):
			street = line
		case cityLine == "" && groupOneCityStateZip.MatchString(line) && !edwardsStreetLine.MatchString(line):
			cityLine = line
		}
	}
	if street == "" {
		return ""
	}
	if cityLine == "" {
		return street
	}
	return street + ", " + cityLine
}

// findPhone prefers the Sales line over service and parts numbers.
func (s *EdwardsStrategy) findPhone(text string) string {
	if m := edwardsSalesPhone.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return edwardsAnyPhone.FindString(text)
}

func (s *EdwardsStrategy) findWebsite(card *goquery.Selection) string {
	website := ""
	card.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		label := strings.ToLower(collapseSpaces(a.Text()))
		if strings.Contains(label, "visit") || strings.Contains(label, "website") {
			href, _ := a.Attr("href")
			if strings.HasPrefix(href, "http") || strings.HasPrefix(href, "/") {
				website = href
				return false
			}
		}
		return true
	})
	return website
}

// textLines splits an element's text into trimmed non-empty lines.
func textLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if t := collapseSpaces(line); t != "" {
			lines = append(lines, t)
		}
	}
	return lines
}
