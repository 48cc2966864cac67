package goquery

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// phoneRe matches North American phone numbers in the forms dealer sites
// actually use: (503) 555-0100, 503-555-0100, 503.555.0100, +1 503 555 0100.
var phoneRe = regexp.MustCompile(`(?:\+?1[\s.-]?)?\(?\d{3}\)?[\s.-]?\d{3}[\s.-]?\d{4}`)

// parseDoc wraps goquery document construction so every strategy parses
// HTML the same way.
func parseDoc(html string) (*goquery.Document, error) {
	return goquery.NewDocumentFromReader(strings.NewReader(html))
}

// cleanText returns the trimmed, whitespace-collapsed text of the first
// element matching selector under sel. Empty string when nothing matches.
func cleanText(sel *goquery.Selection, selector string) string {
	return collapseSpaces(sel.Find(selector).First().Text())
}

// cardText returns the trimmed text of sel itself.
func cardText(sel *goquery.Selection) string {
	return collapseSpaces(sel.Text())
}

// attrText returns a trimmed attribute value from the first element
// matching selector under sel.
func attrText(sel *goquery.Selection, selector, attr string) string {
	v, _ := sel.Find(selector).First().Attr(attr)
	return strings.TrimSpace(v)
}

// findPhone looks for a phone number inside a card: first a tel: link,
// then the first phone-shaped token in the card's text.
func findPhone(sel *goquery.Selection) string {
	phone := ""
	sel.Find(`a[href^="tel:"]`).EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		phone = strings.TrimSpace(strings.TrimPrefix(href, "tel:"))
		return phone == ""
	})
	if phone != "" {
		return phone
	}
	return phoneRe.FindString(sel.Text())
}

// findWebsite returns the first non-navigational link inside a card, used
// by card strategies to pick up per-dealer websites.
func findWebsite(sel *goquery.Selection) string {
	website := ""
	sel.Find("a[href]").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || href == "#" ||
			strings.HasPrefix(href, "tel:") ||
			strings.HasPrefix(href, "mailto:") ||
			strings.HasPrefix(href, "javascript:") {
			return true
		}
		website = href
		return false
	})
	return website
}

// joinAddressLines joins the text of every element matching selector under
// sel with ", ", skipping empties. Used when a card splits its address
// across multiple elements.
func joinAddressLines(sel *goquery.Selection, selector string) string {
	var parts []string
	sel.Find(selector).Each(func(_ int, line *goquery.Selection) {
		if t := collapseSpaces(line.Text()); t != "" {
			parts = append(parts, t)
		}
	})
	return strings.Join(parts, ", ")
}

var spacesRe = regexp.MustCompile(`\s+`)

// brSplitRe splits raw HTML on <br> tags and newlines.
var brSplitRe = regexp.MustCompile(`<br\s*/?>|\n`)

func collapseSpaces(s string) string {
	return strings.TrimSpace(spacesRe.ReplaceAllString(s, " "))
}
