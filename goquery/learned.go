package goquery

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Strategy = (*LearnedRuleStrategy)(nil)

// LearnedRuleStrategy applies a persisted per-domain extraction rule: CSS
// selectors recorded from a previous successful extraction on the same
// site. CanHandle only checks that a rule exists for the page's host; the
// rule's card selector is validated during Extract.
type LearnedRuleStrategy struct {
	store dealerscraper.RuleStore
}

// NewLearnedRuleStrategy creates a new LearnedRuleStrategy backed by store.
func NewLearnedRuleStrategy(store dealerscraper.RuleStore) *LearnedRuleStrategy {
	return &LearnedRuleStrategy{store: store}
}

func (s *LearnedRuleStrategy) Name() string { return "learned" }

func (s *LearnedRuleStrategy) Tier() dealerscraper.Tier { return dealerscraper.TierGeneric }

// CanHandle reports whether a rule exists for the page's host. The Strategy
// interface carries no context here, so the store lookup runs under
// context.Background; rule lookups are local and cheap.
func (s *LearnedRuleStrategy) CanHandle(html, pageURL string) bool {
	domain := hostOf(pageURL)
	if domain == "" {
		return false
	}
	_, err := s.store.FindRuleByDomain(context.Background(), domain)
	return err == nil
}

// Extract applies the domain's rule to the page.
func (s *LearnedRuleStrategy) Extract(ctx context.Context, html, pageURL string) ([]dealerscraper.RawRecord, error) {
	domain := hostOf(pageURL)
	rule, err := s.store.FindRuleByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}

	doc, err := parseDoc(html)
	if err != nil {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "parsing HTML: %v", err)
	}

	var records []dealerscraper.RawRecord
	doc.Find(rule.CardSelector).Each(func(_ int, card *goquery.Selection) {
		name := cleanText(card, rule.NameSelector)
		if name == "" {
			return
		}

		rec := dealerscraper.RawRecord{
			Name:      name,
			SourceURL: pageURL,
			Strategy:  s.Name(),
		}
		if rule.AddressSelector != "" {
			rec.Address = cleanText(card, rule.AddressSelector)
		}
		if rule.PhoneSelector != "" {
			rec.Phone = cleanText(card, rule.PhoneSelector)
		}
		if rec.Phone == "" {
			rec.Phone = findPhone(card)
		}
		if rule.WebsiteSelector != "" {
			rec.Website = attrText(card, rule.WebsiteSelector, "href")
		}
		records = append(records, rec)
	})
	return records, nil
}

// hostOf returns the lowercased host of pageURL without a www prefix, the
// form rules are keyed by.
func hostOf(pageURL string) string {
	u, err := url.Parse(pageURL)
	if err != nil || u.Host == "" {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Host), "www.")
}
