// Package goquery provides the HTML extraction strategies and the tiered
// registry that selects among them. Strategies parse dealership location
// pages with CSS selectors; the registry tries site-specific strategies
// first, then generic ones, and exposes the fallback tier separately so the
// caller can decide when an expensive fallback is worth running.
package goquery

import (
	"context"
	"fmt"
	"sort"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.Registry = (*Registry)(nil)

// Registry holds extraction strategies grouped by tier. Selection is strict
// first-match within a tier: once a strategy claims a page via CanHandle, its
// result is final for that tier scan. A claiming strategy that extracts
// nothing does not fall through to later strategies in the same scan.
//
// Register calls must complete before Select is used; the registry is not
// safe for concurrent registration.
type Registry struct {
	tiers map[dealerscraper.Tier][]dealerscraper.Strategy
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{tiers: make(map[dealerscraper.Tier][]dealerscraper.Strategy)}
}

// Register adds a strategy to its tier. Strategies within a tier are tried
// in registration order.
func (r *Registry) Register(s dealerscraper.Strategy) {
	r.tiers[s.Tier()] = append(r.tiers[s.Tier()], s)
}

// Strategies returns all registered strategies ordered by tier, then by
// registration order within each tier.
func (r *Registry) Strategies() []dealerscraper.Strategy {
	tiers := make([]dealerscraper.Tier, 0, len(r.tiers))
	for t := range r.tiers {
		tiers = append(tiers, t)
	}
	sort.Slice(tiers, func(i, j int) bool { return tiers[i] < tiers[j] })

	var all []dealerscraper.Strategy
	for _, t := range tiers {
		all = append(all, r.tiers[t]...)
	}
	return all
}

// Select scans the specific, generic, and fallback tiers in order and runs
// the first strategy whose CanHandle claims the page.
//
// A claiming strategy that returns an error or zero records produces an
// EEMPTY error; no later strategy is consulted. The partial Selection
// returned alongside the error names the claiming strategy and tier, so the
// caller can tell a fallback-tier EEMPTY (terminal) from an upper-tier one.
// The fallback tier is reached only when nothing in the upper tiers claims
// the page. If no strategy in any tier claims it, Select returns ENOTFOUND.
func (r *Registry) Select(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
	for _, tier := range []dealerscraper.Tier{dealerscraper.TierSpecific, dealerscraper.TierGeneric, dealerscraper.TierFallback} {
		sel, err := r.selectInTier(ctx, tier, html, url)
		if sel != nil || err != nil {
			return sel, err
		}
	}
	return nil, dealerscraper.Errorf(dealerscraper.ENOTFOUND, "no strategy matched %s", url)
}

// SelectFallback scans only the fallback tier. Semantics match Select: the
// first claiming strategy is final, EEMPTY on a claimed-but-empty result,
// ENOTFOUND when nothing claims the page.
func (r *Registry) SelectFallback(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
	sel, err := r.selectInTier(ctx, dealerscraper.TierFallback, html, url)
	if sel == nil && err == nil {
		return nil, dealerscraper.Errorf(dealerscraper.ENOTFOUND, "no fallback strategy matched %s", url)
	}
	return sel, err
}

// selectInTier returns (nil, nil) when no strategy in the tier claims the
// page, so the caller can continue to the next tier. A claimed-but-empty
// result carries a partial Selection (strategy and tier, no records) with
// the EEMPTY error.
func (r *Registry) selectInTier(ctx context.Context, tier dealerscraper.Tier, html, url string) (*dealerscraper.Selection, error) {
	for _, s := range r.tiers[tier] {
		if !s.CanHandle(html, url) {
			continue
		}

		records, err := s.Extract(ctx, html, url)
		if err != nil {
			return &dealerscraper.Selection{Strategy: s.Name(), Tier: tier},
				dealerscraper.Errorf(dealerscraper.EEMPTY,
					"strategy %s matched %s but failed: %v", s.Name(), url, err)
		}
		if len(records) == 0 {
			return &dealerscraper.Selection{Strategy: s.Name(), Tier: tier},
				dealerscraper.Errorf(dealerscraper.EEMPTY,
					"strategy %s matched %s but extracted no records", s.Name(), url)
		}

		return &dealerscraper.Selection{
			Strategy: s.Name(),
			Tier:     tier,
			Records:  records,
			Diagnostics: []string{
				fmt.Sprintf("%s (%s): %d records", s.Name(), tier, len(records)),
			},
		}, nil
	}
	return nil, nil
}
