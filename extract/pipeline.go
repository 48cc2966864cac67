package extract

import (
	"context"
	"fmt"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
	"github.com/CedmondsTH/dealer-scraper/goquery"
)

// Pipeline runs one URL through fetch, strategy selection, normalization,
// and deduplication. Every failure is a typed Outcome, never a bare error:
// callers batching hundreds of sites need the reason, not a stack.
type Pipeline struct {
	Fetcher    dealerscraper.Fetcher
	Registry   dealerscraper.Registry
	Normalizer *dealerscraper.Normalizer
	Deduper    *dealerscraper.Deduplicator
}

// Run extracts the dealership locations for one URL.
//
// When nothing can be extracted from the page itself and it links out to a
// plausible set of location subpages (a per-state or per-brand directory),
// each subpage is run through the pipeline and the results are merged.
func (p *Pipeline) Run(ctx context.Context, url string, opts dealerscraper.FetchOptions) *dealerscraper.Outcome {
	out, res := p.runPage(ctx, url, opts)
	if out.Success || res == nil {
		return out
	}

	links := goquery.ExtractDirectoryLinks(res.HTML, res.FinalURL)
	if len(links) == 0 {
		return out
	}

	diags := append(out.Diagnostics, fmt.Sprintf("directory page: %d subpages", len(links)))
	var all []dealerscraper.CanonicalRecord
	strategy := ""
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		sub, _ := p.runPage(ctx, link, opts)
		if !sub.Success {
			diags = append(diags, fmt.Sprintf("subpage %s: %s", link, sub.FailReason))
			continue
		}
		all = append(all, sub.Records...)
		strategy = sub.Strategy
		diags = append(diags, fmt.Sprintf("subpage %s: %d records via %s", link, len(sub.Records), sub.Strategy))
	}

	if len(all) == 0 {
		out.Diagnostics = diags
		return out
	}
	return &dealerscraper.Outcome{
		Success:     true,
		Records:     p.Deduper.Dedupe(all),
		Strategy:    strategy,
		Diagnostics: diags,
	}
}

// runPage extracts one page without directory expansion. The fetch result
// is returned alongside the outcome so the caller can inspect the HTML; it
// is nil when the fetch itself failed.
//
// If a strategy matches the light-transport HTML but extracts nothing, the
// page is refetched once with the browser before the fallback tier is
// consulted: empty results on light HTML are usually JavaScript-rendered
// content, not a genuinely empty page.
func (p *Pipeline) runPage(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.Outcome, *dealerscraper.FetchResult) {
	var diags []string

	res, err := p.Fetcher.Fetch(ctx, url, opts)
	if err != nil {
		return &dealerscraper.Outcome{
			FailReason:  dealerscraper.FailFetchError,
			Diagnostics: append(diags, fmt.Sprintf("fetch: %v", err)),
		}, nil
	}
	diags = append(diags, fmt.Sprintf("fetched %s via %s", res.FinalURL, res.Transport))

	sel, err := p.Registry.Select(ctx, res.HTML, res.FinalURL)

	// Bounded escalation: one browser refetch on a matched-but-empty
	// result, only when the first fetch used the light transport.
	if err != nil && dealerscraper.ErrorCode(err) == dealerscraper.EEMPTY &&
		res.Transport == dealerscraper.TransportLight && !opts.ForceBrowser {
		diags = append(diags, fmt.Sprintf("empty result on light HTML: %v; refetching with browser", err))

		browserOpts := opts
		browserOpts.ForceBrowser = true
		if bres, berr := p.Fetcher.Fetch(ctx, url, browserOpts); berr == nil {
			res = bres
			diags = append(diags, fmt.Sprintf("refetched %s via %s", res.FinalURL, res.Transport))
			sel, err = p.Registry.Select(ctx, res.HTML, res.FinalURL)
		} else {
			diags = append(diags, fmt.Sprintf("browser refetch: %v", berr))
		}
	}

	// Matched-but-empty after the browser retry: descend to the fallback
	// tier before giving up. When the empty result already came from the
	// fallback tier, it is terminal — re-running the same strategy on the
	// same HTML cannot improve, and for a model-backed fallback it would
	// bill a duplicate call.
	if err != nil && dealerscraper.ErrorCode(err) == dealerscraper.EEMPTY &&
		(sel == nil || sel.Tier != dealerscraper.TierFallback) {
		diags = append(diags, fmt.Sprintf("descending to fallback tier: %v", err))
		sel, err = p.Registry.SelectFallback(ctx, res.HTML, res.FinalURL)
	}

	if err != nil {
		reason := dealerscraper.FailNoValidRecords
		if dealerscraper.ErrorCode(err) == dealerscraper.ENOTFOUND {
			reason = dealerscraper.FailNoStrategy
		}
		out := &dealerscraper.Outcome{
			FailReason:  reason,
			Diagnostics: append(diags, fmt.Sprintf("selection: %v", err)),
		}
		if sel != nil {
			out.Strategy = sel.Strategy
		}
		return out, res
	}
	diags = append(diags, sel.Diagnostics...)

	records := p.normalize(sel, &diags)
	if len(records) == 0 {
		return &dealerscraper.Outcome{
			Strategy:    sel.Strategy,
			FailReason:  dealerscraper.FailNoValidRecords,
			Diagnostics: append(diags, "all extracted records were discarded during normalization"),
		}, res
	}

	deduped := p.Deduper.Dedupe(records)
	if len(deduped) < len(records) {
		diags = append(diags, fmt.Sprintf("deduplication: %d -> %d records", len(records), len(deduped)))
	}

	return &dealerscraper.Outcome{
		Success:     true,
		Records:     deduped,
		Strategy:    sel.Strategy,
		Diagnostics: diags,
	}, res
}

// normalize converts the selection's raw records, collecting discard
// reasons as diagnostics.
func (p *Pipeline) normalize(sel *dealerscraper.Selection, diags *[]string) []dealerscraper.CanonicalRecord {
	var records []dealerscraper.CanonicalRecord
	for _, raw := range sel.Records {
		rec, err := p.Normalizer.Normalize(raw)
		if err != nil {
			*diags = append(*diags, fmt.Sprintf("discarded: %v", err))
			continue
		}
		rec.Tier = sel.Tier
		records = append(records, *rec)
	}
	return records
}
