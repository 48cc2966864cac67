package extract

import (
	"context"
	"net/url"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
	"github.com/CedmondsTH/dealer-scraper/bloom"
)

// ProgressType indicates the type of progress event.
type ProgressType int

// Progress event types.
const (
	ProgressStarted ProgressType = iota
	ProgressCompleted
	ProgressFailed
	ProgressSkipped
	ProgressFinished
)

// ProgressEvent reports progress during a batch run.
type ProgressEvent struct {
	Type      ProgressType
	Completed int
	Total     int
	URL       string
	Outcome   *dealerscraper.Outcome
}

// ProgressFunc is a callback for reporting batch progress.
type ProgressFunc func(event ProgressEvent)

// SiteResult pairs a requested URL with its extraction outcome.
type SiteResult struct {
	URL     string
	Outcome *dealerscraper.Outcome
}

// Batch runs the extraction pipeline across many sites concurrently,
// rate limited per domain and deduplicated by URL so overlapping site
// lists don't hit the same page twice.
type Batch struct {
	Pipeline    *Pipeline
	Limiter     dealerscraper.DomainLimiter
	Concurrency int
}

// Run extracts every URL and returns results in input order. The progress
// callback, if provided, receives events as sites complete. A canceled
// context stops scheduling new sites; sites already running finish.
func (b *Batch) Run(ctx context.Context, urls []string, opts dealerscraper.FetchOptions, progress ProgressFunc) []SiteResult {
	concurrency := b.Concurrency
	if concurrency <= 0 {
		concurrency = 4
	}

	total := len(urls)
	if progress != nil {
		progress(ProgressEvent{Type: ProgressStarted, Total: total})
	}

	visited := bloom.NewDefaultVisitedSet()
	results := make([]SiteResult, total)
	var completed atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	for i, u := range urls {
		results[i] = SiteResult{URL: u}

		if visited.Visit(u) {
			results[i].Outcome = &dealerscraper.Outcome{
				FailReason:  dealerscraper.FailNoStrategy,
				Diagnostics: []string{"duplicate of a URL earlier in the batch"},
			}
			if progress != nil {
				progress(ProgressEvent{
					Type:      ProgressSkipped,
					Completed: int(completed.Add(1)),
					Total:     total,
					URL:       u,
				})
			}
			continue
		}

		g.Go(func() error {
			results[i].Outcome = b.runSite(gctx, u, opts)

			if progress != nil {
				eventType := ProgressCompleted
				if !results[i].Outcome.Success {
					eventType = ProgressFailed
				}
				progress(ProgressEvent{
					Type:      eventType,
					Completed: int(completed.Add(1)),
					Total:     total,
					URL:       u,
					Outcome:   results[i].Outcome,
				})
			}
			return nil
		})
	}
	_ = g.Wait()

	if progress != nil {
		progress(ProgressEvent{Type: ProgressFinished, Completed: total, Total: total})
	}
	return results
}

// runSite rate-limits, then runs one site through the pipeline.
func (b *Batch) runSite(ctx context.Context, rawURL string, opts dealerscraper.FetchOptions) *dealerscraper.Outcome {
	if b.Limiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil || u.Host == "" {
			return &dealerscraper.Outcome{
				FailReason:  dealerscraper.FailFetchError,
				Diagnostics: []string{"invalid URL: " + rawURL},
			}
		}
		if err := b.Limiter.Wait(ctx, u.Host); err != nil {
			return &dealerscraper.Outcome{
				FailReason:  dealerscraper.FailFetchError,
				Diagnostics: []string{"canceled while rate limited: " + err.Error()},
			}
		}
	}
	return b.Pipeline.Run(ctx, rawURL, opts)
}
