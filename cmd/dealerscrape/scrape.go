package main

import (
	"fmt"
	"io"
	"os"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
	"github.com/CedmondsTH/dealer-scraper/extract"
	"github.com/CedmondsTH/dealer-scraper/fs"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	opts := dealerscraper.FetchOptions{
		ForceBrowser: c.Browser,
		Timeout:      c.Timeout,
		DebugCapture: c.CaptureDir != "",
	}

	progress := func(event extract.ProgressEvent) {
		switch event.Type {
		case extract.ProgressStarted:
			fmt.Fprintf(deps.Stderr, "Scraping %d sites\n", event.Total)
		case extract.ProgressCompleted:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] %s: %d locations via %s\n",
				event.Completed, event.Total, event.URL, len(event.Outcome.Records), event.Outcome.Strategy)
		case extract.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] %s: %s\n",
				event.Completed, event.Total, event.URL, event.Outcome.FailReason)
		case extract.ProgressSkipped:
			fmt.Fprintf(deps.Stderr, "  [%d/%d] %s: duplicate, skipped\n",
				event.Completed, event.Total, event.URL)
		}
	}

	results := deps.Batch.Run(deps.Ctx, c.URLs, opts, progress)

	out := mergeResults(results)

	w := deps.Stdout
	if c.Out != "" {
		f, err := os.Create(c.Out)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
	}

	if err := writeOutput(w, c.Format, out); err != nil {
		return err
	}

	if !out.Success {
		return fmt.Errorf("no locations extracted (%s)", out.FailReason)
	}
	fmt.Fprintf(deps.Stderr, "Extracted %d locations\n", len(out.Records))
	return nil
}

// mergeResults combines per-site outcomes into one aggregate outcome. The
// aggregate succeeds when any site produced records; per-site diagnostics
// are prefixed with the site URL.
func mergeResults(results []extract.SiteResult) *dealerscraper.Outcome {
	out := &dealerscraper.Outcome{}
	failReason := ""
	for _, res := range results {
		if res.Outcome == nil {
			continue
		}
		if res.Outcome.Success {
			out.Success = true
			out.Records = append(out.Records, res.Outcome.Records...)
			out.Strategy = res.Outcome.Strategy
		} else if failReason == "" {
			failReason = res.Outcome.FailReason
		}
		for _, d := range res.Outcome.Diagnostics {
			out.Diagnostics = append(out.Diagnostics, res.URL+": "+d)
		}
	}
	if !out.Success {
		out.FailReason = failReason
	}
	return out
}

func writeOutput(w io.Writer, format string, out *dealerscraper.Outcome) error {
	if format == "csv" {
		return fs.WriteCSV(w, out.Records)
	}
	return fs.WriteJSON(w, out)
}
