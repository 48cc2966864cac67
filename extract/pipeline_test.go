package extract_test

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
	"github.com/CedmondsTH/dealer-scraper/extract"
	dsgoquery "github.com/CedmondsTH/dealer-scraper/goquery"
	"github.com/CedmondsTH/dealer-scraper/mock"
)

func newPipeline(fetcher *mock.Fetcher, registry *mock.Registry) *extract.Pipeline {
	return &extract.Pipeline{
		Fetcher:    fetcher,
		Registry:   registry,
		Normalizer: &dealerscraper.Normalizer{DealerGroup: "Test Group"},
		Deduper:    &dealerscraper.Deduplicator{},
	}
}

func lightFetcher(html string) *mock.Fetcher {
	return &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			return &dealerscraper.FetchResult{
				HTML:      html,
				FinalURL:  url,
				Transport: dealerscraper.TransportLight,
			}, nil
		},
	}
}

func validRawRecord(name string) dealerscraper.RawRecord {
	return dealerscraper.RawRecord{
		Name:       name,
		Address:    "100 Main St",
		City:       "Springfield",
		Region:     "IL",
		PostalCode: "62701",
		Phone:      "217-555-0100",
	}
}

func TestPipeline_Success(t *testing.T) {
	t.Parallel()

	registry := &mock.Registry{
		SelectFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			return &dealerscraper.Selection{
				Strategy: "cards",
				Tier:     dealerscraper.TierGeneric,
				Records: []dealerscraper.RawRecord{
					validRawRecord("Springfield Toyota"),
					validRawRecord("Springfield Honda"),
				},
			}, nil
		},
	}

	p := newPipeline(lightFetcher("<html></html>"), registry)
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{})

	require.True(t, out.Success)
	require.Len(t, out.Records, 2)
	assert.Equal(t, "cards", out.Strategy)
	assert.Equal(t, "Springfield Toyota", out.Records[0].Name)
	assert.Equal(t, "Test Group", out.Records[0].DealerGroup)
	assert.Equal(t, dealerscraper.TierGeneric, out.Records[0].Tier)
	assert.Empty(t, out.FailReason)
}

func TestPipeline_FetchError(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			return nil, dealerscraper.Errorf(dealerscraper.EUNAVAILABLE, "connection refused")
		},
	}

	p := newPipeline(fetcher, &mock.Registry{})
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{})

	assert.False(t, out.Success)
	assert.Equal(t, dealerscraper.FailFetchError, out.FailReason)
	assert.Empty(t, out.Records)
}

func TestPipeline_NoStrategy(t *testing.T) {
	t.Parallel()

	registry := &mock.Registry{
		SelectFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			return nil, dealerscraper.Errorf(dealerscraper.ENOTFOUND, "no strategy matched")
		},
	}

	p := newPipeline(lightFetcher("<html></html>"), registry)
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{})

	assert.False(t, out.Success)
	assert.Equal(t, dealerscraper.FailNoStrategy, out.FailReason)
}

func TestPipeline_EmptyOnLightTriggersBrowserRefetch(t *testing.T) {
	t.Parallel()

	var fetchCalls []bool // ForceBrowser per call
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			fetchCalls = append(fetchCalls, opts.ForceBrowser)
			transport := dealerscraper.TransportLight
			html := "<html>bare</html>"
			if opts.ForceBrowser {
				transport = dealerscraper.TransportBrowser
				html = "<html>rendered</html>"
			}
			return &dealerscraper.FetchResult{HTML: html, FinalURL: url, Transport: transport}, nil
		},
	}
	registry := &mock.Registry{
		SelectFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			if html == "<html>bare</html>" {
				return nil, dealerscraper.Errorf(dealerscraper.EEMPTY, "matched but extracted no records")
			}
			return &dealerscraper.Selection{
				Strategy: "scriptvars",
				Tier:     dealerscraper.TierGeneric,
				Records:  []dealerscraper.RawRecord{validRawRecord("Rendered Motors")},
			}, nil
		},
	}

	p := newPipeline(fetcher, registry)
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{})

	require.True(t, out.Success)
	require.Equal(t, []bool{false, true}, fetchCalls)
	assert.Equal(t, "scriptvars", out.Strategy)
}

func TestPipeline_EmptyAfterRefetchDescendsToFallback(t *testing.T) {
	t.Parallel()

	fallbackCalled := false
	registry := &mock.Registry{
		SelectFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			return nil, dealerscraper.Errorf(dealerscraper.EEMPTY, "matched but extracted no records")
		},
		SelectFallbackFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			fallbackCalled = true
			return &dealerscraper.Selection{
				Strategy: "gemini",
				Tier:     dealerscraper.TierFallback,
				Records:  []dealerscraper.RawRecord{validRawRecord("Fallback Ford")},
			}, nil
		},
	}

	p := newPipeline(lightFetcher("<html></html>"), registry)
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{})

	require.True(t, out.Success)
	assert.True(t, fallbackCalled)
	assert.Equal(t, "gemini", out.Strategy)
	assert.Equal(t, dealerscraper.TierFallback, out.Records[0].Tier)
}

func TestPipeline_EmptyFallbackRunsAtMostOncePerFetch(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			transport := dealerscraper.TransportLight
			html := "<html>light</html>"
			if opts.ForceBrowser {
				transport = dealerscraper.TransportBrowser
				html = "<html>browser</html>"
			}
			return &dealerscraper.FetchResult{HTML: html, FinalURL: url, Transport: transport}, nil
		},
	}

	var extractedHTMLs []string
	llm := &mock.Strategy{
		NameFn:      func() string { return "llm" },
		TierFn:      func() dealerscraper.Tier { return dealerscraper.TierFallback },
		CanHandleFn: func(html, url string) bool { return true },
		ExtractFn: func(ctx context.Context, html, url string) ([]dealerscraper.RawRecord, error) {
			extractedHTMLs = append(extractedHTMLs, html)
			return nil, nil
		},
	}
	registry := dsgoquery.NewRegistry()
	registry.Register(llm)

	p := &extract.Pipeline{
		Fetcher:    fetcher,
		Registry:   registry,
		Normalizer: &dealerscraper.Normalizer{},
		Deduper:    &dealerscraper.Deduplicator{},
	}
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{})

	assert.False(t, out.Success)
	assert.Equal(t, dealerscraper.FailNoValidRecords, out.FailReason)
	assert.Equal(t, "llm", out.Strategy)

	// Once on the light HTML, once after the browser refetch. Never a
	// second run on the same HTML.
	assert.Equal(t, []string{"<html>light</html>", "<html>browser</html>"}, extractedHTMLs)
}

func TestPipeline_NoBrowserRefetchWhenForced(t *testing.T) {
	t.Parallel()

	fetchCount := 0
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			fetchCount++
			return &dealerscraper.FetchResult{
				HTML:      "<html></html>",
				FinalURL:  url,
				Transport: dealerscraper.TransportBrowser,
			}, nil
		},
	}
	registry := &mock.Registry{
		SelectFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			return nil, dealerscraper.Errorf(dealerscraper.EEMPTY, "matched but extracted no records")
		},
		SelectFallbackFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			return nil, dealerscraper.Errorf(dealerscraper.EEMPTY, "fallback extracted no records")
		},
	}

	p := newPipeline(fetcher, registry)
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{ForceBrowser: true})

	assert.False(t, out.Success)
	assert.Equal(t, 1, fetchCount)
	assert.Equal(t, dealerscraper.FailNoValidRecords, out.FailReason)
}

func TestPipeline_AllRecordsDiscarded(t *testing.T) {
	t.Parallel()

	registry := &mock.Registry{
		SelectFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			return &dealerscraper.Selection{
				Strategy: "cards",
				Tier:     dealerscraper.TierGeneric,
				Records: []dealerscraper.RawRecord{
					{Name: "No Address Motors"}, // no parseable address
				},
			}, nil
		},
	}

	p := newPipeline(lightFetcher("<html></html>"), registry)
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{})

	assert.False(t, out.Success)
	assert.Equal(t, dealerscraper.FailNoValidRecords, out.FailReason)
	assert.Equal(t, "cards", out.Strategy)

	joined := strings.Join(out.Diagnostics, "\n")
	assert.Contains(t, joined, "discarded")
}

func TestPipeline_DeduplicatesRecords(t *testing.T) {
	t.Parallel()

	registry := &mock.Registry{
		SelectFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			return &dealerscraper.Selection{
				Strategy: "cards",
				Tier:     dealerscraper.TierGeneric,
				Records: []dealerscraper.RawRecord{
					validRawRecord("Springfield Toyota"),
					validRawRecord("Springfield Toyota"),
				},
			}, nil
		},
	}

	p := newPipeline(lightFetcher("<html></html>"), registry)
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{})

	require.True(t, out.Success)
	assert.Len(t, out.Records, 1)
}

const directoryHTML = `<html><body>
<div class="location-list">
  <a href="/locations/illinois">Illinois</a>
  <a href="/locations/iowa">Iowa</a>
  <a href="/locations/missouri">Missouri</a>
</div>
</body></html>`

func TestPipeline_DirectoryExpansion(t *testing.T) {
	t.Parallel()

	subpageRecords := map[string]string{
		"https://example.com/locations/illinois": "Springfield Toyota",
		"https://example.com/locations/iowa":     "Des Moines Honda",
		"https://example.com/locations/missouri": "St Louis Ford",
	}

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			html := directoryHTML
			if _, ok := subpageRecords[url]; ok {
				html = "<html>subpage</html>"
			}
			return &dealerscraper.FetchResult{HTML: html, FinalURL: url, Transport: dealerscraper.TransportLight}, nil
		},
	}
	registry := &mock.Registry{
		SelectFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			name, ok := subpageRecords[url]
			if !ok {
				return nil, dealerscraper.Errorf(dealerscraper.ENOTFOUND, "no strategy matched")
			}
			return &dealerscraper.Selection{
				Strategy: "cards",
				Tier:     dealerscraper.TierGeneric,
				Records:  []dealerscraper.RawRecord{validRawRecord(name)},
			}, nil
		},
	}

	p := newPipeline(fetcher, registry)
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{})

	require.True(t, out.Success)
	assert.Len(t, out.Records, 3)

	joined := strings.Join(out.Diagnostics, "\n")
	assert.Contains(t, joined, "directory page: 3 subpages")
}

func TestPipeline_DirectoryExpansionPartialFailure(t *testing.T) {
	t.Parallel()

	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			if url == "https://example.com" {
				return &dealerscraper.FetchResult{HTML: directoryHTML, FinalURL: url, Transport: dealerscraper.TransportLight}, nil
			}
			if strings.HasSuffix(url, "/illinois") {
				return &dealerscraper.FetchResult{HTML: "<html>subpage</html>", FinalURL: url, Transport: dealerscraper.TransportLight}, nil
			}
			return nil, dealerscraper.Errorf(dealerscraper.EUNAVAILABLE, "connection refused")
		},
	}
	registry := &mock.Registry{
		SelectFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			if html != "<html>subpage</html>" {
				return nil, dealerscraper.Errorf(dealerscraper.ENOTFOUND, "no strategy matched")
			}
			return &dealerscraper.Selection{
				Strategy: "cards",
				Tier:     dealerscraper.TierGeneric,
				Records:  []dealerscraper.RawRecord{validRawRecord("Springfield Toyota")},
			}, nil
		},
	}

	p := newPipeline(fetcher, registry)
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{})

	require.True(t, out.Success)
	assert.Len(t, out.Records, 1)
}

func TestPipeline_NoDirectoryExpansionOnSuccess(t *testing.T) {
	t.Parallel()

	fetchCount := 0
	fetcher := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			fetchCount++
			return &dealerscraper.FetchResult{HTML: directoryHTML, FinalURL: url, Transport: dealerscraper.TransportLight}, nil
		},
	}
	registry := &mock.Registry{
		SelectFn: func(ctx context.Context, html, url string) (*dealerscraper.Selection, error) {
			return &dealerscraper.Selection{
				Strategy: "cards",
				Tier:     dealerscraper.TierGeneric,
				Records:  []dealerscraper.RawRecord{validRawRecord("Springfield Toyota")},
			}, nil
		},
	}

	p := newPipeline(fetcher, registry)
	out := p.Run(context.Background(), "https://example.com", dealerscraper.FetchOptions{})

	require.True(t, out.Success)
	assert.Equal(t, 1, fetchCount)
}
