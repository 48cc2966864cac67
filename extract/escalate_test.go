package extract_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
	"github.com/CedmondsTH/dealer-scraper/extract"
	"github.com/CedmondsTH/dealer-scraper/mock"
)

func TestEscalatingFetcher_LightSuccess(t *testing.T) {
	t.Parallel()

	browserCalled := false
	light := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			return &dealerscraper.FetchResult{
				HTML:      "<html>light</html>",
				FinalURL:  url,
				Transport: dealerscraper.TransportLight,
			}, nil
		},
	}
	browser := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			browserCalled = true
			return nil, errors.New("should not be called")
		},
	}

	f := extract.NewEscalatingFetcher(light, browser, nil)
	res, err := f.Fetch(context.Background(), "https://example.com", dealerscraper.FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, dealerscraper.TransportLight, res.Transport)
	assert.False(t, browserCalled)
}

func TestEscalatingFetcher_EscalatesOnLightFailure(t *testing.T) {
	t.Parallel()

	light := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			return nil, dealerscraper.Errorf(dealerscraper.EBLOCKED, "403 from %s", url)
		},
	}
	browser := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			return &dealerscraper.FetchResult{
				HTML:      "<html>rendered</html>",
				FinalURL:  url,
				Transport: dealerscraper.TransportBrowser,
			}, nil
		},
	}

	f := extract.NewEscalatingFetcher(light, browser, nil)
	res, err := f.Fetch(context.Background(), "https://example.com", dealerscraper.FetchOptions{})
	require.NoError(t, err)
	assert.Equal(t, dealerscraper.TransportBrowser, res.Transport)
	assert.Equal(t, "<html>rendered</html>", res.HTML)
}

func TestEscalatingFetcher_BothFailKeepsLightCode(t *testing.T) {
	t.Parallel()

	light := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			return nil, dealerscraper.Errorf(dealerscraper.EBLOCKED, "403 forbidden")
		},
	}
	browser := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			return nil, dealerscraper.Errorf(dealerscraper.ETIMEOUT, "render deadline exceeded")
		},
	}

	f := extract.NewEscalatingFetcher(light, browser, nil)
	_, err := f.Fetch(context.Background(), "https://example.com", dealerscraper.FetchOptions{})
	require.Error(t, err)
	assert.Equal(t, dealerscraper.EBLOCKED, dealerscraper.ErrorCode(err))
	assert.Contains(t, dealerscraper.ErrorMessage(err), "403 forbidden")
	assert.Contains(t, dealerscraper.ErrorMessage(err), "render deadline exceeded")
}

func TestEscalatingFetcher_ForceBrowserSkipsLight(t *testing.T) {
	t.Parallel()

	lightCalled := false
	light := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			lightCalled = true
			return nil, errors.New("should not be called")
		},
	}
	browser := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			return &dealerscraper.FetchResult{
				HTML:      "<html>rendered</html>",
				FinalURL:  url,
				Transport: dealerscraper.TransportBrowser,
			}, nil
		},
	}

	f := extract.NewEscalatingFetcher(light, browser, nil)
	res, err := f.Fetch(context.Background(), "https://example.com", dealerscraper.FetchOptions{ForceBrowser: true})
	require.NoError(t, err)
	assert.Equal(t, dealerscraper.TransportBrowser, res.Transport)
	assert.False(t, lightCalled)
}

func TestEscalatingFetcher_DebugCapture(t *testing.T) {
	t.Parallel()

	fetchedAt := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	light := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			return &dealerscraper.FetchResult{
				HTML:      "<html>captured</html>",
				FinalURL:  "https://example.com/locations",
				Transport: dealerscraper.TransportLight,
				FetchedAt: fetchedAt,
			}, nil
		},
	}
	browser := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			return nil, errors.New("should not be called")
		},
	}

	var capturedURL, capturedHTML string
	var capturedAt time.Time
	sink := &mock.DebugSink{
		CaptureFn: func(url string, at time.Time, html string) error {
			capturedURL = url
			capturedAt = at
			capturedHTML = html
			return nil
		},
	}

	f := extract.NewEscalatingFetcher(light, browser, sink)
	_, err := f.Fetch(context.Background(), "https://example.com", dealerscraper.FetchOptions{DebugCapture: true})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/locations", capturedURL)
	assert.Equal(t, fetchedAt, capturedAt)
	assert.Equal(t, "<html>captured</html>", capturedHTML)
}

func TestEscalatingFetcher_NoCaptureWithoutFlag(t *testing.T) {
	t.Parallel()

	light := &mock.Fetcher{
		FetchFn: func(ctx context.Context, url string, opts dealerscraper.FetchOptions) (*dealerscraper.FetchResult, error) {
			return &dealerscraper.FetchResult{HTML: "<html></html>", FinalURL: url}, nil
		},
	}
	sink := &mock.DebugSink{
		CaptureFn: func(url string, at time.Time, html string) error {
			t.Error("capture should not be called without DebugCapture")
			return nil
		},
	}

	f := extract.NewEscalatingFetcher(light, &mock.Fetcher{}, sink)
	_, err := f.Fetch(context.Background(), "https://example.com", dealerscraper.FetchOptions{})
	require.NoError(t, err)
}

func TestEscalatingFetcher_CloseClosesBoth(t *testing.T) {
	t.Parallel()

	lightClosed := false
	browserClosed := false
	light := &mock.Fetcher{CloseFn: func() error {
		lightClosed = true
		return errors.New("light close failed")
	}}
	browser := &mock.Fetcher{CloseFn: func() error {
		browserClosed = true
		return nil
	}}

	f := extract.NewEscalatingFetcher(light, browser, nil)
	err := f.Close()
	assert.EqualError(t, err, "light close failed")
	assert.True(t, lightClosed)
	assert.True(t, browserClosed)
}
