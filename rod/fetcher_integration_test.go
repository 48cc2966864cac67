//go:build integration

package rod_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
	dsrod "github.com/CedmondsTH/dealer-scraper/rod"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Requires a local Chrome/Chromium; run with -tags integration.

func TestFetcher_Fetch_RendersJavaScript(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><body>
<div id="locations"></div>
<script>
document.getElementById("locations").innerHTML =
  '<div class="dealer-card"><h3>Springfield Toyota</h3><div class="address">123 Main St, Springfield, OR 97477</div></div>';
</script>
</body></html>`))
	}))
	t.Cleanup(srv.Close)

	manager, err := dsrod.NewManager()
	require.NoError(t, err)
	f := dsrod.NewFetcher(manager, dsrod.WithScrollPasses(0))
	t.Cleanup(func() { _ = f.Close() })

	res, err := f.Fetch(context.Background(), srv.URL, dealerscraper.FetchOptions{Timeout: 30 * time.Second})

	require.NoError(t, err)
	assert.Equal(t, dealerscraper.TransportBrowser, res.Transport)
	assert.Contains(t, res.HTML, "Springfield Toyota")
}

func TestFetcher_Fetch_Timeout(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(5 * time.Second)
	}))
	t.Cleanup(srv.Close)

	manager, err := dsrod.NewManager()
	require.NoError(t, err)
	f := dsrod.NewFetcher(manager, dsrod.WithScrollPasses(0))
	t.Cleanup(func() { _ = f.Close() })

	_, err = f.Fetch(context.Background(), srv.URL, dealerscraper.FetchOptions{Timeout: 500 * time.Millisecond})

	require.Error(t, err)
	assert.Equal(t, dealerscraper.ETIMEOUT, dealerscraper.ErrorCode(err))
}

func TestManager_RecyclesAfterMaxPages(t *testing.T) {
	t.Parallel()

	manager, err := dsrod.NewManager(dsrod.WithMaxPages(2))
	require.NoError(t, err)
	defer manager.Close()

	first := manager.Browser()
	require.NotNil(t, first)

	manager.PageDone()
	manager.PageDone()

	second := manager.Browser()
	require.NotNil(t, second)
	assert.NotSame(t, first, second)
}

func TestManager_CloseKillsLauncher(t *testing.T) {
	t.Parallel()

	manager, err := dsrod.NewManager()
	require.NoError(t, err)

	require.NotZero(t, manager.LauncherPID())
	require.NoError(t, manager.Close())
	assert.Zero(t, manager.LauncherPID())
}
