package extract_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CedmondsTH/dealer-scraper/extract"
)

func TestDomainLimiter_FirstRequestImmediate(t *testing.T) {
	t.Parallel()

	limiter := extract.NewDomainLimiter(0.01)
	require.NoError(t, limiter.Wait(context.Background(), "example.com"))
}

func TestDomainLimiter_DomainsIndependent(t *testing.T) {
	t.Parallel()

	// Each domain has its own token bucket, so the first request to each
	// passes immediately even at a very low rate.
	limiter := extract.NewDomainLimiter(0.01)
	require.NoError(t, limiter.Wait(context.Background(), "alpha.example.com"))
	require.NoError(t, limiter.Wait(context.Background(), "beta.example.com"))
	require.NoError(t, limiter.Wait(context.Background(), "gamma.example.com"))
}

func TestDomainLimiter_SecondRequestThrottled(t *testing.T) {
	t.Parallel()

	limiter := extract.NewDomainLimiter(0.01)
	require.NoError(t, limiter.Wait(context.Background(), "example.com"))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := limiter.Wait(ctx, "example.com")
	assert.Error(t, err)
}

func TestDomainLimiter_HighRateNeverBlocks(t *testing.T) {
	t.Parallel()

	limiter := extract.NewDomainLimiter(1000)
	for i := 0; i < 10; i++ {
		require.NoError(t, limiter.Wait(context.Background(), "example.com"))
	}
}
