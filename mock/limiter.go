package mock

import (
	"context"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.DomainLimiter = (*DomainLimiter)(nil)

// DomainLimiter is a mock implementation of dealerscraper.DomainLimiter.
type DomainLimiter struct {
	WaitFn func(ctx context.Context, domain string) error
}

func (l *DomainLimiter) Wait(ctx context.Context, domain string) error {
	if l.WaitFn == nil {
		return nil
	}
	return l.WaitFn(ctx, domain)
}
