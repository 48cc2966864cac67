package mock

import (
	"time"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.DebugSink = (*DebugSink)(nil)

// DebugSink is a mock implementation of dealerscraper.DebugSink.
type DebugSink struct {
	CaptureFn func(url string, fetchedAt time.Time, html string) error
}

func (s *DebugSink) Capture(url string, fetchedAt time.Time, html string) error {
	return s.CaptureFn(url, fetchedAt, html)
}
