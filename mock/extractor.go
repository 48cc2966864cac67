package mock

import dealerscraper "github.com/CedmondsTH/dealer-scraper"

var _ dealerscraper.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of dealerscraper.Extractor.
type Extractor struct {
	ExtractFn func(html string) (*dealerscraper.ExtractResult, error)
}

func (e *Extractor) Extract(html string) (*dealerscraper.ExtractResult, error) {
	return e.ExtractFn(html)
}
