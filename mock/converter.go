package mock

import dealerscraper "github.com/CedmondsTH/dealer-scraper"

var _ dealerscraper.Converter = (*Converter)(nil)

// Converter is a mock implementation of dealerscraper.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
