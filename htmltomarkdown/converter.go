// Package htmltomarkdown converts HTML to Markdown for the fallback
// extraction prompt.
package htmltomarkdown

import (
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// Ensure Converter implements dealerscraper.Converter at compile time.
var _ dealerscraper.Converter = (*Converter)(nil)

// Converter wraps html-to-markdown to convert HTML to Markdown. Markdown
// keeps a location page's text and link structure while shedding the markup
// the model would otherwise spend tokens on.
type Converter struct {
	conv *converter.Converter
}

// NewConverter creates a new Converter.
func NewConverter() *Converter {
	conv := converter.NewConverter(
		converter.WithPlugins(
			base.NewBasePlugin(),
			commonmark.NewCommonmarkPlugin(),
			table.NewTablePlugin(),
		),
	)
	return &Converter{conv: conv}
}

// Convert transforms HTML content into Markdown.
func (c *Converter) Convert(html string) (string, error) {
	if strings.TrimSpace(html) == "" {
		return "", dealerscraper.Errorf(dealerscraper.EINVALID, "empty HTML input")
	}

	result, err := c.conv.ConvertString(html)
	if err != nil {
		return "", err
	}

	return result, nil
}
