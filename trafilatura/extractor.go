// Package trafilatura isolates main page content ahead of the fallback
// extraction prompt.
package trafilatura

import (
	"bytes"
	"strings"

	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// Ensure Extractor implements dealerscraper.Extractor at compile time.
var _ dealerscraper.Extractor = (*Extractor)(nil)

// Extractor wraps go-trafilatura to strip navigation, headers, footers, and
// other boilerplate from a location page before it is sent to the model.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract processes raw HTML and returns the main content.
func (e *Extractor) Extract(rawHTML string) (*dealerscraper.ExtractResult, error) {
	if rawHTML == "" {
		return nil, dealerscraper.Errorf(dealerscraper.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback: true,
	}

	result, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, err
	}

	var contentHTML string
	if result.ContentNode != nil {
		contentHTML, err = renderNode(result.ContentNode)
		if err != nil {
			return nil, err
		}
	}

	return &dealerscraper.ExtractResult{
		Title:       result.Metadata.Title,
		ContentHTML: contentHTML,
	}, nil
}

// renderNode converts an html.Node to a string.
func renderNode(n *html.Node) (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, n); err != nil {
		return "", err
	}
	return buf.String(), nil
}
