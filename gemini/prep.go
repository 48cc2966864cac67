// Package gemini provides the fallback extraction strategy: when no CSS
// strategy can read a page, the page content is reduced to Markdown and a
// Gemini model extracts the dealership list.
package gemini

import (
	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// DefaultMaxChars caps the content sent to the model. Location pages repeat
// the same card structure, so truncation loses little.
const DefaultMaxChars = 15000

// Preparer reduces raw page HTML to prompt content: boilerplate removal via
// an Extractor, Markdown conversion via a Converter, then truncation.
// Either stage may be nil, in which case it is skipped.
type Preparer struct {
	extractor dealerscraper.Extractor
	converter dealerscraper.Converter
	maxChars  int
}

// PreparerOption configures a Preparer.
type PreparerOption func(*Preparer)

// WithMaxChars sets the content cap. Defaults to DefaultMaxChars.
func WithMaxChars(n int) PreparerOption {
	return func(p *Preparer) {
		p.maxChars = n
	}
}

// NewPreparer creates a Preparer from the given stages.
func NewPreparer(extractor dealerscraper.Extractor, converter dealerscraper.Converter, opts ...PreparerOption) *Preparer {
	p := &Preparer{
		extractor: extractor,
		converter: converter,
		maxChars:  DefaultMaxChars,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Prepare returns the prompt content for a page. A failing stage falls back
// to its input rather than aborting the fallback attempt.
func (p *Preparer) Prepare(html string) string {
	content := html

	if p.extractor != nil {
		if res, err := p.extractor.Extract(content); err == nil && res.ContentHTML != "" {
			content = res.ContentHTML
		}
	}
	if p.converter != nil {
		if md, err := p.converter.Convert(content); err == nil && md != "" {
			content = md
		}
	}

	if len(content) > p.maxChars {
		content = content[:p.maxChars]
	}
	return content
}
