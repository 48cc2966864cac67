package dealerscraper

// ExtractResult holds the main content isolated from an HTML page.
type ExtractResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// Extractor isolates main content from HTML pages, removing boilerplate.
// The fallback-tier strategy uses it to shrink pages before prompting a
// model.
type Extractor interface {
	// Extract processes raw HTML and returns the main content.
	Extract(html string) (*ExtractResult, error)
}
