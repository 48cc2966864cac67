// Package fs provides file-based debug capture and result export.
package fs

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/cespare/xxhash/v2"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// Ensure CaptureSink implements dealerscraper.DebugSink at compile time.
var _ dealerscraper.DebugSink = (*CaptureSink)(nil)

// CaptureSink persists raw fetched HTML to a directory for post-mortem
// inspection. Filenames combine a hash of the URL with the fetch timestamp,
// so repeated captures of the same page never overwrite each other.
type CaptureSink struct {
	baseDir string
}

// NewCaptureSink creates a CaptureSink writing under baseDir.
func NewCaptureSink(baseDir string) *CaptureSink {
	return &CaptureSink{baseDir: baseDir}
}

// Capture writes the HTML for one fetched page.
func (s *CaptureSink) Capture(url string, fetchedAt time.Time, html string) error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return err
	}

	name := fmt.Sprintf("%016x-%s.html", xxhash.Sum64String(url), fetchedAt.UTC().Format("20060102T150405"))
	return os.WriteFile(filepath.Join(s.baseDir, name), []byte(html), 0644)
}
