// Package bloom tracks the URLs a batch run has already scheduled. Site
// lists for large dealer groups overlap heavily (the same location page
// shows up under several brand entries), so the batch layer consults a
// Bloom filter before dispatching a URL rather than keeping every string
// in a map.
package bloom

import "github.com/bits-and-blooms/bloom/v3"

// Sizing defaults for one batch run's visited set.
const (
	DefaultExpectedURLs      = 10000
	DefaultFalsePositiveRate = 0.01
)

// VisitedSet records which URLs have been scheduled. A hit may rarely be a
// false positive (an unvisited URL reported as visited, at the configured
// rate); a miss is always genuine, so no URL is ever fetched twice.
type VisitedSet struct {
	f *bloom.BloomFilter
}

// NewVisitedSet creates a VisitedSet sized for n expected URLs at the given
// false positive rate.
func NewVisitedSet(n uint, fpRate float64) *VisitedSet {
	return &VisitedSet{
		f: bloom.NewWithEstimates(n, fpRate),
	}
}

// NewDefaultVisitedSet creates a VisitedSet with the batch-run defaults.
func NewDefaultVisitedSet() *VisitedSet {
	return NewVisitedSet(DefaultExpectedURLs, DefaultFalsePositiveRate)
}

// Visit marks a URL as scheduled and reports whether it had been marked
// before.
func (s *VisitedSet) Visit(url string) bool {
	return s.f.TestOrAddString(url)
}

// Seen reports whether the URL has been marked, without marking it.
func (s *VisitedSet) Seen(url string) bool {
	return s.f.TestString(url)
}

// EstimatedCount returns the approximate number of URLs marked so far.
func (s *VisitedSet) EstimatedCount() uint {
	return uint(s.f.ApproximatedSize())
}
