package dealerscraper

import "context"

// Tier is the priority class of an extraction strategy. Lower values are
// tried first.
type Tier int

// Strategy tiers, in selection order.
const (
	TierSpecific Tier = iota // site-specific recipes matched by domain or content fingerprint
	TierGeneric              // pattern families that work across many unrelated sites
	TierFallback             // last resort: heuristic or model-based whole-page extraction
)

// String returns the tier's display name.
func (t Tier) String() string {
	switch t {
	case TierSpecific:
		return "specific"
	case TierGeneric:
		return "generic"
	case TierFallback:
		return "fallback"
	}
	return "unknown"
}

// Strategy is a self-contained rule for recognizing and extracting records
// from one page family. Strategies are stateless, registered once at
// startup, and safe for concurrent use.
//
// CanHandle and Extract are pure functions of (html, url) with no side
// effects, which makes strategies safe to reorder and test in isolation.
type Strategy interface {
	// Name returns the strategy's identifier (e.g., "lithia", "jsonld").
	Name() string

	// Tier returns the strategy's priority class.
	Tier() Tier

	// CanHandle reports whether this strategy recognizes the page.
	CanHandle(html, url string) bool

	// Extract returns the raw records found on the page. An empty slice
	// means the page matched but yielded nothing.
	Extract(ctx context.Context, html, url string) ([]RawRecord, error)
}

// Selection is the result of running the selection protocol against one
// fetched page.
type Selection struct {
	Strategy    string // name of the strategy that ran
	Tier        Tier
	Records     []RawRecord
	Diagnostics []string // which strategies were considered and why they were rejected
}

// Registry holds an ordered, tiered collection of strategies and runs the
// selection protocol against fetched HTML. Registries are read-only after
// startup and safe for concurrent use without locking.
//
// Select walks the specific then generic tiers in registration order and
// runs the first strategy whose CanHandle returns true — a strict
// first-match rule, never "try all and merge". A strategy that matches but
// extracts nothing produces an EEMPTY error (distinct from ENOTFOUND, no
// match anywhere) together with a partial Selection naming the claiming
// strategy and tier, so the caller can retry with a different fetch
// transport before descending to the fallback tier — or recognize that the
// fallback tier itself already ran and stop. If nothing in the upper tiers
// matches, Select continues into the fallback tier; ENOTFOUND is returned
// only when no strategy in any tier matches.
type Registry interface {
	// Register adds a strategy. Registration order within a tier is the
	// iteration order of the selection protocol.
	Register(s Strategy)

	// Select runs the selection protocol across all tiers.
	Select(ctx context.Context, html, url string) (*Selection, error)

	// SelectFallback runs the selection protocol against the fallback tier
	// only. Used after a matched-but-empty result survives a browser refetch.
	SelectFallback(ctx context.Context, html, url string) (*Selection, error)

	// Strategies returns the registered strategies in selection order.
	Strategies() []Strategy
}

// Outcome is the terminal artifact returned to external collaborators.
// Every failure is a typed outcome, never a bare error to the caller.
type Outcome struct {
	Success     bool              `json:"success"`
	Records     []CanonicalRecord `json:"records"`
	Strategy    string            `json:"strategy,omitempty"` // strategy that produced the records
	FailReason  string            `json:"failReason,omitempty"`
	Diagnostics []string          `json:"diagnostics,omitempty"`
}

// Terminal failure reasons for an Outcome.
const (
	FailFetchError     = "FETCH_ERROR"      // both transports failed; retrying may help
	FailNoStrategy     = "NO_STRATEGY"      // no strategy matched in any tier; site layout unsupported
	FailNoValidRecords = "NO_VALID_RECORDS" // extraction succeeded but normalization discarded everything
)
