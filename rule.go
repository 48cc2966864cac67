package dealerscraper

import (
	"context"
	"time"
)

// Rule is a learned extraction rule for one domain: a set of CSS selectors
// that locate dealership cards and their fields. Rules are produced outside
// the pipeline (e.g., recorded after a successful fallback extraction) and
// consulted read-only by one generic-tier strategy.
type Rule struct {
	ID              string    `json:"id"`
	Domain          string    `json:"domain"` // host the rule applies to, e.g. "example.com"
	CardSelector    string    `json:"cardSelector"`
	NameSelector    string    `json:"nameSelector"`
	AddressSelector string    `json:"addressSelector"`
	PhoneSelector   string    `json:"phoneSelector"`
	WebsiteSelector string    `json:"websiteSelector"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Validate returns an error if the rule contains invalid fields.
func (r *Rule) Validate() error {
	if r.Domain == "" {
		return Errorf(EINVALID, "rule domain required")
	}
	if r.CardSelector == "" {
		return Errorf(EINVALID, "rule card selector required")
	}
	if r.NameSelector == "" {
		return Errorf(EINVALID, "rule name selector required")
	}
	return nil
}

// RuleStore persists learned extraction rules.
type RuleStore interface {
	// FindRuleByDomain returns the rule for a domain.
	// Returns ENOTFOUND if no rule exists.
	FindRuleByDomain(ctx context.Context, domain string) (*Rule, error)

	// SaveRule creates or replaces the rule for its domain.
	SaveRule(ctx context.Context, rule *Rule) error

	// ListRules returns all rules ordered by domain.
	ListRules(ctx context.Context) ([]*Rule, error)

	// DeleteRule removes the rule for a domain.
	// Returns ENOTFOUND if no rule exists.
	DeleteRule(ctx context.Context, domain string) error
}
