package mock

import (
	"context"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

var _ dealerscraper.RuleStore = (*RuleStore)(nil)

// RuleStore is a mock implementation of dealerscraper.RuleStore.
type RuleStore struct {
	FindRuleByDomainFn func(ctx context.Context, domain string) (*dealerscraper.Rule, error)
	SaveRuleFn         func(ctx context.Context, rule *dealerscraper.Rule) error
	ListRulesFn        func(ctx context.Context) ([]*dealerscraper.Rule, error)
	DeleteRuleFn       func(ctx context.Context, domain string) error
}

func (s *RuleStore) FindRuleByDomain(ctx context.Context, domain string) (*dealerscraper.Rule, error) {
	return s.FindRuleByDomainFn(ctx, domain)
}

func (s *RuleStore) SaveRule(ctx context.Context, rule *dealerscraper.Rule) error {
	return s.SaveRuleFn(ctx, rule)
}

func (s *RuleStore) ListRules(ctx context.Context) ([]*dealerscraper.Rule, error) {
	return s.ListRulesFn(ctx)
}

func (s *RuleStore) DeleteRule(ctx context.Context, domain string) error {
	return s.DeleteRuleFn(ctx, domain)
}
