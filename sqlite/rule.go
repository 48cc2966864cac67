package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// Compile-time interface verification.
var _ dealerscraper.RuleStore = (*RuleService)(nil)

// RuleService implements dealerscraper.RuleStore using SQLite.
type RuleService struct {
	db *DB
}

// NewRuleService creates a new RuleService.
func NewRuleService(db *DB) *RuleService {
	return &RuleService{db: db}
}

// FindRuleByDomain retrieves the rule for a domain.
func (s *RuleService) FindRuleByDomain(ctx context.Context, domain string) (*dealerscraper.Rule, error) {
	var rule dealerscraper.Rule
	var createdAt string

	err := s.db.QueryRowContext(ctx, `
		SELECT id, domain, card_selector, name_selector, address_selector, phone_selector, website_selector, created_at
		FROM rules
		WHERE domain = ?
	`, domain).Scan(&rule.ID, &rule.Domain, &rule.CardSelector, &rule.NameSelector,
		&rule.AddressSelector, &rule.PhoneSelector, &rule.WebsiteSelector, &createdAt)

	if err == sql.ErrNoRows {
		return nil, dealerscraper.Errorf(dealerscraper.ENOTFOUND, "no rule for domain %q", domain)
	}
	if err != nil {
		return nil, err
	}

	rule.CreatedAt, err = parseRFC3339(createdAt, "created_at")
	if err != nil {
		return nil, err
	}

	return &rule, nil
}

// SaveRule creates or replaces the rule for its domain.
func (s *RuleService) SaveRule(ctx context.Context, rule *dealerscraper.Rule) error {
	if err := rule.Validate(); err != nil {
		return err
	}

	if rule.ID == "" {
		rule.ID = uuid.New().String()
	}
	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO rules (id, domain, card_selector, name_selector, address_selector, phone_selector, website_selector, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(domain) DO UPDATE SET
			card_selector = excluded.card_selector,
			name_selector = excluded.name_selector,
			address_selector = excluded.address_selector,
			phone_selector = excluded.phone_selector,
			website_selector = excluded.website_selector,
			created_at = excluded.created_at
	`, rule.ID, rule.Domain, rule.CardSelector, rule.NameSelector,
		rule.AddressSelector, rule.PhoneSelector, rule.WebsiteSelector,
		rule.CreatedAt.Format(time.RFC3339))

	return err
}

// ListRules retrieves all rules ordered by domain.
func (s *RuleService) ListRules(ctx context.Context) ([]*dealerscraper.Rule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, domain, card_selector, name_selector, address_selector, phone_selector, website_selector, created_at
		FROM rules
		ORDER BY domain
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*dealerscraper.Rule
	for rows.Next() {
		var rule dealerscraper.Rule
		var createdAt string

		if err := rows.Scan(&rule.ID, &rule.Domain, &rule.CardSelector, &rule.NameSelector,
			&rule.AddressSelector, &rule.PhoneSelector, &rule.WebsiteSelector, &createdAt); err != nil {
			return nil, err
		}

		rule.CreatedAt, err = parseRFC3339(createdAt, "created_at")
		if err != nil {
			return nil, err
		}

		rules = append(rules, &rule)
	}

	return rules, rows.Err()
}

// DeleteRule removes the rule for a domain.
func (s *RuleService) DeleteRule(ctx context.Context, domain string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM rules WHERE domain = ?", domain)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rows == 0 {
		return dealerscraper.Errorf(dealerscraper.ENOTFOUND, "no rule for domain %q", domain)
	}

	return nil
}
