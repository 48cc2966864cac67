package main

import (
	"fmt"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// Run executes the rules list command.
func (c *RulesListCmd) Run(deps *Dependencies) error {
	rules, err := deps.Rules.ListRules(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dealerscraper.ErrorMessage(err))
		return err
	}

	if len(rules) == 0 {
		fmt.Fprintln(deps.Stdout, "No rules found. Use 'dealerscrape rules set' to create one.")
		return nil
	}

	for _, r := range rules {
		fmt.Fprintf(deps.Stdout, "%s  cards=%q  name=%q\n", r.Domain, r.CardSelector, r.NameSelector)
	}

	return nil
}

// Run executes the rules set command.
func (c *RulesSetCmd) Run(deps *Dependencies) error {
	rule := &dealerscraper.Rule{
		Domain:          c.Domain,
		CardSelector:    c.Card,
		NameSelector:    c.Name,
		AddressSelector: c.Address,
		PhoneSelector:   c.Phone,
		WebsiteSelector: c.Website,
	}

	if err := deps.Rules.SaveRule(deps.Ctx, rule); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dealerscraper.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Saved rule for %q (%s)\n", c.Domain, rule.ID)
	return nil
}

// Run executes the rules delete command.
func (c *RulesDeleteCmd) Run(deps *Dependencies) error {
	if err := deps.Rules.DeleteRule(deps.Ctx, c.Domain); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dealerscraper.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Deleted rule for %q\n", c.Domain)
	return nil
}
