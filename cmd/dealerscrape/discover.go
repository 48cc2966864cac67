package main

import (
	"fmt"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
)

// Run executes the discover command.
func (c *DiscoverCmd) Run(deps *Dependencies) error {
	urls, err := deps.Finder.Discover(deps.Ctx, c.URL)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", dealerscraper.ErrorMessage(err))
		return err
	}

	if len(urls) == 0 {
		fmt.Fprintln(deps.Stdout, "No location pages found.")
		return nil
	}

	for _, u := range urls {
		fmt.Fprintln(deps.Stdout, u)
	}

	return nil
}
