package main

import (
	"context"
	"io"
	"time"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
	"github.com/CedmondsTH/dealer-scraper/extract"
	dshttp "github.com/CedmondsTH/dealer-scraper/http"
	"github.com/CedmondsTH/dealer-scraper/sqlite"
)

// Dependencies holds all services and configuration for command execution.
type Dependencies struct {
	Ctx    context.Context
	Stdout io.Writer
	Stderr io.Writer
	DB     *sqlite.DB
	Rules  dealerscraper.RuleStore
	Batch  *extract.Batch
	Finder *dshttp.LocationPageFinder
}

// CLI defines the command-line interface structure for Kong.
type CLI struct {
	Scrape   ScrapeCmd   `cmd:"" help:"Extract dealership locations from one or more sites"`
	Discover DiscoverCmd `cmd:"" help:"Find candidate location pages for a site"`
	Rules    RulesCmd    `cmd:"" help:"Manage learned extraction rules"`
}

// ScrapeCmd is the "scrape" subcommand.
type ScrapeCmd struct {
	URLs        []string      `arg:"" help:"Location page URLs to extract"`
	Group       string        `short:"g" help:"Dealer group name stamped on every record"`
	Browser     bool          `short:"b" help:"Skip the light transport and render with the browser"`
	Format      string        `default:"json" enum:"json,csv" help:"Output format (json or csv)"`
	Out         string        `short:"o" help:"Write output to a file instead of stdout"`
	Concurrency int           `short:"c" default:"4" help:"Concurrent site limit"`
	Rate        float64       `default:"1.0" help:"Requests per second per domain"`
	Timeout     time.Duration `default:"30s" help:"Per-fetch timeout"`
	CaptureDir  string        `help:"Persist raw fetched HTML to this directory"`
	Verbose     bool          `short:"v" help:"Log fetches and strategy selection to stderr"`
}

// DiscoverCmd is the "discover" subcommand.
type DiscoverCmd struct {
	URL string `arg:"" help:"Site URL to search for location pages"`
}

// RulesCmd groups the learned-rule subcommands.
type RulesCmd struct {
	List   RulesListCmd   `cmd:"" help:"List learned rules"`
	Set    RulesSetCmd    `cmd:"" help:"Create or replace a rule for a domain"`
	Delete RulesDeleteCmd `cmd:"" help:"Delete the rule for a domain"`
}

// RulesListCmd is the "rules list" subcommand.
type RulesListCmd struct{}

// RulesSetCmd is the "rules set" subcommand.
type RulesSetCmd struct {
	Domain  string `arg:"" help:"Domain the rule applies to (e.g. example.com)"`
	Card    string `required:"" help:"CSS selector for one dealership card"`
	Name    string `required:"" help:"CSS selector for the name within a card"`
	Address string `help:"CSS selector for the address within a card"`
	Phone   string `help:"CSS selector for the phone within a card"`
	Website string `help:"CSS selector for the website link within a card"`
}

// RulesDeleteCmd is the "rules delete" subcommand.
type RulesDeleteCmd struct {
	Domain string `arg:"" help:"Domain whose rule should be removed"`
}
