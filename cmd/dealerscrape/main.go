package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"google.golang.org/genai"

	dealerscraper "github.com/CedmondsTH/dealer-scraper"
	"github.com/CedmondsTH/dealer-scraper/extract"
	"github.com/CedmondsTH/dealer-scraper/fs"
	"github.com/CedmondsTH/dealer-scraper/gemini"
	"github.com/CedmondsTH/dealer-scraper/goquery"
	"github.com/CedmondsTH/dealer-scraper/htmltomarkdown"
	dshttp "github.com/CedmondsTH/dealer-scraper/http"
	"github.com/CedmondsTH/dealer-scraper/rod"
	dsslog "github.com/CedmondsTH/dealer-scraper/slog"
	"github.com/CedmondsTH/dealer-scraper/sqlite"
	"github.com/CedmondsTH/dealer-scraper/trafilatura"
)

func main() {
	ctx := context.Background()

	m := NewMain()

	if err := m.Run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// Main represents the program.
type Main struct {
	// Database path. Set before calling Run().
	DBPath string

	// SQLite database holding learned extraction rules.
	DB *sqlite.DB

	// RuleStore for end-to-end testing.
	Rules dealerscraper.RuleStore
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath: defaultDBPath(),
	}
}

// Close gracefully stops the program.
func (m *Main) Close() error {
	if m.DB != nil {
		return m.DB.Close()
	}
	return nil
}

// Run executes the CLI with the given arguments.
func (m *Main) Run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	// Pick up GEMINI_API_KEY and friends from a local .env if present.
	_ = godotenv.Load()

	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("dealerscrape"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'dealerscrape --help' to see available commands")
	}

	cmd := args[0]
	if cmd == "help" || cmd == "--help" || cmd == "-h" {
		_, _ = parser.Parse([]string{"--help"})
		return nil
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	// Open database
	m.DB = sqlite.NewDB(m.DBPath)
	if err := m.DB.Open(); err != nil {
		fmt.Fprintf(stderr, "Hint: Set DEALERSCRAPE_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.Rules = sqlite.NewRuleService(m.DB)
	deps.DB = m.DB
	deps.Rules = m.Rules
	deps.Finder = dshttp.NewLocationPageFinder(nil)

	if cmd == "scrape" {
		batch, cleanup, err := m.buildBatch(ctx, cli, stderr)
		if err != nil {
			return err
		}
		defer cleanup()
		deps.Batch = batch
	}

	return kongCtx.Run(deps)
}

// buildBatch wires the full extraction stack for the scrape command.
func (m *Main) buildBatch(ctx context.Context, cli *CLI, stderr io.Writer) (*extract.Batch, func(), error) {
	manager, err := rod.NewManager()
	if err != nil {
		fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
		return nil, nil, fmt.Errorf("failed to start browser: %w", err)
	}

	var sink dealerscraper.DebugSink
	if cli.Scrape.CaptureDir != "" {
		sink = fs.NewCaptureSink(cli.Scrape.CaptureDir)
	}

	light := dshttp.NewFetcher(dshttp.WithTimeout(cli.Scrape.Timeout))
	browser := rod.NewFetcher(manager, rod.WithTimeout(cli.Scrape.Timeout))

	var fetcher dealerscraper.Fetcher = extract.NewEscalatingFetcher(light, browser, sink)
	fetcher = extract.NewRetryFetcher(fetcher, func(format string, args ...any) {
		fmt.Fprintf(stderr, format+"\n", args...)
	}, nil)

	var registry dealerscraper.Registry = goquery.NewRegistry()
	registerStrategies(registry, m.Rules)

	if apiKey := os.Getenv("GEMINI_API_KEY"); apiKey != "" {
		client, cerr := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  apiKey,
			Backend: genai.BackendGeminiAPI,
		})
		if cerr != nil {
			manager.Close()
			fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
			return nil, nil, fmt.Errorf("failed to connect to Gemini API: %w", cerr)
		}
		prep := gemini.NewPreparer(trafilatura.NewExtractor(), htmltomarkdown.NewConverter())
		registry.Register(gemini.NewStrategy(client, prep))
	}

	if cli.Scrape.Verbose {
		logger := slog.New(slog.NewTextHandler(stderr, nil))
		fetcher = dsslog.NewLoggingFetcher(fetcher, logger)
		registry = dsslog.NewLoggingRegistry(registry, logger)
	}

	batch := &extract.Batch{
		Pipeline: &extract.Pipeline{
			Fetcher:    fetcher,
			Registry:   registry,
			Normalizer: &dealerscraper.Normalizer{DealerGroup: cli.Scrape.Group},
			Deduper:    &dealerscraper.Deduplicator{},
		},
		Limiter:     extract.NewDomainLimiter(cli.Scrape.Rate),
		Concurrency: cli.Scrape.Concurrency,
	}

	cleanup := func() { _ = fetcher.Close() }
	return batch, cleanup, nil
}

// registerStrategies registers the extraction strategies in selection order:
// site-specific recipes first, then the generic pattern families.
func registerStrategies(registry dealerscraper.Registry, rules dealerscraper.RuleStore) {
	registry.Register(goquery.NewLithiaStrategy())
	registry.Register(goquery.NewGroupOneStrategy())
	registry.Register(goquery.NewEdwardsStrategy())
	registry.Register(goquery.NewWellCardStrategy())

	registry.Register(goquery.NewJSONLDStrategy())
	registry.Register(goquery.NewScriptVarsStrategy())
	registry.Register(goquery.NewLearnedRuleStrategy(rules))
	registry.Register(goquery.NewCardStrategy())
}

func defaultDBPath() string {
	if path := os.Getenv("DEALERSCRAPE_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "dealerscrape.db"
	}
	dir := filepath.Join(home, ".dealerscrape")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "dealerscrape.db")
}
