package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"google.golang.org/genai"

	"github.com/contentloop/enrich"
	"github.com/contentloop/enrich/bloom"
	"github.com/contentloop/enrich/duckduckgo"
	"github.com/contentloop/enrich/gemini"
	"github.com/contentloop/enrich/google"
	"github.com/contentloop/enrich/goquery"
	enrichhttp "github.com/contentloop/enrich/http"
	"github.com/contentloop/enrich/pipeline"
	"github.com/contentloop/enrich/rod"
	enrichslog "github.com/contentloop/enrich/slog"
	"github.com/contentloop/enrich/sqlite"
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

	// Blog listing page that discovery imports from.
	SourceURL string

	// SQLite database used by SQLite service implementations.
	DB *sqlite.DB

	// Services for end-to-end testing.
	ArticleService enrich.ArticleService
}

// NewMain returns a new instance of Main with defaults.
func NewMain() *Main {
	return &Main{
		DBPath:    defaultDBPath(),
		SourceURL: os.Getenv("ENRICH_SOURCE_URL"),
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
	deps := &Dependencies{
		Ctx:    ctx,
		Stdout: stdout,
		Stderr: stderr,
		Logger: slog.New(slog.NewTextHandler(stderr, nil)),
	}

	cli := &CLI{}
	parser, err := kong.New(cli,
		kong.Name("enrich"),
		kong.Writers(stdout, stderr),
		kong.Exit(func(int) {}), // Don't exit on help
		kong.Bind(deps),
	)
	if err != nil {
		return fmt.Errorf("failed to create parser: %w", err)
	}

	// Handle help flags using Kong
	if len(args) == 0 {
		_, _ = parser.Parse([]string{"--help"})
		return fmt.Errorf("no command specified. Run 'enrich --help' to see available commands")
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
		fmt.Fprintf(stderr, "Hint: Set ENRICH_DB to use a different database path\n")
		return fmt.Errorf("failed to open database at %q: %w", m.DBPath, err)
	}
	defer m.Close()

	m.ArticleService = sqlite.NewArticleService(m.DB)
	deps.DB = m.DB
	deps.Articles = m.ArticleService

	// Wire pipeline dependencies based on command
	needsBrowser := cmd == "serve" || cmd == "scrape" || cmd == "enhance"
	needsRewriter := cmd == "serve" || cmd == "enhance"

	if needsRewriter && os.Getenv("GEMINI_API_KEY") == "" {
		fmt.Fprintln(stderr, "GEMINI_API_KEY environment variable not set. Get an API key at https://aistudio.google.com/apikey")
		return enrich.Errorf(enrich.EINVALID, "GEMINI_API_KEY not set")
	}
	if (cmd == "serve" || cmd == "scrape") && m.SourceURL == "" {
		fmt.Fprintln(stderr, "ENRICH_SOURCE_URL environment variable not set. Point it at the blog listing page to import from.")
		return enrich.Errorf(enrich.EINVALID, "ENRICH_SOURCE_URL not set")
	}

	var browser *rod.Fetcher
	if needsBrowser {
		browser, err = rod.NewFetcher()
		if err != nil {
			fmt.Fprintln(stderr, "Hint: Chrome or Chromium must be installed")
			return fmt.Errorf("failed to start browser: %w", err)
		}
		defer browser.Close()

		static := enrichhttp.NewFetcher()
		defer static.Close()

		extractor := enrichslog.NewLoggingExtractor(goquery.NewExtractor(browser, static), deps.Logger)
		limiter := pipeline.NewDomainLimiter(pipeline.DefaultFetchRPS)
		queue := pipeline.NewQueue(deps.Logger)
		defer queue.Close()

		deps.Discoverer = &pipeline.Discoverer{
			Articles:  deps.Articles,
			Fetcher:   browser,
			Extractor: extractor,
			Queue:     queue,
			Logger:    deps.Logger,
			SourceURL: m.SourceURL,
			Seen:      bloom.NewFilter(discoveryFilterSize, discoveryFilterFPRate),
			Limiter:   limiter,
		}

		if needsRewriter {
			client, err := genai.NewClient(ctx, &genai.ClientConfig{
				APIKey:  os.Getenv("GEMINI_API_KEY"),
				Backend: genai.BackendGeminiAPI,
			})
			if err != nil {
				fmt.Fprintln(stderr, "Hint: Check your GEMINI_API_KEY is valid")
				return fmt.Errorf("failed to connect to Gemini API: %w", err)
			}

			// References must come from other sites, so every backend
			// rejects results hosted on the source blog itself.
			sourceHost := SourceHost(m.SourceURL)
			cascade := pipeline.NewCascade(deps.Logger,
				enrichslog.NewLoggingSearcher(
					google.NewAPISearcher(os.Getenv("GOOGLE_API_KEY"), os.Getenv("GOOGLE_CX"),
						google.WithAPIExcludeHosts(sourceHost)),
					"google-api", deps.Logger),
				enrichslog.NewLoggingSearcher(
					google.NewSERPSearcher(browser, google.WithSERPExcludeHosts(sourceHost)),
					"google-serp", deps.Logger),
				enrichslog.NewLoggingSearcher(
					duckduckgo.NewSearcher(duckduckgo.WithExcludeHosts(sourceHost)),
					"duckduckgo", deps.Logger),
			)

			deps.Enhancer = &pipeline.Enhancer{
				Articles:  deps.Articles,
				Searcher:  cascade,
				Extractor: extractor,
				Rewriter:  enrichslog.NewLoggingRewriter(gemini.NewRewriter(client), deps.Logger),
				Queue:     queue,
				Logger:    deps.Logger,
				Limiter:   limiter,
				Sanitizer: pipeline.NewSanitizer(),
				Citations: gemini.AddCitations,
			}
		}
	}

	return kongCtx.Run(deps)
}

// Sizing for the discovery dedup filter: comfortably larger than any blog
// archive it will see in one process lifetime.
const (
	discoveryFilterSize   = 10000
	discoveryFilterFPRate = 0.01
)

// SourceHost extracts the hostname of the source listing URL. Searchers use
// it to reject results from the blog's own domain. Returns "" for an empty
// or unparseable URL, which disables the exclusion.
func SourceHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

func defaultDBPath() string {
	if path := os.Getenv("ENRICH_DB"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "enrich.db"
	}
	dir := filepath.Join(home, ".enrich")
	_ = os.MkdirAll(dir, 0755)
	return filepath.Join(dir, "enrich.db")
}
