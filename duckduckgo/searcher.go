// Package duckduckgo implements reference search against the DuckDuckGo
// HTML endpoint, the last resort of the search cascade. The endpoint serves
// plain server-rendered markup, so no browser is needed.
package duckduckgo

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/contentloop/enrich"
)

// baseURL is the HTML-only results endpoint.
const baseURL = "https://html.duckduckgo.com/html/"

// userAgent is sent with every request; the endpoint rejects clients
// without a browser UA.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// Ensure Searcher implements enrich.Searcher at compile time.
var _ enrich.Searcher = (*Searcher)(nil)

// Searcher queries the DuckDuckGo HTML endpoint and returns filtered
// article links, at most enrich.MaxReferences of them.
type Searcher struct {
	client       *http.Client
	baseURL      string
	excludeHosts []string
}

// Option configures a Searcher.
type Option func(*Searcher)

// WithHTTPClient overrides the HTTP client used for requests.
func WithHTTPClient(c *http.Client) Option {
	return func(s *Searcher) {
		s.client = c
	}
}

// WithBaseURL overrides the results endpoint. Used in tests.
func WithBaseURL(u string) Option {
	return func(s *Searcher) {
		s.baseURL = u
	}
}

// WithExcludeHosts rejects results from the given hosts.
func WithExcludeHosts(hosts ...string) Option {
	return func(s *Searcher) {
		s.excludeHosts = hosts
	}
}

// NewSearcher creates a Searcher.
func NewSearcher(opts ...Option) *Searcher {
	s := &Searcher{
		client:  http.DefaultClient,
		baseURL: baseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search fetches the results page for the topic and returns filtered
// article links.
func (s *Searcher) Search(ctx context.Context, topic string) ([]enrich.SearchResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?q="+url.QueryEscape(topic), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, enrich.Errorf(enrich.EUNAVAILABLE, "duckduckgo request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, enrich.Errorf(enrich.EUNAVAILABLE, "duckduckgo returned HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, enrich.Errorf(enrich.EUNAVAILABLE, "reading duckduckgo response: %v", err)
	}

	return parseResults(string(body), s.excludeHosts), nil
}

// parseResults extracts result links from the HTML endpoint's markup.
// Links are wrapped in a /l/?uddg= redirect which is unwrapped first.
func parseResults(html string, excludeHosts []string) []enrich.SearchResult {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	seen := make(map[string]bool)
	var results []enrich.SearchResult

	doc.Find("a.result__a").EachWithBreak(func(_ int, a *goquery.Selection) bool {
		href, _ := a.Attr("href")
		link := unwrapRedirect(href)
		if link == "" || seen[link] {
			return true
		}
		if !enrich.IsArticleLink(link, excludeHosts...) {
			return true
		}
		seen[link] = true

		results = append(results, enrich.SearchResult{
			URL:   link,
			Title: strings.TrimSpace(a.Text()),
		})
		return len(results) < enrich.MaxReferences
	})

	return results
}

// unwrapRedirect resolves the uddg redirect parameter to the target URL.
func unwrapRedirect(href string) string {
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return ""
	}
	if uddg := u.Query().Get("uddg"); uddg != "" {
		return uddg
	}
	if u.Scheme == "http" || u.Scheme == "https" {
		return href
	}
	return ""
}
