package google

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/contentloop/enrich"
)

// serpBaseURL is the results page scraped by SERPSearcher.
const serpBaseURL = "https://www.google.com/search"

// Ensure SERPSearcher implements enrich.Searcher at compile time.
var _ enrich.Searcher = (*SERPSearcher)(nil)

// SERPSearcher scrapes a rendered Google results page through a browser
// fetcher. It exists for deployments without Custom Search API credentials;
// the markup it parses is unstable by nature, so it is strictly a fallback.
type SERPSearcher struct {
	fetcher      enrich.Fetcher
	baseURL      string
	excludeHosts []string
}

// SERPOption configures a SERPSearcher.
type SERPOption func(*SERPSearcher)

// WithSERPBaseURL overrides the results page URL. Used in tests.
func WithSERPBaseURL(baseURL string) SERPOption {
	return func(s *SERPSearcher) {
		s.baseURL = baseURL
	}
}

// WithSERPExcludeHosts rejects results from the given hosts.
func WithSERPExcludeHosts(hosts ...string) SERPOption {
	return func(s *SERPSearcher) {
		s.excludeHosts = hosts
	}
}

// NewSERPSearcher creates a SERPSearcher over the given fetcher. The fetcher
// should execute JavaScript; a static fetch of a results page returns a
// consent shell.
func NewSERPSearcher(fetcher enrich.Fetcher, opts ...SERPOption) *SERPSearcher {
	s := &SERPSearcher{
		fetcher: fetcher,
		baseURL: serpBaseURL,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search fetches the results page for the topic and returns filtered
// article links.
func (s *SERPSearcher) Search(ctx context.Context, topic string) ([]enrich.SearchResult, error) {
	html, err := s.fetcher.Fetch(ctx, s.baseURL+"?q="+url.QueryEscape(topic))
	if err != nil {
		return nil, enrich.Errorf(enrich.EUNAVAILABLE, "fetching google results page: %v", err)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, enrich.Errorf(enrich.EUNAVAILABLE, "parsing google results page: %v", err)
	}

	seen := make(map[string]bool)
	var results []enrich.SearchResult

	doc.Find("div.g, div[data-ved]").EachWithBreak(func(_ int, block *goquery.Selection) bool {
		anchor := block.Find("a[href]").First()
		href, _ := anchor.Attr("href")
		link := unwrapRedirect(href)
		if link == "" || seen[link] {
			return true
		}
		if !enrich.IsArticleLink(link, s.excludeHosts...) {
			return true
		}
		seen[link] = true

		title := strings.TrimSpace(block.Find("h3").First().Text())
		if title == "" {
			title = strings.TrimSpace(anchor.Text())
		}

		results = append(results, enrich.SearchResult{URL: link, Title: title})
		return len(results) < enrich.MaxReferences
	})

	return results, nil
}

// unwrapRedirect resolves Google's /url?q= redirect links to their target.
func unwrapRedirect(href string) string {
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "/url?") {
		if u, err := url.Parse(href); err == nil {
			if q := u.Query().Get("q"); q != "" {
				return q
			}
		}
		return ""
	}
	return href
}
