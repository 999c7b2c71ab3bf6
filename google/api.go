// Package google implements reference search against Google, through the
// Custom Search JSON API and, as a fallback, by scraping a rendered results
// page. Both implementations apply the article-link filter and return at
// most enrich.MaxReferences results.
package google

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/contentloop/enrich"
)

// apiEndpoint is the Custom Search JSON API base URL.
const apiEndpoint = "https://customsearch.googleapis.com/customsearch/v1"

// apiResultCount is the number of results requested from the API. More than
// MaxReferences are requested because the article-link filter discards many.
const apiResultCount = 10

// Ensure APISearcher implements enrich.Searcher at compile time.
var _ enrich.Searcher = (*APISearcher)(nil)

// APISearcher queries the Google Custom Search JSON API. It requires an API
// key and a programmable search engine ID; Search fails with EUNAVAILABLE
// when either is missing so a cascade can move on to the next backend.
type APISearcher struct {
	client       *http.Client
	endpoint     string
	key          string
	cx           string
	excludeHosts []string
}

// APIOption configures an APISearcher.
type APIOption func(*APISearcher)

// WithAPIHTTPClient overrides the HTTP client used for API calls.
func WithAPIHTTPClient(c *http.Client) APIOption {
	return func(s *APISearcher) {
		s.client = c
	}
}

// WithAPIEndpoint overrides the API base URL. Used in tests.
func WithAPIEndpoint(endpoint string) APIOption {
	return func(s *APISearcher) {
		s.endpoint = endpoint
	}
}

// WithAPIExcludeHosts rejects results from the given hosts, typically the
// source site itself.
func WithAPIExcludeHosts(hosts ...string) APIOption {
	return func(s *APISearcher) {
		s.excludeHosts = hosts
	}
}

// NewAPISearcher creates an APISearcher with the given credentials.
func NewAPISearcher(key, cx string, opts ...APIOption) *APISearcher {
	s := &APISearcher{
		client:   http.DefaultClient,
		endpoint: apiEndpoint,
		key:      key,
		cx:       cx,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// apiResponse mirrors the fields of the Custom Search response we consume.
type apiResponse struct {
	Items []struct {
		Title string `json:"title"`
		Link  string `json:"link"`
	} `json:"items"`
}

// Search queries the API for the topic and returns filtered article links.
func (s *APISearcher) Search(ctx context.Context, topic string) ([]enrich.SearchResult, error) {
	if s.key == "" || s.cx == "" {
		return nil, enrich.Errorf(enrich.EUNAVAILABLE, "google search api credentials not configured")
	}

	q := url.Values{}
	q.Set("key", s.key)
	q.Set("cx", s.cx)
	q.Set("q", topic)
	q.Set("num", fmt.Sprint(apiResultCount))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, enrich.Errorf(enrich.EUNAVAILABLE, "google search api request failed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, enrich.Errorf(enrich.EUNAVAILABLE, "google search api returned HTTP %d: %s", resp.StatusCode, body)
	}

	var parsed apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, enrich.Errorf(enrich.EUNAVAILABLE, "decoding google search api response: %v", err)
	}

	var results []enrich.SearchResult
	for _, item := range parsed.Items {
		if !enrich.IsArticleLink(item.Link, s.excludeHosts...) {
			continue
		}
		results = append(results, enrich.SearchResult{URL: item.Link, Title: item.Title})
		if len(results) == enrich.MaxReferences {
			break
		}
	}
	return results, nil
}
