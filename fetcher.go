package enrich

import "context"

// Fetcher retrieves HTML from URLs.
// The primary implementation uses browser automation so JavaScript-rendered
// pages work; a plain HTTP implementation serves as the fallback rendering
// path for static pages.
type Fetcher interface {
	// Fetch retrieves the HTML for the URL.
	// The context controls timeout and cancellation.
	Fetch(ctx context.Context, url string) (html string, err error)

	// Close releases any resources held by the fetcher.
	// Must be called when the Fetcher is no longer needed.
	Close() error
}
