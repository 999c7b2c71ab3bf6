// Package rod retrieves rendered HTML through headless Chrome. Blog platforms
// in scope render article bodies client-side, so a plain HTTP GET often
// returns an empty shell; driving a real browser is the reliable path.
package rod

import (
	"context"
	"time"

	"github.com/contentloop/enrich"
	"github.com/go-rod/rod/lib/proto"
)

// Ensure Fetcher implements enrich.Fetcher at compile time.
var _ enrich.Fetcher = (*Fetcher)(nil)

const (
	// navigationTimeout bounds a single page load end to end.
	navigationTimeout = 30 * time.Second

	// settleDelay gives client-side rendering a moment to populate the DOM
	// after the load event fires.
	settleDelay = 2 * time.Second
)

// Fetcher retrieves rendered HTML from URLs using Chrome browser automation.
// The underlying browser is recycled periodically to contain Chrome's memory
// growth. Fetcher is safe for concurrent use by multiple goroutines.
type Fetcher struct {
	manager *BrowserManager
}

// NewFetcher creates a new Fetcher backed by a managed headless Chrome
// browser. Close must be called when the Fetcher is no longer needed.
//
// Returns an error if Chrome/Chromium cannot be found or launched.
func NewFetcher(opts ...ManagerOption) (*Fetcher, error) {
	manager, err := NewBrowserManager(opts...)
	if err != nil {
		return nil, err
	}
	return &Fetcher{manager: manager}, nil
}

// Fetch navigates to the URL and returns the rendered HTML.
func (f *Fetcher) Fetch(ctx context.Context, url string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	ctx, cancel := context.WithTimeout(ctx, navigationTimeout)
	defer cancel()

	page, err := f.manager.Browser().Page(proto.TargetCreateTarget{})
	if err != nil {
		return "", err
	}
	defer page.Close()

	page = page.Context(ctx)

	if err := page.Navigate(url); err != nil {
		return "", err
	}
	if err := page.WaitLoad(); err != nil {
		return "", err
	}

	select {
	case <-time.After(settleDelay):
	case <-ctx.Done():
		return "", ctx.Err()
	}

	html, err := page.HTML()
	if err != nil {
		return "", err
	}

	f.manager.IncrementPageCount()
	return html, nil
}

// LauncherPID returns the process ID of the browser launcher.
// This method exists for testing purposes to verify proper cleanup.
func (f *Fetcher) LauncherPID() int {
	return f.manager.LauncherPID()
}

// Close releases browser resources.
func (f *Fetcher) Close() error {
	return f.manager.Close()
}
