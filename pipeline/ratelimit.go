package pipeline

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"
)

// DefaultFetchRPS spaces fetches against any single domain roughly two
// seconds apart, matching the pacing the source sites tolerate.
const DefaultFetchRPS = 0.5

// DomainLimiter provides per-domain rate limiting using token buckets.
// Each domain gets its own limiter, so reference fetches against different
// sites do not slow each other down while any single site sees at most the
// configured rate.
type DomainLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	rps      float64
}

// NewDomainLimiter creates a DomainLimiter with the given requests per
// second limit. Each domain's limiter has a burst of 1; the first request
// to a domain proceeds immediately, subsequent ones are spaced.
func NewDomainLimiter(rps float64) *DomainLimiter {
	return &DomainLimiter{
		limiters: make(map[string]*rate.Limiter),
		rps:      rps,
	}
}

// Wait blocks until the rate limit allows a request to the domain.
// Returns an error if the context is canceled before the wait completes.
func (d *DomainLimiter) Wait(ctx context.Context, domain string) error {
	d.mu.Lock()
	limiter, ok := d.limiters[domain]
	if !ok {
		limiter = rate.NewLimiter(rate.Limit(d.rps), 1)
		d.limiters[domain] = limiter
	}
	d.mu.Unlock()

	return limiter.Wait(ctx)
}

// WaitURL rate limits by the URL's host. Unparseable URLs are not limited;
// they will fail at fetch time with a better error.
func (d *DomainLimiter) WaitURL(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil
	}
	return d.Wait(ctx, u.Host)
}
