package mock

import (
	"context"

	"github.com/contentloop/enrich"
)

var _ enrich.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of enrich.Extractor.
type Extractor struct {
	ExtractFn func(ctx context.Context, url string) (*enrich.Extract, error)
}

func (e *Extractor) Extract(ctx context.Context, url string) (*enrich.Extract, error) {
	return e.ExtractFn(ctx, url)
}
