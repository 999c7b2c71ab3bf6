package mock

import (
	"context"

	"github.com/contentloop/enrich"
)

var _ enrich.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of enrich.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, topic string) ([]enrich.SearchResult, error)
}

func (s *Searcher) Search(ctx context.Context, topic string) ([]enrich.SearchResult, error) {
	return s.SearchFn(ctx, topic)
}
