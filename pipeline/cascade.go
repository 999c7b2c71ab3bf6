package pipeline

import (
	"context"
	"log/slog"

	"github.com/contentloop/enrich"
)

// Ensure Cascade implements enrich.Searcher at compile time.
var _ enrich.Searcher = (*Cascade)(nil)

// Cascade tries search backends in order until one yields at least one
// result. Backend errors are logged and treated as empty results; the next
// backend gets its chance. Only context cancellation stops the walk early.
type Cascade struct {
	Backends []enrich.Searcher
	Logger   *slog.Logger
}

// NewCascade creates a Cascade over the given backends.
func NewCascade(logger *slog.Logger, backends ...enrich.Searcher) *Cascade {
	return &Cascade{Backends: backends, Logger: logger}
}

// Search walks the backends in order and returns the first non-empty result
// set. An exhausted cascade returns an empty slice, not an error.
func (c *Cascade) Search(ctx context.Context, topic string) ([]enrich.SearchResult, error) {
	for i, backend := range c.Backends {
		results, err := backend.Search(ctx, topic)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			if c.Logger != nil {
				c.Logger.Warn("search backend failed",
					"backend", i,
					"topic", topic,
					"err", err,
				)
			}
			continue
		}
		if len(results) > 0 {
			return results, nil
		}
	}
	return nil, nil
}
