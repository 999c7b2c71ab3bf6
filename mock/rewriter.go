package mock

import (
	"context"

	"github.com/contentloop/enrich"
)

var _ enrich.Rewriter = (*Rewriter)(nil)

// Rewriter is a mock implementation of enrich.Rewriter.
type Rewriter struct {
	RewriteFn func(ctx context.Context, req enrich.RewriteRequest) (string, error)
}

func (r *Rewriter) Rewrite(ctx context.Context, req enrich.RewriteRequest) (string, error) {
	return r.RewriteFn(ctx, req)
}
