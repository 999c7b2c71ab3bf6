package enrich

import "context"

// RewriteRequest carries the inputs for a single rewrite.
type RewriteRequest struct {
	Title   string
	Content string

	// References are the successfully extracted reference articles, in the
	// order they were supplied by search. Empty means no-reference mode:
	// a pure formatting and clarity pass with no citations.
	References []*Extract
}

// Rewriter produces an enhanced HTML rewrite of an article, optionally
// modeled on the structural style of reference extracts.
//
// A rewrite error is fatal to the single enhancement attempt and must leave
// the article unmodified; retry is the coordinator's responsibility at the
// batch level, never this component's.
type Rewriter interface {
	Rewrite(ctx context.Context, req RewriteRequest) (string, error)
}
