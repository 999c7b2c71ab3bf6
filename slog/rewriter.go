package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/contentloop/enrich"
)

// Ensure LoggingRewriter implements enrich.Rewriter.
var _ enrich.Rewriter = (*LoggingRewriter)(nil)

// LoggingRewriter wraps a Rewriter with debug logging.
type LoggingRewriter struct {
	next   enrich.Rewriter
	logger *slog.Logger
}

// NewLoggingRewriter creates a new LoggingRewriter.
func NewLoggingRewriter(next enrich.Rewriter, logger *slog.Logger) *LoggingRewriter {
	return &LoggingRewriter{next: next, logger: logger}
}

// Rewrite delegates to the wrapped rewriter and logs the operation.
func (r *LoggingRewriter) Rewrite(ctx context.Context, req enrich.RewriteRequest) (content string, err error) {
	defer func(begin time.Time) {
		r.logger.Info("rewrite",
			"title", req.Title,
			"references", len(req.References),
			"bytes", len(content),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Rewrite(ctx, req)
}
