// Package slog provides logging decorators for the enrichment pipeline's
// service interfaces.
package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/contentloop/enrich"
)

// Ensure LoggingSearcher implements enrich.Searcher.
var _ enrich.Searcher = (*LoggingSearcher)(nil)

// LoggingSearcher wraps a Searcher with debug logging.
type LoggingSearcher struct {
	next   enrich.Searcher
	name   string
	logger *slog.Logger
}

// NewLoggingSearcher creates a new LoggingSearcher. name identifies the
// wrapped backend in log output.
func NewLoggingSearcher(next enrich.Searcher, name string, logger *slog.Logger) *LoggingSearcher {
	return &LoggingSearcher{next: next, name: name, logger: logger}
}

// Search delegates to the wrapped searcher and logs the operation.
func (s *LoggingSearcher) Search(ctx context.Context, topic string) (results []enrich.SearchResult, err error) {
	defer func(begin time.Time) {
		s.logger.Info("reference search",
			"backend", s.name,
			"topic", topic,
			"count", len(results),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Search(ctx, topic)
}
