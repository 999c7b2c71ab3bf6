package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/contentloop/enrich"
)

// Ensure LoggingExtractor implements enrich.Extractor.
var _ enrich.Extractor = (*LoggingExtractor)(nil)

// LoggingExtractor wraps an Extractor with debug logging.
type LoggingExtractor struct {
	next   enrich.Extractor
	logger *slog.Logger
}

// NewLoggingExtractor creates a new LoggingExtractor.
func NewLoggingExtractor(next enrich.Extractor, logger *slog.Logger) *LoggingExtractor {
	return &LoggingExtractor{next: next, logger: logger}
}

// Extract delegates to the wrapped extractor and logs the operation.
func (e *LoggingExtractor) Extract(ctx context.Context, url string) (extract *enrich.Extract, err error) {
	defer func(begin time.Time) {
		var bytes int
		if extract != nil {
			bytes = len(extract.Text)
		}
		e.logger.Info("content extraction",
			"url", url,
			"bytes", bytes,
			"empty", extract.IsEmpty(),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Extract(ctx, url)
}
