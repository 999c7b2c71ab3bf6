package enrich

import (
	"context"
	"strings"
)

// MaxReferences is the maximum number of reference articles consulted per
// enhancement.
const MaxReferences = 2

// SearchResult is a candidate reference article returned by a search backend.
type SearchResult struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Searcher finds candidate reference articles for a topic. Implementations
// apply the article-link filter and return at most MaxReferences results.
// An empty slice means the backend found nothing usable; it is not an error.
type Searcher interface {
	Search(ctx context.Context, topic string) ([]SearchResult, error)
}

// ShortenTopic returns the text before the first colon or hyphen of a topic,
// used as a retry query when the full topic yields no search results.
// The second return value is false when no usable shortened form exists:
// the shortened topic must be longer than 10 characters and differ from the
// original.
func ShortenTopic(topic string) (string, bool) {
	short := topic
	if i := strings.Index(short, ":"); i >= 0 {
		short = short[:i]
	}
	if i := strings.Index(short, "-"); i >= 0 {
		short = short[:i]
	}
	short = strings.TrimSpace(short)
	if len(short) > 10 && short != topic {
		return short, true
	}
	return "", false
}
