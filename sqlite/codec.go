package sqlite

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/contentloop/enrich"
)

// Column encoding for the articles table: timestamps are stored as RFC3339
// text, booleans as 0/1 integers and the reference list as a JSON array.

func encodeTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// encodeNullableTime maps a nil time to SQL NULL; updated_at is NULL until
// the first enhancement.
func encodeNullableTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return encodeTime(*t)
}

func decodeTime(value, column string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("decoding %s column: %w", column, err)
	}
	return t, nil
}

func encodeBool(b bool) int {
	if b {
		return 1
	}
	return 0
}

func encodeRefs(refs []enrich.ReferenceArticle) (string, error) {
	b, err := json.Marshal(refs)
	if err != nil {
		return "", fmt.Errorf("encoding reference articles: %w", err)
	}
	return string(b), nil
}

func decodeRefs(value string, dst *[]enrich.ReferenceArticle) error {
	if err := json.Unmarshal([]byte(value), dst); err != nil {
		return fmt.Errorf("decoding reference articles: %w", err)
	}
	return nil
}

// applyPagination appends LIMIT and OFFSET clauses for the positive filter
// values. Zero means unbounded.
func applyPagination(query *strings.Builder, args *[]any, filter enrich.ArticleFilter) {
	if filter.Limit > 0 {
		query.WriteString(" LIMIT ?")
		*args = append(*args, filter.Limit)
	}
	if filter.Offset > 0 {
		query.WriteString(" OFFSET ?")
		*args = append(*args, filter.Offset)
	}
}
