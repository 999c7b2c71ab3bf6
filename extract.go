package enrich

import "context"

// Extract holds the structured content pulled from one reference page.
// It is transient: produced by an Extractor, consumed by a Rewriter, never
// persisted.
type Extract struct {
	URL   string
	Title string

	// Text is the concatenated text content of the surviving container.
	Text string

	// HTML is the raw inner HTML of the surviving container.
	HTML string

	// Structure is the comma-joined tag sequence of retained block-level
	// nodes (p, h2, h3, h4, ul, ol, blockquote) carrying more than 20
	// characters of text. It describes the article's formatting style.
	Structure string
}

// IsEmpty reports whether the extract carries no usable content.
func (e *Extract) IsEmpty() bool {
	return e == nil || e.Text == ""
}

// Extractor pulls the main article content from a web page, stripping
// navigation, ads and trailing social boilerplate.
//
// A page that cannot be fetched or yields no content produces an empty
// Extract, not an error; single bad pages must never abort a batch. The
// error return is reserved for context cancellation.
type Extractor interface {
	Extract(ctx context.Context, url string) (*Extract, error)
}
