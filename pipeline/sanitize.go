package pipeline

import "github.com/microcosm-cc/bluemonday"

// Sanitizer strips unsafe markup from generated HTML before it is persisted.
// Model output is treated as untrusted input: prompts forbid scripts and
// inline handlers, but nothing guarantees the model complies.
type Sanitizer struct {
	policy *bluemonday.Policy
}

// NewSanitizer creates a Sanitizer. The policy is bluemonday's UGC set,
// which keeps article markup (headings, paragraphs, lists, links) and drops
// scripts, styles and event handlers. target and rel are allowed on links
// so citation anchors keep their new-tab attributes.
func NewSanitizer() *Sanitizer {
	policy := bluemonday.UGCPolicy()
	policy.AllowAttrs("target", "rel").OnElements("a")
	return &Sanitizer{policy: policy}
}

// Sanitize returns the HTML with disallowed markup removed.
func (s *Sanitizer) Sanitize(html string) string {
	return s.policy.Sanitize(html)
}
