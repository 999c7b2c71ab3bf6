// Package enrich provides a content enrichment pipeline for published
// articles. It imports articles from a source blog, finds top-ranking
// reference articles on the same topic, and produces an improved rewrite
// with an external generative model while preserving the original text
// for comparison.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., sqlite/, rod/, gemini/).
package enrich
