// Package goquery implements content extraction over parsed document trees.
// It locates the main content region of an article page through ordered
// selector cascades, strips structural and trailing social boilerplate, and
// derives a structure signature describing the article's formatting.
package goquery

import (
	"context"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/contentloop/enrich"
)

// Ensure Extractor implements enrich.Extractor at compile time.
var _ enrich.Extractor = (*Extractor)(nil)

// titleSelectors is the ordered title cascade for rendered pages;
// first match wins.
var titleSelectors = []string{
	"h1.entry-title",
	"h1.post-title",
	"article h1",
	"h1",
	".article-title",
	"[class*=\"title\"]",
}

// contentSelectors is the ordered content-container cascade for rendered
// pages, from most to least specific.
var contentSelectors = []string{
	"article .entry-content",
	"article .post-content",
	"article .content",
	".entry-content",
	".post-content",
	"main article",
	"article",
	"[role=\"article\"]",
	".article-body",
	"[class*=\"content\"]",
	"[class*=\"post-body\"]",
}

// staticContentSelectors is the shorter cascade used on the static-fetch
// fallback path, where class soup from client-side frameworks is absent.
var staticContentSelectors = []string{
	"article .entry-content",
	"article .post-content",
	"article .content",
	".entry-content",
	".post-content",
	"main article",
	"article",
	"[role=\"article\"]",
}

// boilerplateSelector matches structural nodes removed unconditionally.
const boilerplateSelector = "script, style, nav, header, footer, .sidebar, .comments, .share, .author-box, .advertisement, .ads, iframe, .social-share"

// socialResidueSelector matches social icons and share widgets left behind
// after the trailing-boilerplate cut: siblings-of-siblings the document-order
// walk does not reach.
const socialResidueSelector = "img[src*=\"social\"], img[src*=\"icon\"], img[src*=\"facebook\"], img[src*=\"twitter\"], img[src*=\"linkedin\"], img[src*=\"instagram\"], img[src*=\"youtube\"], .social-icon, .share-icon, [class*=\"social\"], [class*=\"share\"], [class*=\"follow\"]"

// structureTags are the block-level tags that participate in the structure
// signature.
const structureTags = "p, h2, h3, h4, ul, ol, blockquote"

// minBlockTextLen filters out stray labels and other short fragments when
// building the structure signature.
const minBlockTextLen = 20

// Extractor extracts main article content from a URL. It renders the page
// through the primary fetcher (browser automation) and falls back to the
// static fetcher when rendering fails. Per-page failures are swallowed: the
// result is the empty Extract, never an error, so batch flows continue.
type Extractor struct {
	primary  enrich.Fetcher
	fallback enrich.Fetcher
}

// NewExtractor creates an Extractor. The primary fetcher should execute
// JavaScript; fallback may be nil when no static path is available.
func NewExtractor(primary, fallback enrich.Fetcher) *Extractor {
	return &Extractor{primary: primary, fallback: fallback}
}

// Extract fetches the page and returns its main content.
func (e *Extractor) Extract(ctx context.Context, url string) (*enrich.Extract, error) {
	html, err := e.primary.Fetch(ctx, url)
	rendered := err == nil && html != ""

	if !rendered {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		if e.fallback == nil {
			return &enrich.Extract{URL: url}, nil
		}
		html, err = e.fallback.Fetch(ctx, url)
		if err != nil || html == "" {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return nil, ctxErr
			}
			return &enrich.Extract{URL: url}, nil
		}
	}

	extract := ExtractFromHTML(html, rendered)
	extract.URL = url
	return extract, nil
}

// ExtractFromHTML applies the extraction rules to already-fetched HTML.
// rendered selects the selector cascade: the rendered set for browser output,
// the static set for plain HTTP responses.
func ExtractFromHTML(html string, rendered bool) *enrich.Extract {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return &enrich.Extract{}
	}

	content := findContent(doc, rendered)

	content.Find(boilerplateSelector).Remove()
	if cutTrailingBoilerplate(content) {
		content.Find(socialResidueSelector).Remove()
	}

	text := strings.TrimSpace(content.Text())
	innerHTML, _ := content.Html()

	return &enrich.Extract{
		Title:     findTitle(doc),
		Text:      text,
		HTML:      innerHTML,
		Structure: structureSignature(content),
	}
}

// findTitle walks the title cascade, falling back to the document title.
func findTitle(doc *goquery.Document) string {
	for _, sel := range titleSelectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			if title := strings.TrimSpace(s.Text()); title != "" {
				return title
			}
		}
	}
	return strings.TrimSpace(doc.Find("title").First().Text())
}

// findContent walks the content cascade, falling back to main, then body.
func findContent(doc *goquery.Document, rendered bool) *goquery.Selection {
	selectors := contentSelectors
	if !rendered {
		selectors = staticContentSelectors
	}
	for _, sel := range selectors {
		if s := doc.Find(sel).First(); s.Length() > 0 {
			return s
		}
	}
	if s := doc.Find("main").First(); s.Length() > 0 {
		return s
	}
	return doc.Find("body").First()
}

// followUsMatch reports whether the text marks the start of a trailing
// "follow us" social block.
func followUsMatch(text string) bool {
	t := strings.ToLower(text)
	if strings.Contains(t, "follow us here") || strings.Contains(t, "follow us!") {
		return true
	}
	if strings.Contains(t, "follow us") &&
		(strings.Contains(t, "social") || strings.Contains(t, "icon") || strings.Contains(t, "here")) {
		return true
	}
	return false
}

// cutTrailingBoilerplate scans descendants in document order for a
// "follow us" marker. On the first match it deletes that node, every
// following sibling, and the following siblings of its parent. The parent
// pass catches footer-adjacent social blocks sitting outside the matched
// node's subtree. Returns true if a cut was made.
func cutTrailingBoilerplate(content *goquery.Selection) bool {
	cut := false
	content.Find("*").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if !followUsMatch(s.Text()) {
			return true
		}
		// An ancestor wrapper matches whenever a descendant does; keep
		// walking until the tightest matching node so the sibling cut
		// removes only what follows the marker.
		if hasMatchingChild(s) {
			return true
		}
		s.NextAll().Remove()
		s.Parent().NextAll().Remove()
		s.Remove()
		cut = true
		return false
	})
	return cut
}

func hasMatchingChild(s *goquery.Selection) bool {
	found := false
	s.Children().EachWithBreak(func(_ int, c *goquery.Selection) bool {
		if followUsMatch(c.Text()) {
			found = true
			return false
		}
		return true
	})
	return found
}

// structureSignature returns the comma-joined tag sequence of retained
// block-level nodes carrying more than minBlockTextLen characters of text.
func structureSignature(content *goquery.Selection) string {
	var tags []string
	content.Find(structureTags).Each(func(_ int, s *goquery.Selection) {
		if len(strings.TrimSpace(s.Text())) > minBlockTextLen {
			tags = append(tags, goquery.NodeName(s))
		}
	})
	return strings.Join(tags, ", ")
}
