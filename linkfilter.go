package enrich

import (
	"net/url"
	"regexp"
	"strings"
)

// denyPatterns reject URLs that are never usable as reference articles:
// social and video platforms, document downloads, search-engine plumbing,
// e-commerce, encyclopedia, government, education and app-store pages.
var denyPatterns = []*regexp.Regexp{
	regexp.MustCompile(`youtube\.com`),
	regexp.MustCompile(`youtu\.be`),
	regexp.MustCompile(`facebook\.com`),
	regexp.MustCompile(`twitter\.com`),
	regexp.MustCompile(`(^|\.)x\.com`),
	regexp.MustCompile(`linkedin\.com`),
	regexp.MustCompile(`instagram\.com`),
	regexp.MustCompile(`pinterest\.com`),
	regexp.MustCompile(`reddit\.com`),
	regexp.MustCompile(`(?i)\.pdf$`),
	regexp.MustCompile(`(?i)\.docx?$`),
	regexp.MustCompile(`google\.com/search`),
	regexp.MustCompile(`google\.com/url`),
	regexp.MustCompile(`amazon\.`),
	regexp.MustCompile(`wikipedia\.org`),
	regexp.MustCompile(`\.gov/`),
	regexp.MustCompile(`\.edu/$`),
	regexp.MustCompile(`play\.google\.com`),
	regexp.MustCompile(`apps\.apple\.com`),
	regexp.MustCompile(`chrome-extension`),
	regexp.MustCompile(`^mailto:`),
	regexp.MustCompile(`^tel:`),
}

// allowPatterns identify URLs that are almost certainly articles: blog-style
// path segments, date-based paths and well-known publishing domains.
var allowPatterns = []*regexp.Regexp{
	regexp.MustCompile(`/blog/`),
	regexp.MustCompile(`/article/`),
	regexp.MustCompile(`/post/`),
	regexp.MustCompile(`/news/`),
	regexp.MustCompile(`/guide/`),
	regexp.MustCompile(`/tutorial/`),
	regexp.MustCompile(`/how-to/`),
	regexp.MustCompile(`/\d{4}/\d{2}/`),
	regexp.MustCompile(`medium\.com`),
	regexp.MustCompile(`dev\.to`),
	regexp.MustCompile(`hashnode\.com`),
	regexp.MustCompile(`wordpress\.com`),
	regexp.MustCompile(`blogger\.com`),
	regexp.MustCompile(`\.blog`),
	regexp.MustCompile(`forbes\.com`),
	regexp.MustCompile(`techcrunch\.com`),
	regexp.MustCompile(`wired\.com`),
	regexp.MustCompile(`theverge\.com`),
	regexp.MustCompile(`mashable\.com`),
	regexp.MustCompile(`entrepreneur\.com`),
	regexp.MustCompile(`inc\.com`),
	regexp.MustCompile(`businessinsider\.com`),
	regexp.MustCompile(`hubspot\.com`),
	regexp.MustCompile(`marketingland\.com`),
	regexp.MustCompile(`searchengineland\.com`),
	regexp.MustCompile(`moz\.com`),
	regexp.MustCompile(`semrush\.com`),
	regexp.MustCompile(`ahrefs\.com`),
}

// binaryFileRe matches file extensions that indicate a download rather than
// an article page.
var binaryFileRe = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif|svg|ico|zip|rar|exe|dmg)$`)

// IsArticleLink reports whether a URL is likely a readable article or blog
// post. The filter is denylist-first and intentionally permissive: anything
// not denied and not obviously a file download is accepted, provided it is
// a well-formed http(s) URL of at least 20 characters.
//
// excludeHosts lists additional hosts to reject, typically the article's own
// source domain so an article never cites its own site.
func IsArticleLink(rawURL string, excludeHosts ...string) bool {
	if rawURL == "" {
		return false
	}

	for _, re := range denyPatterns {
		if re.MatchString(rawURL) {
			return false
		}
	}

	for _, host := range excludeHosts {
		if host != "" && strings.Contains(rawURL, host) {
			return false
		}
	}

	for _, re := range allowPatterns {
		if re.MatchString(rawURL) {
			return true
		}
	}

	// Default-accept: a heuristic, not a strict allowlist.
	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return false
	}
	if len(rawURL) < 20 {
		return false
	}
	if binaryFileRe.MatchString(rawURL) {
		return false
	}
	if _, err := url.Parse(rawURL); err != nil {
		return false
	}
	return true
}
