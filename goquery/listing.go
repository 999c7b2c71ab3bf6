package goquery

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
)

// ListingItem is one article card discovered on a blog listing page.
type ListingItem struct {
	Title     string
	URL       string
	Author    string
	Published time.Time
}

// cardSelector matches article cards on a blog listing page.
const cardSelector = "article, .post, .blog-post, [class*=\"article\"], [class*=\"blog\"]"

var pageNumberRe = regexp.MustCompile(`page/(\d+)`)

// FindLastPage scans pagination links and returns the highest page number.
// Returns 1 when no pagination is present.
func FindLastPage(html string) int {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 1
	}

	last := 1
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if m := pageNumberRe.FindStringSubmatch(href); m != nil {
			if n, err := strconv.Atoi(m[1]); err == nil && n > last {
				last = n
			}
			return
		}
		text := strings.TrimSpace(s.Text())
		if n, err := strconv.Atoi(text); err == nil && n > last {
			last = n
		}
	})
	return last
}

// ParseListing extracts article cards from a listing page. Cards without a
// resolvable title and link are skipped; duplicates (the same link appearing
// in multiple wrapper elements) are collapsed, keeping the first occurrence.
func ParseListing(html string, baseURL string) []ListingItem {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	seen := make(map[string]bool)
	var items []ListingItem

	doc.Find(cardSelector).Each(func(_ int, card *goquery.Selection) {
		title := strings.TrimSpace(card.Find("h1, h2, h3, .title, .post-title, [class*=\"title\"]").First().Text())
		link := cardLink(card, base)
		if title == "" || link == "" {
			return
		}
		if seen[link] {
			return
		}
		seen[link] = true

		items = append(items, ListingItem{
			Title:     title,
			URL:       link,
			Author:    strings.TrimSpace(card.Find(".author, [class*=\"author\"], [rel=\"author\"]").First().Text()),
			Published: parseCardDate(card),
		})
	})

	return items
}

// cardLink finds the article link for a card: an anchor within the card
// pointing at the listing's own path, else the card's enclosing anchor.
func cardLink(card *goquery.Selection, base *url.URL) string {
	anchor := card.Find("a[href]").FilterFunction(func(_ int, s *goquery.Selection) bool {
		href, _ := s.Attr("href")
		return base == nil || strings.Contains(href, base.Path)
	}).First()
	if anchor.Length() == 0 {
		anchor = card.Closest("a[href]")
	}
	if anchor.Length() == 0 {
		return ""
	}

	href, _ := anchor.Attr("href")
	if href == "" {
		return ""
	}
	if base != nil {
		if ref, err := url.Parse(href); err == nil {
			return base.ResolveReference(ref).String()
		}
	}
	return href
}

// parseCardDate reads the card's date element. The zero time means no
// parseable date was found; callers substitute their own default.
func parseCardDate(card *goquery.Selection) time.Time {
	text := strings.TrimSpace(card.Find("time, .date, [class*=\"date\"], [class*=\"published\"]").First().Text())
	if text == "" {
		if dt, ok := card.Find("time[datetime]").First().Attr("datetime"); ok {
			text = dt
		}
	}
	if text == "" {
		return time.Time{}
	}
	t, err := dateparse.ParseAny(text)
	if err != nil {
		return time.Time{}
	}
	return t
}
