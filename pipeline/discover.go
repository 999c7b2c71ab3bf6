package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"github.com/contentloop/enrich"
	"github.com/contentloop/enrich/bloom"
	"github.com/contentloop/enrich/goquery"
)

// DiscoverBatchSize is the number of articles imported per discovery run.
const DiscoverBatchSize = 5

// DiscoverResult summarizes one discovery run.
type DiscoverResult struct {
	Saved   int
	Skipped int
	Failed  int
}

// Discoverer imports the oldest articles from the source site's blog
// listing. It walks pagination to the last (oldest) page, parses the
// article cards, and creates articles for the ones not yet stored.
// Re-running is safe: known slugs are skipped.
type Discoverer struct {
	Articles  enrich.ArticleService
	Fetcher   enrich.Fetcher
	Extractor enrich.Extractor
	Queue     enrich.TaskQueue
	Logger    *slog.Logger

	// SourceURL is the blog listing page, e.g. https://example.com/blog/.
	SourceURL string

	// Seen short-circuits slug lookups for articles imported earlier in
	// this process's lifetime. Optional.
	Seen *bloom.Filter

	// Limiter paces fetches against the source domain. Optional.
	Limiter *DomainLimiter
}

// Schedule submits a discovery run to the task queue and returns
// immediately.
func (d *Discoverer) Schedule() error {
	return d.Queue.Submit(enrich.Task{
		Name: "discover",
		Run: func(ctx context.Context) {
			if _, err := d.Discover(ctx); err != nil {
				d.logger().Error("discovery failed", "err", err)
			}
		},
	})
}

// Discover runs one discovery pass and returns its counts.
func (d *Discoverer) Discover(ctx context.Context) (*DiscoverResult, error) {
	items, err := d.collectCandidates(ctx)
	if err != nil {
		return nil, err
	}

	// The listing shows newest first, so the oldest candidates sit at the
	// tail. Import them oldest first.
	if len(items) > DiscoverBatchSize {
		items = items[len(items)-DiscoverBatchSize:]
	}
	reverse(items)

	result := &DiscoverResult{}
	for _, item := range items {
		if ctx.Err() != nil {
			break
		}
		switch err := d.importArticle(ctx, item); {
		case err == nil:
			result.Saved++
		case enrich.ErrorCode(err) == enrich.ECONFLICT:
			result.Skipped++
		default:
			result.Failed++
			d.logger().Error("importing article failed", "url", item.URL, "err", err)
		}
	}

	d.logger().Info("discovery finished",
		"saved", result.Saved,
		"skipped", result.Skipped,
		"failed", result.Failed,
	)
	return result, nil
}

// collectCandidates fetches the last listing page and parses its article
// cards, widening to the previous page when the last one carries fewer than
// DiscoverBatchSize cards and falling back to page one when nothing parses.
func (d *Discoverer) collectCandidates(ctx context.Context) ([]goquery.ListingItem, error) {
	first, err := d.fetchPage(ctx, 1)
	if err != nil {
		return nil, err
	}
	lastPage := goquery.FindLastPage(first)

	var items []goquery.ListingItem
	if lastPage == 1 {
		items = goquery.ParseListing(first, d.SourceURL)
	} else {
		html, err := d.fetchPage(ctx, lastPage)
		if err != nil {
			return nil, err
		}
		items = goquery.ParseListing(html, d.SourceURL)

		if len(items) < DiscoverBatchSize && lastPage > 1 {
			html, err := d.fetchPage(ctx, lastPage-1)
			if err == nil {
				// Previous page holds newer articles; keep ordering
				// newest-to-oldest by prepending.
				items = append(goquery.ParseListing(html, d.SourceURL), items...)
			}
		}
		if len(items) == 0 {
			items = goquery.ParseListing(first, d.SourceURL)
		}
	}

	return items, nil
}

// importArticle creates one article from a listing card, scraping its full
// content first. Returns ECONFLICT when the article already exists.
func (d *Discoverer) importArticle(ctx context.Context, item goquery.ListingItem) error {
	slug := enrich.Slugify(item.Title)
	if slug == "" {
		return enrich.Errorf(enrich.EINVALID, "cannot derive slug from title %q", item.Title)
	}

	if d.Seen != nil && d.Seen.Test(slug) {
		if _, err := d.Articles.FindArticleBySlug(ctx, slug); err == nil {
			return enrich.Errorf(enrich.ECONFLICT, "article %q already imported", slug)
		}
	}

	if d.Limiter != nil {
		if err := d.Limiter.WaitURL(ctx, item.URL); err != nil {
			return err
		}
	}

	extract, err := d.Extractor.Extract(ctx, item.URL)
	if err != nil {
		return err
	}

	// The title stands in for pages whose content cannot be extracted so
	// the article still enters the enhancement backlog.
	content := extract.HTML
	if extract.IsEmpty() {
		content = item.Title
	}

	article := &enrich.Article{
		Slug:            slug,
		Title:           item.Title,
		Content:         content,
		OriginalContent: content,
		SourceURL:       item.URL,
		Author:          item.Author,
		PublishedAt:     item.Published,
	}

	if err := d.Articles.CreateArticle(ctx, article); err != nil {
		if d.Seen != nil && enrich.ErrorCode(err) == enrich.ECONFLICT {
			d.Seen.Add(slug)
		}
		return err
	}
	if d.Seen != nil {
		d.Seen.Add(slug)
	}

	d.logger().Info("article imported", "slug", slug, "url", item.URL)
	return nil
}

// fetchPage fetches the listing page with the given number.
func (d *Discoverer) fetchPage(ctx context.Context, page int) (string, error) {
	url := d.SourceURL
	if page > 1 {
		url = strings.TrimSuffix(url, "/") + "/page/" + strconv.Itoa(page) + "/"
	}

	if d.Limiter != nil {
		if err := d.Limiter.WaitURL(ctx, url); err != nil {
			return "", err
		}
	}
	return d.Fetcher.Fetch(ctx, url)
}

func (d *Discoverer) logger() *slog.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return slog.Default()
}

func reverse(items []goquery.ListingItem) {
	for i, j := 0, len(items)-1; i < j; i, j = i+1, j-1 {
		items[i], items[j] = items[j], items[i]
	}
}
