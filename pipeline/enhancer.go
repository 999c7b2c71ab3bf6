package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/contentloop/enrich"
)

// BatchSize is the maximum number of articles scheduled by one batch run.
const BatchSize = 10

// DefaultArticleDelay is the pause between consecutive articles in a batch
// run, keeping the search and rewrite backends under their rate limits.
const DefaultArticleDelay = 5 * time.Second

// Enhancer runs the single-article enhancement flow and schedules batch
// runs on the task queue.
type Enhancer struct {
	Articles  enrich.ArticleService
	Searcher  enrich.Searcher
	Extractor enrich.Extractor
	Rewriter  enrich.Rewriter
	Queue     enrich.TaskQueue
	Logger    *slog.Logger

	// Limiter paces reference-page fetches per domain. Optional.
	Limiter *DomainLimiter

	// Sanitizer cleans generated HTML before it is persisted. Optional;
	// when nil the rewrite output is stored as returned.
	Sanitizer *Sanitizer

	// Citations appends a references section to rewritten content when the
	// model did not produce one itself. Typically gemini.AddCitations.
	// Optional.
	Citations func(content string, refs []enrich.ReferenceArticle) string

	// ArticleDelay overrides the inter-article pause in batch runs.
	// Zero means DefaultArticleDelay.
	ArticleDelay time.Duration

	// Sleep is replaced in tests. Nil means a real context-aware sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// EnhanceArticle runs the full enhancement flow for one article: search for
// reference articles, extract their content, rewrite through the model, and
// persist the result. The returned bool reports whether references informed
// the rewrite.
//
// A rewrite failure leaves the article untouched. Search and extraction
// failures degrade: the rewrite proceeds with fewer or no references.
func (e *Enhancer) EnhanceArticle(ctx context.Context, id string) (*enrich.Article, bool, error) {
	article, err := e.Articles.FindArticleByID(ctx, id)
	if err != nil {
		return nil, false, err
	}

	results := e.search(ctx, article)
	refs, cited := e.extractReferences(ctx, results)
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}

	source := article.OriginalContent
	if source == "" {
		source = article.Content
	}

	rewritten, err := e.Rewriter.Rewrite(ctx, enrich.RewriteRequest{
		Title:      article.Title,
		Content:    source,
		References: refs,
	})
	if err != nil {
		return nil, false, err
	}

	rewritten = e.addCitations(rewritten, cited)
	if e.Sanitizer != nil {
		rewritten = e.Sanitizer.Sanitize(rewritten)
	}

	now := time.Now().UTC()
	updatedTrue := true
	upd := enrich.ArticleUpdate{
		Content:   &rewritten,
		IsUpdated: &updatedTrue,
		UpdatedAt: &now,
	}
	// One-time snapshot: the first enhancement preserves what the content
	// was before any rewrite. Never overwritten afterwards.
	if article.OriginalContent == "" {
		upd.OriginalContent = &article.Content
	}
	if len(cited) > 0 {
		upd.ReferenceArticles = &cited
	}

	updated, err := e.Articles.UpdateArticle(ctx, id, upd)
	if err != nil {
		return nil, false, err
	}

	e.logger().Info("article enhanced",
		"id", id,
		"slug", updated.Slug,
		"references", len(cited),
	)
	return updated, len(cited) > 0, nil
}

// EnhanceBatch selects up to BatchSize unenhanced articles, oldest published
// first, and schedules one background task that processes them sequentially.
// It returns the number of articles scheduled without waiting for any of
// them to run.
func (e *Enhancer) EnhanceBatch(ctx context.Context) (int, error) {
	notUpdated := false
	articles, err := e.Articles.FindArticles(ctx, enrich.ArticleFilter{
		IsUpdated: &notUpdated,
		Limit:     BatchSize,
		SortBy:    enrich.SortByPublishedAt,
	})
	if err != nil {
		return 0, err
	}
	if len(articles) == 0 {
		return 0, nil
	}

	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}

	err = e.Queue.Submit(enrich.Task{
		Name: "enhance-batch",
		Run: func(ctx context.Context) {
			e.runBatch(ctx, ids)
		},
	})
	if err != nil {
		return 0, err
	}
	return len(ids), nil
}

// EnhanceAll selects the same candidates as EnhanceBatch but processes them
// in the calling goroutine, bypassing the queue. Used by the CLI, where the
// caller wants to wait for the run to finish.
func (e *Enhancer) EnhanceAll(ctx context.Context) (int, error) {
	notUpdated := false
	articles, err := e.Articles.FindArticles(ctx, enrich.ArticleFilter{
		IsUpdated: &notUpdated,
		Limit:     BatchSize,
		SortBy:    enrich.SortByPublishedAt,
	})
	if err != nil {
		return 0, err
	}
	if len(articles) == 0 {
		return 0, nil
	}

	ids := make([]string, len(articles))
	for i, a := range articles {
		ids[i] = a.ID
	}
	e.runBatch(ctx, ids)
	return len(ids), nil
}

// ScheduleArticle submits a single-article enhancement to the task queue
// and returns immediately. The caller is responsible for checking the
// article exists first; a scheduled run against a deleted article just logs
// and finishes.
func (e *Enhancer) ScheduleArticle(id string) error {
	return e.Queue.Submit(enrich.Task{
		Name: "enhance-article",
		Run: func(ctx context.Context) {
			if _, _, err := e.EnhanceArticle(ctx, id); err != nil {
				e.logger().Error("scheduled enhancement failed", "id", id, "err", err)
			}
		},
	})
}

// runBatch enhances the given articles one at a time. Per-article failures
// are logged and skipped; the batch always moves on.
func (e *Enhancer) runBatch(ctx context.Context, ids []string) {
	var enhanced, failed int
	for i, id := range ids {
		if ctx.Err() != nil {
			break
		}
		if _, _, err := e.EnhanceArticle(ctx, id); err != nil {
			failed++
			e.logger().Error("batch enhancement failed", "id", id, "err", err)
		} else {
			enhanced++
		}

		if i < len(ids)-1 {
			if err := e.sleep(ctx, e.articleDelay()); err != nil {
				break
			}
		}
	}
	e.logger().Info("batch finished",
		"enhanced", enhanced,
		"failed", failed,
		"total", len(ids),
	)
}

// search finds reference candidates for the article's title, retrying once
// with a shortened topic when the full title yields nothing. Search failures
// degrade to no references.
func (e *Enhancer) search(ctx context.Context, article *enrich.Article) []enrich.SearchResult {
	results, err := e.Searcher.Search(ctx, article.Title)
	if err != nil {
		e.logger().Warn("reference search failed", "slug", article.Slug, "err", err)
		return nil
	}
	if len(results) > 0 {
		return results
	}

	short, ok := enrich.ShortenTopic(article.Title)
	if !ok {
		return nil
	}
	results, err = e.Searcher.Search(ctx, short)
	if err != nil {
		e.logger().Warn("shortened reference search failed", "slug", article.Slug, "err", err)
		return nil
	}
	return results
}

// extractReferences pulls content from up to MaxReferences search results.
// Results whose pages yield nothing are dropped. The second return value
// lists the citations for the references actually used, in order.
func (e *Enhancer) extractReferences(ctx context.Context, results []enrich.SearchResult) ([]*enrich.Extract, []enrich.ReferenceArticle) {
	var refs []*enrich.Extract
	var cited []enrich.ReferenceArticle

	for _, result := range results {
		if len(refs) == enrich.MaxReferences {
			break
		}
		if ctx.Err() != nil {
			break
		}
		if e.Limiter != nil {
			if err := e.Limiter.WaitURL(ctx, result.URL); err != nil {
				break
			}
		}

		extract, err := e.Extractor.Extract(ctx, result.URL)
		if err != nil {
			break // extraction only errors on context cancellation
		}
		if extract.IsEmpty() {
			e.logger().Warn("reference yielded no content", "url", result.URL)
			continue
		}
		if extract.Title == "" {
			extract.Title = result.Title
		}

		refs = append(refs, extract)
		cited = append(cited, enrich.ReferenceArticle{URL: result.URL, Title: result.Title})
	}

	return refs, cited
}

func (e *Enhancer) addCitations(content string, cited []enrich.ReferenceArticle) string {
	if e.Citations == nil {
		return content
	}
	return e.Citations(content, cited)
}

func (e *Enhancer) articleDelay() time.Duration {
	if e.ArticleDelay > 0 {
		return e.ArticleDelay
	}
	return DefaultArticleDelay
}

func (e *Enhancer) sleep(ctx context.Context, d time.Duration) error {
	if e.Sleep != nil {
		return e.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Enhancer) logger() *slog.Logger {
	if e.Logger != nil {
		return e.Logger
	}
	return slog.Default()
}
