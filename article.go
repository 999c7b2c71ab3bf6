package enrich

import (
	"context"
	"time"
)

// ReferenceArticle identifies an external page that informed an enhancement.
// It is persisted as part of the article it informed.
type ReferenceArticle struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

// Article is the unit of work: an imported source article plus, after a
// successful enhancement, its rewritten version. OriginalContent is a
// one-time snapshot of the first content value and is never mutated by the
// enrichment flow once set.
type Article struct {
	ID              string `json:"id"`
	Slug            string `json:"slug"`
	Title           string `json:"title"`
	Content         string `json:"content"`
	OriginalContent string `json:"originalContent"`
	ContentHash     string `json:"contentHash"`

	SourceURL   string    `json:"sourceUrl"`
	Author      string    `json:"author,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`

	IsUpdated         bool               `json:"isUpdated"`
	UpdatedAt         *time.Time         `json:"updatedAt,omitempty"`
	ReferenceArticles []ReferenceArticle `json:"referenceArticles"`

	CreatedAt time.Time `json:"createdAt"`
}

// Validate returns an error if the article contains invalid fields.
func (a *Article) Validate() error {
	if a.Title == "" {
		return Errorf(EINVALID, "article title required")
	}
	if a.Content == "" {
		return Errorf(EINVALID, "article content required")
	}
	if a.SourceURL == "" {
		return Errorf(EINVALID, "article source URL required")
	}
	if a.Slug == "" {
		return Errorf(EINVALID, "article slug required")
	}
	return nil
}

// ArticleService represents a service for managing articles.
type ArticleService interface {
	// CreateArticle creates a new article.
	// Returns ECONFLICT if an article with the same slug already exists.
	CreateArticle(ctx context.Context, article *Article) error

	// FindArticleByID retrieves an article by ID.
	// Returns ENOTFOUND if the article does not exist.
	FindArticleByID(ctx context.Context, id string) (*Article, error)

	// FindArticleBySlug retrieves an article by slug.
	// Returns ENOTFOUND if the article does not exist.
	FindArticleBySlug(ctx context.Context, slug string) (*Article, error)

	// FindArticles retrieves articles matching the filter.
	FindArticles(ctx context.Context, filter ArticleFilter) ([]*Article, error)

	// UpdateArticle applies the non-nil fields of upd to an existing article.
	// Returns ENOTFOUND if the article does not exist.
	UpdateArticle(ctx context.Context, id string, upd ArticleUpdate) (*Article, error)

	// DeleteArticle permanently removes an article. This is an administrative
	// action; the enrichment pipeline never deletes.
	// Returns ENOTFOUND if the article does not exist.
	DeleteArticle(ctx context.Context, id string) error
}

// SortOrder represents the sort order for article queries.
type SortOrder string

// SortOrder constants for ArticleFilter.
const (
	// SortByPublishedAt orders oldest-published-first, the order in which
	// batch enhancement selects candidates.
	SortByPublishedAt SortOrder = "published_at"

	// SortByCreatedAt orders newest-imported-first, the listing default.
	SortByCreatedAt SortOrder = "created_at"
)

// ArticleFilter represents a filter for FindArticles.
type ArticleFilter struct {
	ID        *string `json:"id"`
	Slug      *string `json:"slug"`
	IsUpdated *bool   `json:"isUpdated"`

	Offset int `json:"offset"`
	Limit  int `json:"limit"`

	SortBy SortOrder `json:"sortBy"`
}

// ArticleUpdate represents fields that can be updated on an article.
// Only non-nil fields are applied.
type ArticleUpdate struct {
	Title             *string             `json:"title"`
	Content           *string             `json:"content"`
	OriginalContent   *string             `json:"originalContent"`
	IsUpdated         *bool               `json:"isUpdated"`
	UpdatedAt         *time.Time          `json:"updatedAt"`
	ReferenceArticles *[]ReferenceArticle `json:"referenceArticles"`
}
