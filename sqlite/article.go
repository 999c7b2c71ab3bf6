package sqlite

import (
	"context"
	"database/sql"
	"encoding/hex"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/contentloop/enrich"
	"github.com/google/uuid"
)

// Compile-time interface verification.
var _ enrich.ArticleService = (*ArticleService)(nil)

// ArticleService implements enrich.ArticleService using SQLite.
type ArticleService struct {
	db *DB
}

// NewArticleService creates a new ArticleService.
func NewArticleService(db *DB) *ArticleService {
	return &ArticleService{db: db}
}

// hashContent computes xxHash of content and returns a hex string.
func hashContent(content string) string {
	h := xxhash.Sum64String(content)
	b := make([]byte, 8)
	for i := 0; i < 8; i++ {
		b[i] = byte(h >> (56 - 8*i))
	}
	return hex.EncodeToString(b)
}

const articleColumns = `id, slug, title, content, original_content, content_hash,
	source_url, author, published_at, is_updated, updated_at, reference_articles, created_at`

// CreateArticle creates a new article.
// A slug collision returns ECONFLICT so discovery can treat it as
// "already exists, skip".
func (s *ArticleService) CreateArticle(ctx context.Context, article *enrich.Article) error {
	if article.Slug == "" && article.Title != "" {
		article.Slug = enrich.Slugify(article.Title)
	}
	if err := article.Validate(); err != nil {
		return err
	}

	article.ID = uuid.New().String()
	article.CreatedAt = time.Now().UTC()
	article.ContentHash = hashContent(article.Content)
	if article.PublishedAt.IsZero() {
		article.PublishedAt = article.CreatedAt
	}
	if article.ReferenceArticles == nil {
		article.ReferenceArticles = []enrich.ReferenceArticle{}
	}

	refs, err := encodeRefs(article.ReferenceArticles)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO articles (id, slug, title, content, original_content, content_hash,
			source_url, author, published_at, is_updated, updated_at, reference_articles, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, article.ID, article.Slug, article.Title, article.Content, article.OriginalContent,
		article.ContentHash, article.SourceURL, article.Author,
		encodeTime(article.PublishedAt), encodeBool(article.IsUpdated),
		encodeNullableTime(article.UpdatedAt), refs, encodeTime(article.CreatedAt))

	if err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed") {
		return enrich.Errorf(enrich.ECONFLICT, "article with slug %q already exists", article.Slug)
	}
	return err
}

// FindArticleByID retrieves an article by ID.
func (s *ArticleService) FindArticleByID(ctx context.Context, id string) (*enrich.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE id = ?`, id)
	return scanArticle(row)
}

// FindArticleBySlug retrieves an article by slug.
func (s *ArticleService) FindArticleBySlug(ctx context.Context, slug string) (*enrich.Article, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+articleColumns+` FROM articles WHERE slug = ?`, slug)
	return scanArticle(row)
}

// FindArticles retrieves articles matching the filter.
func (s *ArticleService) FindArticles(ctx context.Context, filter enrich.ArticleFilter) ([]*enrich.Article, error) {
	var query strings.Builder
	var args []any

	query.WriteString(`SELECT ` + articleColumns + ` FROM articles WHERE 1=1`)

	if filter.ID != nil {
		query.WriteString(" AND id = ?")
		args = append(args, *filter.ID)
	}
	if filter.Slug != nil {
		query.WriteString(" AND slug = ?")
		args = append(args, *filter.Slug)
	}
	if filter.IsUpdated != nil {
		query.WriteString(" AND is_updated = ?")
		args = append(args, encodeBool(*filter.IsUpdated))
	}

	switch filter.SortBy {
	case enrich.SortByPublishedAt:
		query.WriteString(" ORDER BY published_at ASC")
	default:
		query.WriteString(" ORDER BY created_at DESC")
	}

	applyPagination(&query, &args, filter)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var articles []*enrich.Article
	for rows.Next() {
		article, err := scanArticleRows(rows)
		if err != nil {
			return nil, err
		}
		articles = append(articles, article)
	}

	return articles, rows.Err()
}

// UpdateArticle applies the non-nil fields of upd to an existing article.
func (s *ArticleService) UpdateArticle(ctx context.Context, id string, upd enrich.ArticleUpdate) (*enrich.Article, error) {
	article, err := s.FindArticleByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if upd.Title != nil {
		article.Title = *upd.Title
	}
	if upd.Content != nil {
		article.Content = *upd.Content
		article.ContentHash = hashContent(article.Content)
	}
	if upd.OriginalContent != nil {
		article.OriginalContent = *upd.OriginalContent
	}
	if upd.IsUpdated != nil {
		article.IsUpdated = *upd.IsUpdated
	}
	if upd.UpdatedAt != nil {
		t := upd.UpdatedAt.UTC()
		article.UpdatedAt = &t
	}
	if upd.ReferenceArticles != nil {
		article.ReferenceArticles = *upd.ReferenceArticles
	}

	if err := article.Validate(); err != nil {
		return nil, err
	}

	refs, err := encodeRefs(article.ReferenceArticles)
	if err != nil {
		return nil, err
	}

	_, err = s.db.ExecContext(ctx, `
		UPDATE articles
		SET title = ?, content = ?, original_content = ?, content_hash = ?,
			is_updated = ?, updated_at = ?, reference_articles = ?
		WHERE id = ?
	`, article.Title, article.Content, article.OriginalContent, article.ContentHash,
		encodeBool(article.IsUpdated), encodeNullableTime(article.UpdatedAt), refs, id)
	if err != nil {
		return nil, err
	}

	return article, nil
}

// DeleteArticle permanently removes an article.
func (s *ArticleService) DeleteArticle(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM articles WHERE id = ?", id)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return enrich.Errorf(enrich.ENOTFOUND, "article not found")
	}

	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanArticle(row *sql.Row) (*enrich.Article, error) {
	article, err := scanArticleFrom(row)
	if err == sql.ErrNoRows {
		return nil, enrich.Errorf(enrich.ENOTFOUND, "article not found")
	}
	return article, err
}

func scanArticleRows(rows *sql.Rows) (*enrich.Article, error) {
	return scanArticleFrom(rows)
}

func scanArticleFrom(sc scanner) (*enrich.Article, error) {
	var article enrich.Article
	var publishedAt, createdAt, refs string
	var updatedAt sql.NullString
	var isUpdated int

	if err := sc.Scan(&article.ID, &article.Slug, &article.Title, &article.Content,
		&article.OriginalContent, &article.ContentHash, &article.SourceURL, &article.Author,
		&publishedAt, &isUpdated, &updatedAt, &refs, &createdAt); err != nil {
		return nil, err
	}

	article.IsUpdated = isUpdated != 0

	var err error
	if article.PublishedAt, err = decodeTime(publishedAt, "published_at"); err != nil {
		return nil, err
	}
	if article.CreatedAt, err = decodeTime(createdAt, "created_at"); err != nil {
		return nil, err
	}
	if updatedAt.Valid {
		t, err := decodeTime(updatedAt.String, "updated_at")
		if err != nil {
			return nil, err
		}
		article.UpdatedAt = &t
	}

	if err := decodeRefs(refs, &article.ReferenceArticles); err != nil {
		return nil, err
	}

	return &article, nil
}
