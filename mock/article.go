package mock

import (
	"context"

	"github.com/contentloop/enrich"
)

var _ enrich.ArticleService = (*ArticleService)(nil)

// ArticleService is a mock implementation of enrich.ArticleService.
type ArticleService struct {
	CreateArticleFn     func(ctx context.Context, article *enrich.Article) error
	FindArticleByIDFn   func(ctx context.Context, id string) (*enrich.Article, error)
	FindArticleBySlugFn func(ctx context.Context, slug string) (*enrich.Article, error)
	FindArticlesFn      func(ctx context.Context, filter enrich.ArticleFilter) ([]*enrich.Article, error)
	UpdateArticleFn     func(ctx context.Context, id string, upd enrich.ArticleUpdate) (*enrich.Article, error)
	DeleteArticleFn     func(ctx context.Context, id string) error
}

func (s *ArticleService) CreateArticle(ctx context.Context, article *enrich.Article) error {
	return s.CreateArticleFn(ctx, article)
}

func (s *ArticleService) FindArticleByID(ctx context.Context, id string) (*enrich.Article, error) {
	return s.FindArticleByIDFn(ctx, id)
}

func (s *ArticleService) FindArticleBySlug(ctx context.Context, slug string) (*enrich.Article, error) {
	return s.FindArticleBySlugFn(ctx, slug)
}

func (s *ArticleService) FindArticles(ctx context.Context, filter enrich.ArticleFilter) ([]*enrich.Article, error) {
	return s.FindArticlesFn(ctx, filter)
}

func (s *ArticleService) UpdateArticle(ctx context.Context, id string, upd enrich.ArticleUpdate) (*enrich.Article, error) {
	return s.UpdateArticleFn(ctx, id, upd)
}

func (s *ArticleService) DeleteArticle(ctx context.Context, id string) error {
	return s.DeleteArticleFn(ctx, id)
}
