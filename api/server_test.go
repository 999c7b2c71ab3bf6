package api_test

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/contentloop/enrich"
	"github.com/contentloop/enrich/api"
	"github.com/contentloop/enrich/mock"
)

type mockEnhancer struct {
	ScheduleArticleFn func(id string) error
	EnhanceBatchFn    func(ctx context.Context) (int, error)
}

func (e *mockEnhancer) ScheduleArticle(id string) error {
	return e.ScheduleArticleFn(id)
}

func (e *mockEnhancer) EnhanceBatch(ctx context.Context) (int, error) {
	return e.EnhanceBatchFn(ctx)
}

type mockDiscoverer struct {
	ScheduleFn func() error
}

func (d *mockDiscoverer) Schedule() error {
	return d.ScheduleFn()
}

func newTestServer(articles *mock.ArticleService, enhancer *mockEnhancer, discoverer *mockDiscoverer) *api.Server {
	return api.NewServer(articles, enhancer, discoverer, slog.New(slog.DiscardHandler))
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func storedArticle() *enrich.Article {
	published := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	return &enrich.Article{
		ID:          "art-1",
		Slug:        "how-chatbots-improve-support",
		Title:       "How Chatbots Improve Support",
		Content:     "<p>Body.</p>",
		SourceURL:   "https://myblog.example.com/blog/how-chatbots-improve-support",
		Author:      "Jordan Lee",
		PublishedAt: published,
	}
}

func TestServer_ListArticles(t *testing.T) {
	t.Parallel()

	t.Run("returns envelope with count", func(t *testing.T) {
		t.Parallel()

		var gotFilter enrich.ArticleFilter
		articles := &mock.ArticleService{
			FindArticlesFn: func(ctx context.Context, filter enrich.ArticleFilter) ([]*enrich.Article, error) {
				gotFilter = filter
				return []*enrich.Article{storedArticle()}, nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, float64(1), body["count"])
		assert.Equal(t, api.DefaultListLimit, gotFilter.Limit)
		assert.Equal(t, enrich.SortByCreatedAt, gotFilter.SortBy)
		assert.Nil(t, gotFilter.IsUpdated)
	})

	t.Run("applies limit, offset and updated params", func(t *testing.T) {
		t.Parallel()

		var gotFilter enrich.ArticleFilter
		articles := &mock.ArticleService{
			FindArticlesFn: func(ctx context.Context, filter enrich.ArticleFilter) ([]*enrich.Article, error) {
				gotFilter = filter
				return nil, nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles?limit=5&offset=10&updated=true", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 5, gotFilter.Limit)
		assert.Equal(t, 10, gotFilter.Offset)
		require.NotNil(t, gotFilter.IsUpdated)
		assert.True(t, *gotFilter.IsUpdated)
	})

	t.Run("caps oversized limit", func(t *testing.T) {
		t.Parallel()

		var gotFilter enrich.ArticleFilter
		articles := &mock.ArticleService{
			FindArticlesFn: func(ctx context.Context, filter enrich.ArticleFilter) ([]*enrich.Article, error) {
				gotFilter = filter
				return nil, nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles?limit=500", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, api.MaxListLimit, gotFilter.Limit)
	})

	t.Run("rejects malformed limit", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(&mock.ArticleService{}, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles?limit=lots", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
	})
}

func TestServer_CreateArticle(t *testing.T) {
	t.Parallel()

	t.Run("creates with derived slug", func(t *testing.T) {
		t.Parallel()

		var created *enrich.Article
		articles := &mock.ArticleService{
			CreateArticleFn: func(ctx context.Context, article *enrich.Article) error {
				created = article
				article.ID = "art-9"
				return nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		payload := `{"title":"Customer Service Automation!","content":"<p>Body.</p>","sourceUrl":"https://myblog.example.com/blog/x","author":"Jordan Lee"}`
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(payload)))

		require.Equal(t, http.StatusCreated, rec.Code)
		require.NotNil(t, created)
		assert.Equal(t, "customer-service-automation", created.Slug)
		assert.Equal(t, "Jordan Lee", created.Author)

		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		data := body["data"].(map[string]any)
		assert.Equal(t, "art-9", data["id"])
	})

	t.Run("duplicate slug returns 409", func(t *testing.T) {
		t.Parallel()

		articles := &mock.ArticleService{
			CreateArticleFn: func(ctx context.Context, article *enrich.Article) error {
				return enrich.Errorf(enrich.ECONFLICT, "article with slug %q already exists", article.Slug)
			},
		}
		srv := newTestServer(articles, nil, nil)

		payload := `{"title":"Dup","content":"<p>Body.</p>","sourceUrl":"https://myblog.example.com/blog/dup"}`
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader(payload)))

		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(&mock.ArticleService{}, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles", strings.NewReader("{not json")))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_GetArticle(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()

		articles := &mock.ArticleService{
			FindArticleByIDFn: func(ctx context.Context, id string) (*enrich.Article, error) {
				require.Equal(t, "art-1", id)
				return storedArticle(), nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/art-1", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		body := decodeBody(t, rec)
		data := body["data"].(map[string]any)
		assert.Equal(t, "how-chatbots-improve-support", data["slug"])
	})

	t.Run("missing returns 404", func(t *testing.T) {
		t.Parallel()

		articles := &mock.ArticleService{
			FindArticleByIDFn: func(ctx context.Context, id string) (*enrich.Article, error) {
				return nil, enrich.Errorf(enrich.ENOTFOUND, "article not found")
			},
		}
		srv := newTestServer(articles, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/nope", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "article not found", body["message"])
	})
}

func TestServer_UpdateArticle(t *testing.T) {
	t.Parallel()

	t.Run("content edit snapshots original and marks updated", func(t *testing.T) {
		t.Parallel()

		var gotUpd enrich.ArticleUpdate
		articles := &mock.ArticleService{
			FindArticleByIDFn: func(ctx context.Context, id string) (*enrich.Article, error) {
				return storedArticle(), nil
			},
			UpdateArticleFn: func(ctx context.Context, id string, upd enrich.ArticleUpdate) (*enrich.Article, error) {
				gotUpd = upd
				return storedArticle(), nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		payload := `{"content":"<p>Edited.</p>"}`
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/articles/art-1", strings.NewReader(payload)))

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotUpd.Content)
		assert.Equal(t, "<p>Edited.</p>", *gotUpd.Content)
		require.NotNil(t, gotUpd.OriginalContent)
		assert.Equal(t, "<p>Body.</p>", *gotUpd.OriginalContent)
		require.NotNil(t, gotUpd.IsUpdated)
		assert.True(t, *gotUpd.IsUpdated)
		assert.NotNil(t, gotUpd.UpdatedAt)
	})

	t.Run("existing snapshot is preserved", func(t *testing.T) {
		t.Parallel()

		var gotUpd enrich.ArticleUpdate
		articles := &mock.ArticleService{
			FindArticleByIDFn: func(ctx context.Context, id string) (*enrich.Article, error) {
				article := storedArticle()
				article.OriginalContent = "<p>First version.</p>"
				return article, nil
			},
			UpdateArticleFn: func(ctx context.Context, id string, upd enrich.ArticleUpdate) (*enrich.Article, error) {
				gotUpd = upd
				return storedArticle(), nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		payload := `{"content":"<p>Edited again.</p>"}`
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/articles/art-1", strings.NewReader(payload)))

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Nil(t, gotUpd.OriginalContent)
	})

	t.Run("reference-only edit does not mark updated", func(t *testing.T) {
		t.Parallel()

		var gotUpd enrich.ArticleUpdate
		articles := &mock.ArticleService{
			UpdateArticleFn: func(ctx context.Context, id string, upd enrich.ArticleUpdate) (*enrich.Article, error) {
				gotUpd = upd
				return storedArticle(), nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		payload := `{"referenceArticles":[{"url":"https://medium.com/ref","title":"Ref"}]}`
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/articles/art-1", strings.NewReader(payload)))

		require.Equal(t, http.StatusOK, rec.Code)
		require.NotNil(t, gotUpd.ReferenceArticles)
		assert.Len(t, *gotUpd.ReferenceArticles, 1)
		assert.Nil(t, gotUpd.IsUpdated)
		assert.Nil(t, gotUpd.Content)
	})

	t.Run("empty body returns 400", func(t *testing.T) {
		t.Parallel()

		srv := newTestServer(&mock.ArticleService{}, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/api/articles/art-1", strings.NewReader(`{}`)))

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestServer_DeleteArticle(t *testing.T) {
	t.Parallel()

	var deletedID string
	articles := &mock.ArticleService{
		DeleteArticleFn: func(ctx context.Context, id string) error {
			deletedID = id
			return nil
		},
	}
	srv := newTestServer(articles, nil, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/api/articles/art-1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "art-1", deletedID)
	body := decodeBody(t, rec)
	assert.Equal(t, "Article deleted successfully", body["message"])
}

func TestServer_OriginalView(t *testing.T) {
	t.Parallel()

	t.Run("serves snapshot when enhanced", func(t *testing.T) {
		t.Parallel()

		articles := &mock.ArticleService{
			FindArticleByIDFn: func(ctx context.Context, id string) (*enrich.Article, error) {
				article := storedArticle()
				article.OriginalContent = "<p>Before enhancement.</p>"
				article.Content = "<p>After enhancement.</p>"
				return article, nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/art-1/original", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, "<p>Before enhancement.</p>", data["content"])
		assert.Equal(t, "Jordan Lee", data["author"])
		assert.Equal(t, storedArticle().SourceURL, data["sourceUrl"])
	})

	t.Run("falls back to content when never enhanced", func(t *testing.T) {
		t.Parallel()

		articles := &mock.ArticleService{
			FindArticleByIDFn: func(ctx context.Context, id string) (*enrich.Article, error) {
				return storedArticle(), nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/art-1/original", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, "<p>Body.</p>", data["content"])
	})
}

func TestServer_UpdatedView(t *testing.T) {
	t.Parallel()

	t.Run("serves enhanced content with references", func(t *testing.T) {
		t.Parallel()

		updatedAt := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
		articles := &mock.ArticleService{
			FindArticleByIDFn: func(ctx context.Context, id string) (*enrich.Article, error) {
				article := storedArticle()
				article.IsUpdated = true
				article.UpdatedAt = &updatedAt
				article.Content = "<h2>Enhanced</h2>"
				article.ReferenceArticles = []enrich.ReferenceArticle{
					{URL: "https://medium.com/ref", Title: "Ref"},
				}
				return article, nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/art-1/updated", nil))

		require.Equal(t, http.StatusOK, rec.Code)
		data := decodeBody(t, rec)["data"].(map[string]any)
		assert.Equal(t, "<h2>Enhanced</h2>", data["content"])
		refs := data["referenceArticles"].([]any)
		require.Len(t, refs, 1)
		assert.Equal(t, "https://medium.com/ref", refs[0].(map[string]any)["url"])
	})

	t.Run("not yet enhanced returns 400", func(t *testing.T) {
		t.Parallel()

		articles := &mock.ArticleService{
			FindArticleByIDFn: func(ctx context.Context, id string) (*enrich.Article, error) {
				return storedArticle(), nil
			},
		}
		srv := newTestServer(articles, nil, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/articles/art-1/updated", nil))

		require.Equal(t, http.StatusBadRequest, rec.Code)
		body := decodeBody(t, rec)
		assert.Equal(t, false, body["success"])
		assert.Equal(t, "Article has not been updated yet", body["message"])
	})
}

func TestServer_Scrape(t *testing.T) {
	t.Parallel()

	t.Run("schedules and returns 202", func(t *testing.T) {
		t.Parallel()

		scheduled := false
		discoverer := &mockDiscoverer{
			ScheduleFn: func() error {
				scheduled = true
				return nil
			},
		}
		srv := newTestServer(&mock.ArticleService{}, nil, discoverer)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles/scrape", nil))

		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.True(t, scheduled)
		body := decodeBody(t, rec)
		assert.Equal(t, true, body["success"])
		assert.Equal(t, "started", body["status"])
	})

	t.Run("closed queue returns 503", func(t *testing.T) {
		t.Parallel()

		discoverer := &mockDiscoverer{
			ScheduleFn: func() error {
				return enrich.Errorf(enrich.EUNAVAILABLE, "task queue closed")
			},
		}
		srv := newTestServer(&mock.ArticleService{}, nil, discoverer)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles/scrape", nil))

		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})
}

func TestServer_EnhanceArticle(t *testing.T) {
	t.Parallel()

	t.Run("checks existence then schedules", func(t *testing.T) {
		t.Parallel()

		var scheduledID string
		articles := &mock.ArticleService{
			FindArticleByIDFn: func(ctx context.Context, id string) (*enrich.Article, error) {
				return storedArticle(), nil
			},
		}
		enhancer := &mockEnhancer{
			ScheduleArticleFn: func(id string) error {
				scheduledID = id
				return nil
			},
		}
		srv := newTestServer(articles, enhancer, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles/art-1/enhance", nil))

		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, "art-1", scheduledID)
		body := decodeBody(t, rec)
		assert.Equal(t, "started", body["status"])
		assert.Equal(t, "art-1", body["id"])
	})

	t.Run("missing article is not scheduled", func(t *testing.T) {
		t.Parallel()

		articles := &mock.ArticleService{
			FindArticleByIDFn: func(ctx context.Context, id string) (*enrich.Article, error) {
				return nil, enrich.Errorf(enrich.ENOTFOUND, "article not found")
			},
		}
		enhancer := &mockEnhancer{
			ScheduleArticleFn: func(id string) error {
				t.Fatal("unexpected schedule")
				return nil
			},
		}
		srv := newTestServer(articles, enhancer, nil)

		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles/nope/enhance", nil))

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestServer_EnhanceAll(t *testing.T) {
	t.Parallel()

	enhancer := &mockEnhancer{
		EnhanceBatchFn: func(ctx context.Context) (int, error) {
			return 7, nil
		},
	}
	srv := newTestServer(&mock.ArticleService{}, enhancer, nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/articles/enhance/all", nil))

	require.Equal(t, http.StatusAccepted, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, float64(7), body["scheduled"])
}
