// Package api exposes the article store and the enrichment pipeline over
// HTTP. Responses use a {"success": bool, ...} envelope; pipeline triggers
// (scrape, enhance) return 202 immediately and run on the background queue.
package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/contentloop/enrich"
)

// DefaultListLimit bounds article listings when no limit is given.
const DefaultListLimit = 20

// MaxListLimit caps the per-request listing size.
const MaxListLimit = 100

// Enhancer schedules enhancement work on the background queue.
// Implemented by pipeline.Enhancer.
type Enhancer interface {
	// ScheduleArticle submits a single-article enhancement and returns
	// immediately.
	ScheduleArticle(id string) error

	// EnhanceBatch schedules a batch run and returns the number of articles
	// it will process.
	EnhanceBatch(ctx context.Context) (int, error)
}

// Discoverer schedules a discovery run on the background queue.
// Implemented by pipeline.Discoverer.
type Discoverer interface {
	Schedule() error
}

// Server handles the article HTTP API.
type Server struct {
	articles   enrich.ArticleService
	enhancer   Enhancer
	discoverer Discoverer
	logger     *slog.Logger

	router chi.Router
}

// NewServer creates a Server with its routes registered.
func NewServer(articles enrich.ArticleService, enhancer Enhancer, discoverer Discoverer, logger *slog.Logger) *Server {
	s := &Server{
		articles:   articles,
		enhancer:   enhancer,
		discoverer: discoverer,
		logger:     logger,
	}

	r := chi.NewRouter()
	r.Route("/api/articles", func(r chi.Router) {
		r.Get("/", s.handleListArticles)
		r.Post("/", s.handleCreateArticle)
		r.Post("/scrape", s.handleScrape)
		r.Post("/enhance/all", s.handleEnhanceAll)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.handleGetArticle)
			r.Put("/", s.handleUpdateArticle)
			r.Delete("/", s.handleDeleteArticle)
			r.Get("/original", s.handleOriginalView)
			r.Get("/updated", s.handleUpdatedView)
			r.Post("/enhance", s.handleEnhanceArticle)
		})
	})
	s.router = r

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// handleListArticles lists articles, newest imported first.
// GET /api/articles?limit=&offset=&updated=
func (s *Server) handleListArticles(w http.ResponseWriter, r *http.Request) {
	filter := enrich.ArticleFilter{
		Limit:  DefaultListLimit,
		SortBy: enrich.SortByCreatedAt,
	}

	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			s.error(w, r, enrich.Errorf(enrich.EINVALID, "invalid limit %q", v))
			return
		}
		filter.Limit = min(n, MaxListLimit)
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			s.error(w, r, enrich.Errorf(enrich.EINVALID, "invalid offset %q", v))
			return
		}
		filter.Offset = n
	}
	if v := q.Get("updated"); v != "" {
		updated, err := strconv.ParseBool(v)
		if err != nil {
			s.error(w, r, enrich.Errorf(enrich.EINVALID, "invalid updated %q", v))
			return
		}
		filter.IsUpdated = &updated
	}

	articles, err := s.articles.FindArticles(r.Context(), filter)
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"count":   len(articles),
		"data":    articles,
	})
}

// createArticleRequest is the body of POST /api/articles.
type createArticleRequest struct {
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	SourceURL   string     `json:"sourceUrl"`
	Author      string     `json:"author"`
	PublishedAt *time.Time `json:"publishedAt"`
}

// handleCreateArticle creates an article with a slug derived from its title.
// POST /api/articles
func (s *Server) handleCreateArticle(w http.ResponseWriter, r *http.Request) {
	var req createArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, r, enrich.Errorf(enrich.EINVALID, "invalid request body"))
		return
	}

	article := &enrich.Article{
		Slug:      enrich.Slugify(req.Title),
		Title:     req.Title,
		Content:   req.Content,
		SourceURL: req.SourceURL,
		Author:    req.Author,
	}
	if req.PublishedAt != nil {
		article.PublishedAt = *req.PublishedAt
	}

	if err := s.articles.CreateArticle(r.Context(), article); err != nil {
		s.error(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusCreated, map[string]any{
		"success": true,
		"data":    article,
	})
}

// handleGetArticle fetches a single article by ID.
// GET /api/articles/{id}
func (s *Server) handleGetArticle(w http.ResponseWriter, r *http.Request) {
	article, err := s.articles.FindArticleByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    article,
	})
}

// updateArticleRequest is the body of PUT /api/articles/{id}.
type updateArticleRequest struct {
	Content           *string                    `json:"content"`
	ReferenceArticles *[]enrich.ReferenceArticle `json:"referenceArticles"`
}

// handleUpdateArticle applies a manual edit. A content change marks the
// article updated and, on the first edit, snapshots the pre-edit content the
// same way the enhancement flow does.
// PUT /api/articles/{id}
func (s *Server) handleUpdateArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req updateArticleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.error(w, r, enrich.Errorf(enrich.EINVALID, "invalid request body"))
		return
	}
	if req.Content == nil && req.ReferenceArticles == nil {
		s.error(w, r, enrich.Errorf(enrich.EINVALID, "nothing to update"))
		return
	}

	upd := enrich.ArticleUpdate{
		Content:           req.Content,
		ReferenceArticles: req.ReferenceArticles,
	}
	if req.Content != nil {
		existing, err := s.articles.FindArticleByID(r.Context(), id)
		if err != nil {
			s.error(w, r, err)
			return
		}
		if existing.OriginalContent == "" {
			upd.OriginalContent = &existing.Content
		}

		now := time.Now().UTC()
		updated := true
		upd.IsUpdated = &updated
		upd.UpdatedAt = &now
	}

	article, err := s.articles.UpdateArticle(r.Context(), id, upd)
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    article,
	})
}

// handleDeleteArticle permanently removes an article.
// DELETE /api/articles/{id}
func (s *Server) handleDeleteArticle(w http.ResponseWriter, r *http.Request) {
	if err := s.articles.DeleteArticle(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.error(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"message": "Article deleted successfully",
	})
}

// handleOriginalView returns the article as it was before any enhancement.
// Articles that have never been enhanced serve their current content.
// GET /api/articles/{id}/original
func (s *Server) handleOriginalView(w http.ResponseWriter, r *http.Request) {
	article, err := s.articles.FindArticleByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.error(w, r, err)
		return
	}

	content := article.OriginalContent
	if content == "" {
		content = article.Content
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"title":       article.Title,
			"content":     content,
			"publishedAt": article.PublishedAt,
			"author":      article.Author,
			"sourceUrl":   article.SourceURL,
		},
	})
}

// handleUpdatedView returns the enhanced version of an article.
// GET /api/articles/{id}/updated
func (s *Server) handleUpdatedView(w http.ResponseWriter, r *http.Request) {
	article, err := s.articles.FindArticleByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.error(w, r, err)
		return
	}
	if !article.IsUpdated {
		s.writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Article has not been updated yet",
		})
		return
	}

	s.writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data": map[string]any{
			"title":             article.Title,
			"content":           article.Content,
			"updatedAt":         article.UpdatedAt,
			"referenceArticles": article.ReferenceArticles,
		},
	})
}

// handleScrape triggers a discovery run in the background.
// POST /api/articles/scrape
func (s *Server) handleScrape(w http.ResponseWriter, r *http.Request) {
	if err := s.discoverer.Schedule(); err != nil {
		s.error(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"status":  "started",
	})
}

// handleEnhanceArticle triggers enhancement of one article in the background.
// The article must exist; the work itself runs after the response is sent.
// POST /api/articles/{id}/enhance
func (s *Server) handleEnhanceArticle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if _, err := s.articles.FindArticleByID(r.Context(), id); err != nil {
		s.error(w, r, err)
		return
	}
	if err := s.enhancer.ScheduleArticle(id); err != nil {
		s.error(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"success": true,
		"status":  "started",
		"id":      id,
	})
}

// handleEnhanceAll triggers a batch enhancement run in the background and
// reports how many articles were scheduled.
// POST /api/articles/enhance/all
func (s *Server) handleEnhanceAll(w http.ResponseWriter, r *http.Request) {
	scheduled, err := s.enhancer.EnhanceBatch(r.Context())
	if err != nil {
		s.error(w, r, err)
		return
	}

	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"success":   true,
		"scheduled": scheduled,
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encoding failed", "err", err)
	}
}

// error writes an application error as a JSON envelope. Internal errors are
// logged; their details are not exposed to the client.
func (s *Server) error(w http.ResponseWriter, r *http.Request, err error) {
	code := enrich.ErrorCode(err)
	if code == enrich.EINTERNAL {
		s.logger.Error("http request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"err", err,
		)
	}

	s.writeJSON(w, errorStatus(code), map[string]any{
		"success": false,
		"message": enrich.ErrorMessage(err),
	})
}

// errorStatus maps application error codes to HTTP status codes.
func errorStatus(code string) int {
	switch code {
	case enrich.EINVALID:
		return http.StatusBadRequest
	case enrich.ENOTFOUND:
		return http.StatusNotFound
	case enrich.ECONFLICT:
		return http.StatusConflict
	case enrich.EUNAVAILABLE:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
