// Package httpapi exposes the search engine over a small JSON API and
// serves the bundled demo page.
package httpapi

import (
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/semsearch/internal/docstore"
	"github.com/kailas-cloud/semsearch/internal/domain"
	"github.com/kailas-cloud/semsearch/internal/metrics"
	"github.com/kailas-cloud/semsearch/internal/usecase/engine"
)

//go:embed index.html
var pageFS embed.FS

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server wires the engine and document store to HTTP.
type Server struct {
	engine        *engine.Engine
	store         *docstore.Store
	health        domain.HealthChecker // nil when no embedding provider is configured
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server.
func NewServer(eng *engine.Engine, store *docstore.Store, health domain.HealthChecker, logger *zap.Logger) *Server {
	s := &Server{
		engine: eng,
		store:  store,
		health: health,
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidQuery, http.StatusBadRequest, "invalid_query"),
		sentinelHandler(domain.ErrInvalidTopK, http.StatusBadRequest, "invalid_top_k"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "document_not_found"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
	}
	return s
}

// Register mounts all routes on the router.
func (s *Server) Register(r chi.Router) {
	r.Get("/", s.Page)
	r.Post("/api/search", s.Search)
	r.Get("/api/documents", s.ListDocuments)
	r.Get("/api/documents/{id}", s.GetDocument)
	r.Get("/api/status", s.Status)
	r.Get("/healthz", s.Healthz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

type searchRequest struct {
	Query string `json:"query"`
	TopK  *int   `json:"top_k"`
}

type resultItem struct {
	ID       string  `json:"id"`
	Title    string  `json:"title"`
	Text     string  `json:"text"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

type searchResponse struct {
	Results  []resultItem `json:"results"`
	Strategy string       `json:"strategy"`
	Model    string       `json:"model"`
	TookMs   float64      `json:"took_ms"`
}

// Search handles POST /api/search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.handleDomainError(w, fmt.Errorf("%w: malformed request body: %v", domain.ErrInvalidQuery, err))
		return
	}

	topK := engine.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}

	start := time.Now()
	results, err := s.engine.Search(r.Context(), req.Query, topK)
	took := time.Since(start)

	if err != nil {
		metrics.SearchesTotal.WithLabelValues(s.engine.Strategy(), "error").Inc()
		s.handleDomainError(w, err)
		return
	}

	metrics.SearchesTotal.WithLabelValues(s.engine.Strategy(), "success").Inc()
	metrics.SearchDuration.WithLabelValues(s.engine.Strategy()).Observe(took.Seconds())
	metrics.SearchResults.Observe(float64(len(results)))

	items := make([]resultItem, len(results))
	for i, res := range results {
		items[i] = resultItem{
			ID:       res.Document.ID,
			Title:    res.Document.Title,
			Text:     res.Document.Text,
			Category: res.Document.Category,
			Score:    res.Score,
		}
	}

	writeJSON(w, http.StatusOK, searchResponse{
		Results:  items,
		Strategy: s.engine.Strategy(),
		Model:    s.engine.Model(),
		TookMs:   float64(took.Microseconds()) / 1000.0,
	})
}

type documentItem struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Text     string `json:"text"`
	Category string `json:"category"`
	Words    int    `json:"words"`
}

// ListDocuments handles GET /api/documents.
func (s *Server) ListDocuments(w http.ResponseWriter, _ *http.Request) {
	docs := s.store.All()
	items := make([]documentItem, len(docs))
	for i, d := range docs {
		items[i] = documentItem{
			ID:       d.ID,
			Title:    d.Title,
			Text:     d.Text,
			Category: d.Category,
			Words:    d.WordCount(),
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": items})
}

// GetDocument handles GET /api/documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request) {
	doc, err := s.store.ByID(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, documentItem{
		ID:       doc.ID,
		Title:    doc.Title,
		Text:     doc.Text,
		Category: doc.Category,
		Words:    doc.WordCount(),
	})
}

type statusResponse struct {
	Strategy      string `json:"strategy"`
	Model         string `json:"model"`
	UsingFallback bool   `json:"using_fallback"`
	DocumentCount int    `json:"document_count"`
	TotalWords    int    `json:"total_words"`
}

// Status handles GET /api/status: display-only engine and corpus info.
func (s *Server) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{
		Strategy:      s.engine.Strategy(),
		Model:         s.engine.Model(),
		UsingFallback: s.engine.UsingFallback(),
		DocumentCount: s.store.Len(),
		TotalWords:    s.store.TotalWords(),
	})
}

// Healthz handles GET /healthz. The embedding provider check is
// informational: a failing provider does not make the service unhealthy,
// it only means searches run degraded.
func (s *Server) Healthz(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{"status": "ok"}
	if s.health != nil {
		if err := s.health.HealthCheck(r.Context()); err != nil {
			resp["embedding_provider"] = "unreachable"
		} else {
			resp["embedding_provider"] = "ok"
		}
	}
	writeJSON(w, http.StatusOK, resp)
}

// Page handles GET /: the bundled single-page demo UI.
func (s *Server) Page(w http.ResponseWriter, _ *http.Request) {
	data, err := pageFS.ReadFile("index.html")
	if err != nil {
		writeError(w, http.StatusInternalServerError, "internal_error", "demo page unavailable")
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	for _, h := range s.errorHandlers {
		if h(w, err) {
			return
		}
	}
	s.logger.Error("Unhandled error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}

func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, err.Error())
		return true
	}
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
