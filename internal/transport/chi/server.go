// Package chi wires the retrieval core into a thin HTTP API.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/civic-ai/lawdex/internal/domain"
	"github.com/civic-ai/lawdex/internal/metrics"
	"github.com/civic-ai/lawdex/internal/registry"
	askuc "github.com/civic-ai/lawdex/internal/usecase/ask"
	healthuc "github.com/civic-ai/lawdex/internal/usecase/health"
	searchuc "github.com/civic-ai/lawdex/internal/usecase/search"
)

const defaultSearchTopK = 3

// AskService answers questions over the configured collections.
type AskService interface {
	Ask(ctx context.Context, question, target string) (askuc.Result, error)
}

// SearchService runs similarity searches.
type SearchService interface {
	Search(ctx context.Context, query, collection string, topK int, minSimilarity float32) ([]domain.Hit, error)
}

// StatusReporter reports collection load state.
type StatusReporter interface {
	Status(ctx context.Context) map[string]registry.Status
	StatusOf(ctx context.Context, name string) registry.Status
}

// HealthService aggregates component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

// Server is the HTTP API over the retrieval core.
type Server struct {
	ask    AskService
	search SearchService
	status StatusReporter
	health HealthService
	logger *zap.Logger
}

// NewServer creates an HTTP API server.
func NewServer(
	ask AskService,
	search SearchService,
	status StatusReporter,
	health HealthService,
	logger *zap.Logger,
) *Server {
	return &Server{ask: ask, search: search, status: status, health: health, logger: logger}
}

// Router builds the chi router with middleware and routes.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chiMiddleware.Recoverer)
	r.Use(metrics.Middleware())
	r.Use(BearerAuthMiddleware(apiKeys))

	r.Get("/health", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/ask", s.handleAsk)
		r.Post("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
	})

	return r
}

type askRequest struct {
	Question string `json:"question"`
	Target   string `json:"target"`
}

type askResponse struct {
	Answer       string       `json:"answer"`
	References   []domain.Hit `json:"references"`
	QuestionType string       `json:"question_type"`
	Degraded     bool         `json:"degraded,omitempty"`
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Question == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "question is required")
		return
	}
	if req.Target == "" {
		req.Target = registry.DefaultCollection
	}

	result, err := s.ask.Ask(r.Context(), req.Question, req.Target)
	if err != nil {
		if errors.Is(err, domain.ErrCompletionUnavailable) {
			// References were retrieved; serve them without a summary.
			writeJSON(w, http.StatusOK, askResponse{
				Answer:       askuc.NoInfoAnswer,
				References:   result.References,
				QuestionType: string(result.QuestionType),
				Degraded:     true,
			})
			return
		}
		s.logger.Error("ask failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "failed to answer question")
		return
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer:       result.Answer,
		References:   result.References,
		QuestionType: string(result.QuestionType),
	})
}

type searchRequest struct {
	Query      string `json:"query"`
	Collection string `json:"collection"`
	TopK       int    `json:"top_k"`
}

type searchResponse struct {
	Results []domain.Hit `json:"results"`
	Count   int          `json:"count"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return
	}
	if req.Collection == "" {
		req.Collection = registry.DefaultCollection
	}
	if req.TopK <= 0 {
		req.TopK = defaultSearchTopK
	}

	hits, err := s.search.Search(r.Context(), req.Query, req.Collection, req.TopK, searchuc.NoMinSimilarity)
	if err != nil {
		// Retrieval failures degrade to an empty result set.
		s.logger.Warn("search failed", zap.String("collection", req.Collection), zap.Error(err))
		hits = []domain.Hit{}
	}

	writeJSON(w, http.StatusOK, searchResponse{Results: hits, Count: len(hits)})
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if name := r.URL.Query().Get("collection"); name != "" {
		writeJSON(w, http.StatusOK, s.status.StatusOf(r.Context(), name))
		return
	}
	writeJSON(w, http.StatusOK, s.status.Status(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	code := http.StatusOK
	if report.Status != healthuc.Healthy {
		code = http.StatusServiceUnavailable
	}
	writeJSON(w, code, report)
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}
