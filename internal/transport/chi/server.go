// Package chi exposes the hybrid query over HTTP in serve mode.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/skald-io/rankfuse/internal/domain"
	"github.com/skald-io/rankfuse/internal/metrics"
)

// searchService is the consumer interface over the workflow service.
type searchService interface {
	Query(ctx context.Context, query string) ([]domain.HybridResult, error)
}

// pinger checks store liveness for the health endpoint.
type pinger interface {
	Ping(ctx context.Context) error
}

// Server serves the hybrid search API.
type Server struct {
	search   searchService
	pinger   pinger
	embedder domain.Embedder
	logger   *zap.Logger
}

// NewServer creates an HTTP API server. The embedder is probed by the health
// endpoint when it supports health checks.
func NewServer(search searchService, p pinger, embedder domain.Embedder, logger *zap.Logger) *Server {
	return &Server{search: search, pinger: p, embedder: embedder, logger: logger}
}

// Handler builds the router with the standard middleware stack.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.jsonRecoverer())
	r.Use(chiMiddleware.RequestID)
	r.Use(s.wideEvent())
	r.Use(metrics.Middleware())

	r.Post("/search", s.handleSearch)
	r.Get("/healthz", s.handleHealth)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	return r
}

type searchRequest struct {
	Query string `json:"query"`
}

type searchResponse struct {
	Query   string                `json:"query"`
	Results []domain.HybridResult `json:"results"`
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "invalid request body: "+err.Error())
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return
	}

	results, err := s.search.Query(r.Context(), req.Query)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: req.Query, Results: results})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if err := s.pinger.Ping(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, "store_unreachable", err.Error())
		return
	}
	if hc, ok := s.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(r.Context()); err != nil {
			writeError(w, http.StatusServiceUnavailable, "embedding_provider_error", err.Error())
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleDomainError maps sentinel errors to HTTP statuses.
func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrEmbeddingProvider):
		writeError(w, http.StatusBadGateway, "embedding_provider_error", err.Error())
	case errors.Is(err, domain.ErrQueryExecution):
		writeError(w, http.StatusBadGateway, "query_execution_error", err.Error())
	case errors.Is(err, domain.ErrConfiguration):
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
	default:
		s.logger.Error("Unhandled search error", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
	}
}

// jsonRecoverer returns JSON instead of a plain text stacktrace.
func (s *Server) jsonRecoverer() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					s.logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEvent emits a canonical log line per request and propagates X-Request-ID.
func (s *Server) wideEvent() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			s.logger.Info("http_request",
				zap.String("request_id", requestID),
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
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
