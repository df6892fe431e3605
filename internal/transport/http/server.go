// Package http serves the FAQ API over chi.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/wardesk/faqdex/internal/docstore"
	"github.com/wardesk/faqdex/internal/domain"
	"github.com/wardesk/faqdex/internal/engine"
	"github.com/wardesk/faqdex/internal/selector"
	"github.com/wardesk/faqdex/internal/settings"
	"github.com/wardesk/faqdex/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server exposes retrieval, answering and FAQ management endpoints.
type Server struct {
	engine        *engine.Engine
	selector      *selector.Selector
	docs          *docstore.Store
	settings      *settings.FileStore
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the HTTP API server.
func NewServer(
	eng *engine.Engine,
	sel *selector.Selector,
	docs *docstore.Store,
	set *settings.FileStore,
	logger *zap.Logger,
) *Server {
	s := &Server{
		engine:   eng,
		selector: sel,
		docs:     docs,
		settings: set,
		logger:   logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrDocumentNotFound, http.StatusNotFound, "document_not_found"),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, "not_found"),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, "validation_failed"),
		sentinelHandler(domain.ErrStoreBusy, http.StatusServiceUnavailable, "store_busy"),
		sentinelHandler(domain.ErrEmptyEmbedding, http.StatusBadGateway, "empty_embedding"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrLLMProviderError, http.StatusBadGateway, "llm_provider_error"),
	}
	return s
}

// Routes mounts every endpoint on the given router.
func (s *Server) Routes(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", s.handleSearch)
		r.Post("/ask", s.handleAsk)
		r.Get("/categories", s.handleListCategories)
		r.Route("/faqs", func(r chi.Router) {
			r.Get("/", s.handleBrowseFAQs)
			r.Post("/", s.handleCreateFAQ)
			r.Get("/{id}", s.handleGetFAQ)
			r.Put("/{id}", s.handleUpdateFAQ)
			r.Delete("/{id}", s.handleDeleteFAQ)
		})
		r.Get("/settings", s.handleGetSettings)
		r.Put("/settings", s.handleUpdateSettings)
	})
	r.Get("/healthz", s.handleHealth)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": version.Version,
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorResponse{Code: code, Message: message})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrDocumentNotFound,
		domain.ErrNotFound,
		domain.ErrInvalidInput,
		domain.ErrStoreBusy,
		domain.ErrEmptyEmbedding,
		domain.ErrEmbeddingProviderError,
		domain.ErrLLMProviderError,
	}
	for _, sentinel := range sentinels {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
