package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wardesk/faqdex/internal/docstore"
	"github.com/wardesk/faqdex/internal/domain"
)

// noMatchMessage is shown when no FAQ answers the question. Users write in
// Bahasa Indonesia, so the fallback does too.
const noMatchMessage = "Maaf, saya tidak menemukan jawaban yang sesuai. " +
	"Coba tulis ulang pertanyaan dengan kata lain."

// handleSearch handles POST /api/v1/search.
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

	thresholds := s.engine.Thresholds()
	limit := req.Limit
	if limit <= 0 {
		limit = thresholds.BotResultCount
	}
	minScore := thresholds.MinRelevance
	if req.MinScore != nil {
		minScore = *req.MinScore
	}

	candidates, err := s.engine.Search(r.Context(), req.Query, limit, req.Category, minScore)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]candidateResponse, len(candidates))
	for i, c := range candidates {
		items[i] = candidateToResponse(c)
	}
	writeJSON(w, http.StatusOK, searchResponse{Items: items, Total: len(items)})
}

// handleAsk handles POST /api/v1/ask. A miss is a 200 with found=false, not
// an error status.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if req.Query == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "query is required")
		return
	}

	mode := domain.SelectionMode(req.Mode)
	if req.Mode != "" && !mode.Valid() {
		writeError(w, http.StatusBadRequest, "validation_failed", "unknown mode "+req.Mode)
		return
	}

	answer, err := s.selector.Resolve(r.Context(), req.Query, mode, req.AllowedCategories)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	if answer == nil {
		writeJSON(w, http.StatusOK, askResponse{Found: false, Message: noMatchMessage})
		return
	}

	resp := candidateToResponse(*answer)
	writeJSON(w, http.StatusOK, askResponse{Found: true, Answer: &resp})
}

// handleListCategories handles GET /api/v1/categories.
func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories := s.engine.Categories()
	items := make([]categoryResponse, len(categories))
	for i, c := range categories {
		items[i] = categoryResponse{
			Code:        c.Code,
			Description: c.Description,
			BadgeColor:  c.BadgeColor,
		}
	}
	writeJSON(w, http.StatusOK, items)
}

// handleBrowseFAQs handles GET /api/v1/faqs. No embedding call: this is a
// catalogue listing, sorted newest first.
func (s *Server) handleBrowseFAQs(w http.ResponseWriter, r *http.Request) {
	candidates, err := s.engine.SearchForBrowse(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]candidateResponse, len(candidates))
	for i, c := range candidates {
		items[i] = candidateToResponse(c)
	}
	writeJSON(w, http.StatusOK, searchResponse{Items: items, Total: len(items)})
}

// handleCreateFAQ handles POST /api/v1/faqs.
func (s *Server) handleCreateFAQ(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeFAQ(w, r)
	if !ok {
		return
	}
	if doc.ID == "" {
		doc.ID = docstore.AutoID
	}

	id, err := s.docs.Upsert(r.Context(), doc)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	doc.ID = id
	w.Header().Set("Location", "/api/v1/faqs/"+id)
	writeJSON(w, http.StatusCreated, faqToResponse(doc))
}

// handleGetFAQ handles GET /api/v1/faqs/{id}.
func (s *Server) handleGetFAQ(w http.ResponseWriter, r *http.Request) {
	doc, err := s.docs.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, faqToResponse(doc.Document))
}

// handleUpdateFAQ handles PUT /api/v1/faqs/{id}.
func (s *Server) handleUpdateFAQ(w http.ResponseWriter, r *http.Request) {
	doc, ok := s.decodeFAQ(w, r)
	if !ok {
		return
	}
	doc.ID = chi.URLParam(r, "id")

	id, err := s.docs.Upsert(r.Context(), doc)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	doc.ID = id
	writeJSON(w, http.StatusOK, faqToResponse(doc))
}

// handleDeleteFAQ handles DELETE /api/v1/faqs/{id}. Deleting an absent
// document is a no-op 204.
func (s *Server) handleDeleteFAQ(w http.ResponseWriter, r *http.Request) {
	if _, err := s.docs.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetSettings handles GET /api/v1/settings.
func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	current := s.settings.Load()
	writeJSON(w, http.StatusOK, settingsResponse{
		SearchMode:               string(current.SearchMode),
		AgentConfidenceThreshold: current.AgentConfidenceThreshold,
	})
}

// handleUpdateSettings handles PUT /api/v1/settings. Only the provided
// fields change.
func (s *Server) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	if req.SearchMode != nil {
		if err := s.settings.SetSearchMode(domain.SelectionMode(*req.SearchMode)); err != nil {
			s.handleDomainError(w, err)
			return
		}
	}
	if req.AgentConfidenceThreshold != nil {
		if err := s.settings.SetConfidenceThreshold(*req.AgentConfidenceThreshold); err != nil {
			s.handleDomainError(w, err)
			return
		}
	}

	s.handleGetSettings(w, r)
}

func (s *Server) decodeFAQ(w http.ResponseWriter, r *http.Request) (domain.Document, bool) {
	var req faqRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return domain.Document{}, false
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "title is required")
		return domain.Document{}, false
	}
	if req.Answer == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "answer is required")
		return domain.Document{}, false
	}

	return domain.Document{
		ID:         req.ID,
		Category:   req.Category,
		Title:      req.Title,
		AnswerBody: req.Answer,
		Keywords:   req.Keywords,
		ImageRefs:  req.ImageRefs,
		SourceURL:  req.SourceURL,
	}, true
}
