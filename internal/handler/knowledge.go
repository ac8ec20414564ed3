package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/clawd-labs/support-platform/internal/middleware"
	"github.com/clawd-labs/support-platform/internal/model"
	"github.com/clawd-labs/support-platform/internal/store"
	"github.com/clawd-labs/support-platform/pkg/logger"
)

// KnowledgeHandler handles knowledge base CRUD endpoints.
type KnowledgeHandler struct {
	store  *store.KnowledgeStore
	logger *logger.Logger
}

// NewKnowledgeHandler creates a new knowledge handler.
func NewKnowledgeHandler(s *store.KnowledgeStore, log *logger.Logger) *KnowledgeHandler {
	return &KnowledgeHandler{
		store:  s,
		logger: log,
	}
}

// List handles GET /api/knowledge. `q` searches, `category` filters;
// `q` wins when both are present.
func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	var entries []model.KnowledgeEntry
	if q := r.URL.Query().Get("q"); q != "" {
		entries = h.store.Search(q)
	} else {
		entries = h.store.ListByCategory(r.URL.Query().Get("category"))
	}

	if entries == nil {
		entries = []model.KnowledgeEntry{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entries": entries,
	})
}

// Create handles POST /api/knowledge
func (h *KnowledgeHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.store.Create(&req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success": true,
		"entry":   entry,
	})
}

// Update handles PUT /api/knowledge/{id}
func (h *KnowledgeHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateEntryID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	entry, err := h.store.Update(id, &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"entry":   entry,
	})
}

// Delete handles DELETE /api/knowledge/{id}
func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateEntryID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.store.Delete(id); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Question deleted",
	})
}

// Stats handles GET /api/knowledge/stats
func (h *KnowledgeHandler) Stats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats":   h.store.Stats(),
	})
}

// Categories handles GET /api/knowledge/categories
func (h *KnowledgeHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":    true,
		"categories": h.store.Categories(),
	})
}

// CreateCategory handles POST /api/knowledge/categories
func (h *KnowledgeHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var cat model.Category
	if err := json.NewDecoder(r.Body).Decode(&cat); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.store.CreateCategory(cat); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"success":  true,
		"category": cat,
	})
}

// DeleteCategory handles DELETE /api/knowledge/categories/{id}
func (h *KnowledgeHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if err := h.store.DeleteCategory(chi.URLParam(r, "id")); err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "Category deleted",
	})
}
