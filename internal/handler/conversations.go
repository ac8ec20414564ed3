package handler

import (
	"net/http"
	"strconv"

	"github.com/clawd-labs/support-platform/internal/model"
	"github.com/clawd-labs/support-platform/internal/store"
	"github.com/clawd-labs/support-platform/pkg/logger"
)

// defaultConversationLimit caps the listing like the dashboard expects.
const defaultConversationLimit = 50

// ConversationHandler handles conversation log endpoints.
type ConversationHandler struct {
	log    *store.ConversationLog
	logger *logger.Logger
}

// NewConversationHandler creates a new conversation handler.
func NewConversationHandler(convLog *store.ConversationLog, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		log:    convLog,
		logger: log,
	}
}

// List handles GET /api/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit := defaultConversationLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 200 {
			limit = parsed
		}
	}

	conversations := h.log.Recent(limit)
	if conversations == nil {
		conversations = []model.ConversationRecord{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success":       true,
		"conversations": conversations,
	})
}
