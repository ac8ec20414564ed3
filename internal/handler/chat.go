package handler

import (
	"encoding/json"
	"net/http"

	"github.com/clawd-labs/support-platform/internal/middleware"
	"github.com/clawd-labs/support-platform/internal/model"
	"github.com/clawd-labs/support-platform/internal/service"
	"github.com/clawd-labs/support-platform/pkg/logger"
)

// ChatHandler handles the inbound message endpoint.
type ChatHandler struct {
	responder *service.Responder
	logger    *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(responder *service.Responder, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		responder: responder,
		logger:    log,
	}
}

// Send handles POST /api/chat
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Message); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.responder.Answer(r.Context(), &req)
	if err != nil {
		writeServiceError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, resp)
}
