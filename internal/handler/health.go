package handler

import (
	"net/http"

	"github.com/clawd-labs/support-platform/internal/event"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	eventsClient *event.Client
}

// NewHealthHandler creates a new health handler. eventsClient may be
// nil when the event feed is disabled.
func NewHealthHandler(eventsClient *event.Client) *HealthHandler {
	return &HealthHandler{
		eventsClient: eventsClient,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.eventsClient != nil && !h.eventsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
