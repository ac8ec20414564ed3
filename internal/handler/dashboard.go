package handler

import (
	"net/http"
	"time"

	"github.com/clawd-labs/support-platform/internal/store"
	"github.com/clawd-labs/support-platform/pkg/logger"
)

// DashboardHandler serves the aggregate stats the dashboard widgets read.
type DashboardHandler struct {
	log       *store.ConversationLog
	knowledge *store.KnowledgeStore
	logger    *logger.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(convLog *store.ConversationLog, knowledge *store.KnowledgeStore, log *logger.Logger) *DashboardHandler {
	return &DashboardHandler{
		log:       convLog,
		knowledge: knowledge,
		logger:    log,
	}
}

// Stats handles GET /api/dashboard/stats
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	records := h.log.Recent(0)

	// Local midnight, not a UTC day boundary.
	now := time.Now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	todayCount := 0
	totalMessages := 0
	customers := make(map[string]struct{})
	for _, rec := range records {
		if !rec.Timestamp.Before(today) {
			todayCount++
		}
		totalMessages += len(rec.Messages)
		customers[rec.Customer] = struct{}{}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"stats": map[string]interface{}{
			"total_conversations": len(records),
			"today_conversations": todayCount,
			"total_messages":      totalMessages,
			"active_customers":    len(customers),
			"knowledge":           h.knowledge.Stats(),
		},
	})
}

// Integrations handles GET /api/integrations
func (h *DashboardHandler) Integrations(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"integrations": []map[string]string{
			{"id": "whatsapp", "name": "WhatsApp", "color": "#25D366", "status": "connected"},
			{"id": "telegram", "name": "Telegram", "color": "#0088cc", "status": "not_connected"},
			{"id": "discord", "name": "Discord", "color": "#5865F2", "status": "not_connected"},
			{"id": "slack", "name": "Slack", "color": "#4A154B", "status": "not_connected"},
			{"id": "website", "name": "Website Widget", "color": "#6366f1", "status": "connected"},
		},
	})
}
