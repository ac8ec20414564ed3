package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clawd-labs/support-platform/internal/apperr"
	"github.com/clawd-labs/support-platform/internal/event"
	"github.com/clawd-labs/support-platform/internal/llm"
	"github.com/clawd-labs/support-platform/internal/match"
	"github.com/clawd-labs/support-platform/internal/model"
	"github.com/clawd-labs/support-platform/internal/store"
	"github.com/clawd-labs/support-platform/pkg/logger"
	"github.com/clawd-labs/support-platform/pkg/metrics"
)

// Response sources, in the order they are tried.
const (
	sourceKnowledge = "knowledge"
	sourceCategory  = "category"
	sourceAI        = "ai"
	sourceGeneric   = "generic"
)

const aiSystemPrompt = "You are a friendly customer support assistant. " +
	"Answer the customer's question briefly and helpfully. If you do not " +
	"know the answer, say you will connect them with the support team."

// Responder turns an inbound message into a response and logs the
// exchange. A response is always produced: every stage degrades to the
// next one, ending at the fixed generic pool.
type Responder struct {
	engine    *match.Engine
	log       *store.ConversationLog
	aiClient  llm.Client
	aiModel   string
	aiTimeout time.Duration
	events    *event.Publisher
	logger    *logger.Logger
}

// ResponderOption configures optional Responder collaborators.
type ResponderOption func(*Responder)

// WithAIClient enables the bounded AI fallback.
func WithAIClient(client llm.Client, model string, timeout time.Duration) ResponderOption {
	return func(r *Responder) {
		r.aiClient = client
		r.aiModel = model
		r.aiTimeout = timeout
	}
}

// WithEvents enables publication of answered turns.
func WithEvents(pub *event.Publisher) ResponderOption {
	return func(r *Responder) {
		r.events = pub
	}
}

// NewResponder creates the response pipeline.
func NewResponder(engine *match.Engine, log *store.ConversationLog, lg *logger.Logger, opts ...ResponderOption) *Responder {
	r := &Responder{
		engine:    engine,
		log:       log,
		aiTimeout: 10 * time.Second,
		logger:    lg,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Answer handles one inbound message: match, compose, log.
func (r *Responder) Answer(ctx context.Context, req *model.ChatRequest) (*model.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, apperr.Validation("message is required")
	}

	platform := req.Platform
	if platform == "" {
		platform = "website"
	}
	customer := req.Customer
	if customer == "" {
		customer = "Anonymous"
	}

	response, source, score := r.compose(ctx, message)

	now := time.Now()
	record := model.ConversationRecord{
		ID:       uuid.Must(uuid.NewV7()).String(),
		Platform: platform,
		Customer: customer,
		Messages: []model.ConversationMessage{
			{Type: model.MessageTypeUser, Content: message, Timestamp: now},
			{Type: model.MessageTypeBot, Content: response, Timestamp: now},
		},
		Timestamp: now,
	}

	lg := r.logger.WithRequest(record.ID, platform, customer)

	// The log must reflect what the user was shown even when the
	// persist fails, so a storage error here degrades to log-and-
	// continue; the failure is still counted and logged.
	if err := r.log.Append(record); err != nil {
		lg.Error("conversation persist failed", zap.Error(err))
	}

	r.events.PublishTurn(ctx, &record)
	metrics.RecordChatResponse(platform, source, score)

	lg.Info("message answered",
		zap.String("source", source),
		zap.Int("score", score),
	)

	return &model.ChatResponse{
		Success:        true,
		Response:       response,
		ConversationID: record.ID,
	}, nil
}

// compose picks the response: best knowledge match, then category
// keyword fallback, then the bounded AI fallback, then the generic
// pool.
func (r *Responder) compose(ctx context.Context, message string) (response, source string, score int) {
	if entry, best := r.engine.FindBestAnswer(message); entry != nil {
		return entry.Answer, sourceKnowledge, best
	}

	if resp, ok := match.CategoryFallback(message); ok {
		return resp, sourceCategory, 0
	}

	if r.aiClient != nil {
		if resp, ok := r.completeAI(ctx, message); ok {
			return resp, sourceAI, 0
		}
	}

	return match.GenericResponse(), sourceGeneric, 0
}

// completeAI runs the AI fallback under an explicit timeout. Any
// error, timeout or empty completion degrades to the generic pool.
func (r *Responder) completeAI(ctx context.Context, message string) (string, bool) {
	aiCtx, cancel := context.WithTimeout(ctx, r.aiTimeout)
	defer cancel()

	start := time.Now()
	resp, err := r.aiClient.Complete(aiCtx, &llm.CompletionRequest{
		Model: r.aiModel,
		Messages: []llm.ChatMessage{
			{Role: "user", Content: aiSystemPrompt + "\n\nCustomer: " + message},
		},
	})
	if err != nil {
		metrics.RecordAIFallback(r.aiClient.Name(), "error", time.Since(start).Seconds())
		r.logger.Warn("AI fallback failed", zap.Error(err))
		return "", false
	}

	content := strings.TrimSpace(resp.Content)
	if content == "" {
		metrics.RecordAIFallback(r.aiClient.Name(), "empty", time.Since(start).Seconds())
		return "", false
	}

	metrics.RecordAIFallback(r.aiClient.Name(), "success", time.Since(start).Seconds())
	return content, true
}
