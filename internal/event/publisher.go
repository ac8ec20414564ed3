package event

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/clawd-labs/support-platform/internal/model"
)

const (
	// StreamName is the name of the support events stream.
	StreamName = "SUPPORT"

	// SubjectPrefix is the prefix for all support event subjects.
	SubjectPrefix = "support"
)

// Publisher publishes conversation turns to JetStream. A nil Publisher
// is valid and publishes nothing.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher over an established client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// EnsureStream creates the support events stream if it does not exist.
func (p *Publisher) EnsureStream(ctx context.Context) error {
	if p == nil {
		return nil
	}

	js := p.client.JetStream()

	if _, err := js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      90 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Compression: jetstream.S2Compression,
		Description: "Answered support conversation turns",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// TurnSubject returns the subject for a conversation turn.
func TurnSubject(platform string) string {
	return fmt.Sprintf("%s.conv.%s", SubjectPrefix, platform)
}

// PublishTurn publishes one answered conversation record. Failures are
// logged, not returned: the event feed is advisory and must never fail
// a chat request.
func (p *Publisher) PublishTurn(ctx context.Context, record *model.ConversationRecord) {
	if p == nil {
		return
	}

	data, err := json.Marshal(record)
	if err != nil {
		p.client.logger.Error("failed to marshal conversation event", zap.Error(err))
		return
	}

	if _, err := p.client.JetStream().Publish(ctx, TurnSubject(record.Platform), data); err != nil {
		p.client.logger.Warn("failed to publish conversation event",
			zap.String("conversation_id", record.ID),
			zap.Error(err),
		)
	}
}
