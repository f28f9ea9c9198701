package events

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/aidentify/detection-dashboard/internal/model"
)

const (
	// StreamName is the name of the analyses stream.
	StreamName = "ANALYSES"

	// SubjectPrefix is the prefix for all analysis subjects.
	SubjectPrefix = "analysis"
)

// VerdictEvent is published after each successful analysis. The user is
// identified by an email hash only.
type VerdictEvent struct {
	UserHash   string          `json:"user_hash"`
	ChatID     string          `json:"chat_id"`
	MediaType  model.MediaType `json:"media_type"`
	Label      string          `json:"label"`
	Confidence float64         `json:"confidence"`
	Result     model.Result    `json:"result"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Publisher publishes verdict events. A nil *Publisher is a disabled
// publisher; all its methods are safe no-ops.
type Publisher struct {
	client *Client
}

// NewPublisher creates a publisher over an established client.
func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

// EnsureStream ensures the analyses stream exists.
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
		Description: "Detection verdicts by media type and result",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// VerdictSubject returns the subject for a verdict event.
func VerdictSubject(mediaType model.MediaType, result model.Result) string {
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, mediaType, result)
}

// PublishVerdict publishes a verdict event. Failures are logged and
// swallowed: event delivery never fails the user-facing call.
func (p *Publisher) PublishVerdict(ctx context.Context, email string, chatID string, msg *model.Message) {
	if p == nil || !msg.IsVerdict() {
		return
	}

	event := VerdictEvent{
		UserHash:   hashEmail(email),
		ChatID:     chatID,
		MediaType:  msg.Type,
		Label:      msg.Label,
		Confidence: msg.Confidence,
		Result:     msg.Result,
		CreatedAt:  time.Now().UTC(),
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.client.logger.Error("failed to marshal verdict event", zap.Error(err))
		return
	}

	subject := VerdictSubject(event.MediaType, event.Result)
	if _, err := p.client.JetStream().Publish(ctx, subject, data); err != nil {
		p.client.logger.Warn("failed to publish verdict event",
			zap.String("subject", subject),
			zap.Error(err),
		)
	}
}

func hashEmail(email string) string {
	sum := sha256.Sum256([]byte(email))
	return hex.EncodeToString(sum[:8])
}
