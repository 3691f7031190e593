// Package events publishes chat-turn audit records to NATS JetStream.
// Publishing is best-effort diagnostics; a nil Publisher is a no-op so the
// core runs fine without a broker.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"go.uber.org/zap"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/logger"
)

const (
	// StreamName is the name of the chat turns stream.
	StreamName = "CHAT_TURNS"

	// SubjectPrefix is the prefix for all turn subjects.
	SubjectPrefix = "chat"
)

// TurnEvent is one processed chat turn.
type TurnEvent struct {
	SessionID  string       `json:"session_id"`
	Intent     model.Intent `json:"intent,omitempty"`
	FormActive bool         `json:"form_active"`
	Sources    int          `json:"sources"`
	DurationMs int64        `json:"duration_ms"`
	Timestamp  time.Time    `json:"timestamp"`
}

// Publisher wraps a NATS connection and JetStream context.
type Publisher struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	logger *logger.Logger
}

// Connect establishes a NATS connection and ensures the turns stream.
func Connect(ctx context.Context, url string, log *logger.Logger) (*Publisher, error) {
	nc, err := nats.Connect(url,
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("NATS reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	p := &Publisher{conn: nc, js: js, logger: log}
	if err := p.ensureStream(ctx); err != nil {
		nc.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureStream(ctx context.Context) error {
	if _, err := p.js.Stream(ctx, StreamName); err == nil {
		return nil
	}

	_, err := p.js.CreateStream(ctx, jetstream.StreamConfig{
		Name:        StreamName,
		Subjects:    []string{fmt.Sprintf("%s.>", SubjectPrefix)},
		Retention:   jetstream.LimitsPolicy,
		MaxAge:      30 * 24 * time.Hour,
		Storage:     jetstream.FileStorage,
		Replicas:    1,
		Description: "Chat turn audit records",
	})
	if err != nil {
		return fmt.Errorf("failed to create stream: %w", err)
	}
	return nil
}

// TurnSubject returns the subject for a turn event.
func TurnSubject(sessionID string, intent model.Intent) string {
	if intent == "" {
		intent = "unknown"
	}
	return fmt.Sprintf("%s.%s.%s", SubjectPrefix, sessionID, intent)
}

// PublishTurn publishes a turn record. Failures are logged, never fatal.
func (p *Publisher) PublishTurn(ctx context.Context, event TurnEvent) {
	if p == nil {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		p.logger.Warn("failed to marshal turn event", zap.Error(err))
		return
	}

	if _, err := p.js.Publish(ctx, TurnSubject(event.SessionID, event.Intent), data); err != nil {
		p.logger.Warn("failed to publish turn event", zap.Error(err))
	}
}

// IsConnected reports broker connectivity.
func (p *Publisher) IsConnected() bool {
	return p != nil && p.conn != nil && p.conn.IsConnected()
}

// Close drains the connection.
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	p.conn.Close()
}
