// Package session manages per-conversation chatbot instances. Each session
// owns an independent orchestrator; nothing is shared between sessions.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/chatbot"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
)

// Session binds an orchestrator to a session id and serializes turns: the
// orchestrator's state machine is not reentrant, so concurrent calls for
// the same session queue on the mutex. The activity timestamp lives behind
// its own lock so readers never wait on an in-flight turn.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu           sync.Mutex
	orchestrator *chatbot.Orchestrator

	activityMu   sync.Mutex
	lastActivity time.Time
}

// Process runs one turn through the session's orchestrator.
func (s *Session) Process(ctx context.Context, text string) *model.ChatResponse {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orchestrator.ProcessMessage(ctx, text)
}

// Clear wipes the session's conversation and form state.
func (s *Session) Clear() {
	s.touch()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.orchestrator.ClearConversation()
}

// History returns the session's conversation messages.
func (s *Session) History() []model.Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orchestrator.History()
}

// Stats returns the session's diagnostics snapshot.
func (s *Session) Stats(ctx context.Context) model.SystemStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.orchestrator.Stats(ctx)
}

// LastActivity returns the time of the session's most recent use.
func (s *Session) LastActivity() time.Time {
	s.activityMu.Lock()
	defer s.activityMu.Unlock()
	return s.lastActivity
}

func (s *Session) touch() {
	s.activityMu.Lock()
	s.lastActivity = time.Now()
	s.activityMu.Unlock()
}

// Info is a read-only session summary.
type Info struct {
	SessionID          string       `json:"session_id"`
	CreatedAt          time.Time    `json:"created_at"`
	LastActivity       time.Time    `json:"last_activity"`
	ConversationLength int          `json:"conversation_length"`
	CurrentIntent      model.Intent `json:"current_intent,omitempty"`
	FormActive         bool         `json:"form_active"`
}
