package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/chatbot"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/logger"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/metrics"
)

// ErrNotFound is returned when a session id is unknown.
var ErrNotFound = fmt.Errorf("session not found")

// Store is the session persistence contract. The in-memory Manager is the
// default backend; an external cache can implement the same surface.
type Store interface {
	Get(ctx context.Context, id string) (*Session, error)
	Delete(ctx context.Context, id string) error
}

// Factory builds a fresh orchestrator for a new session.
type Factory func() *chatbot.Orchestrator

// Manager is an in-memory session store with idle-session expiry.
type Manager struct {
	factory Factory
	timeout time.Duration
	logger  *logger.Logger

	mu       sync.RWMutex
	sessions map[string]*Session

	done chan struct{}
	once sync.Once
}

// NewManager creates a manager and starts the expiry sweep.
func NewManager(factory Factory, timeout, sweepInterval time.Duration, log *logger.Logger) *Manager {
	if timeout <= 0 {
		timeout = time.Hour
	}
	if sweepInterval <= 0 {
		sweepInterval = 5 * time.Minute
	}

	m := &Manager{
		factory:  factory,
		timeout:  timeout,
		logger:   log,
		sessions: make(map[string]*Session),
		done:     make(chan struct{}),
	}
	go m.sweep(sweepInterval)
	return m
}

// Create registers a new session and returns its id.
func (m *Manager) Create() string {
	id := uuid.New().String()
	m.create(id)
	return id
}

// GetOrCreate returns the session for id, auto-creating it when unknown.
// An empty id gets a fresh one.
func (m *Manager) GetOrCreate(id string) *Session {
	if id == "" {
		id = uuid.New().String()
	}

	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s
	}
	return m.create(id)
}

// Get returns the session for id or ErrNotFound.
func (m *Manager) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return s, nil
}

// Delete removes a session.
func (m *Manager) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, id)
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.logger.Info("session deleted", zap.String("session_id", id))
	return nil
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// IDs returns all active session ids.
func (m *Manager) IDs() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	ids := make([]string, 0, len(m.sessions))
	for id := range m.sessions {
		ids = append(ids, id)
	}
	return ids
}

// Info returns the summary for one session.
func (m *Manager) Info(ctx context.Context, id string) (*Info, error) {
	s, err := m.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	stats := s.Stats(ctx)
	return &Info{
		SessionID:          s.ID,
		CreatedAt:          s.CreatedAt,
		LastActivity:       s.LastActivity(),
		ConversationLength: stats.ConversationLength,
		CurrentIntent:      stats.CurrentIntent,
		FormActive:         stats.FormActive,
	}, nil
}

// Close stops the expiry sweep.
func (m *Manager) Close() {
	m.once.Do(func() { close(m.done) })
}

func (m *Manager) create(id string) *Session {
	now := time.Now()
	s := &Session{
		ID:           id,
		CreatedAt:    now,
		orchestrator: m.factory(),
		lastActivity: now,
	}

	m.mu.Lock()
	// Concurrent first requests can both miss the read-locked lookup;
	// the loser must adopt the winner's session or callers would hold
	// two unserialized instances for one id.
	if existing, ok := m.sessions[id]; ok {
		m.mu.Unlock()
		return existing
	}
	m.sessions[id] = s
	metrics.ActiveSessions.Set(float64(len(m.sessions)))
	m.mu.Unlock()

	m.logger.Info("session created", zap.String("session_id", id))
	return s
}

// sweep periodically removes sessions idle past the timeout. Activity is
// inspected outside the manager lock so a slow in-flight turn never stalls
// lookups for other sessions.
func (m *Manager) sweep(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-m.timeout)

			m.mu.RLock()
			candidates := make([]*Session, 0, len(m.sessions))
			for _, s := range m.sessions {
				candidates = append(candidates, s)
			}
			m.mu.RUnlock()

			var expired []string
			for _, s := range candidates {
				if s.LastActivity().Before(cutoff) {
					expired = append(expired, s.ID)
				}
			}
			if len(expired) == 0 {
				continue
			}

			m.mu.Lock()
			for _, id := range expired {
				// Re-check: the session may have been used again since
				// the unlocked activity read.
				s, ok := m.sessions[id]
				if !ok || !s.LastActivity().Before(cutoff) {
					continue
				}
				delete(m.sessions, id)
				m.logger.Info("expired session removed", zap.String("session_id", id))
			}
			metrics.ActiveSessions.Set(float64(len(m.sessions)))
			m.mu.Unlock()
		}
	}
}
