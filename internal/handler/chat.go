package handler

import (
	"encoding/json"
	"net/http"
	"time"
	"unicode/utf8"

	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/events"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/model"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/internal/session"
	"github.com/rato-kaz/vietnamese-business-rag-chatbot/pkg/logger"
)

const maxMessageBytes = 100000

// ChatRequest is the caller-facing chat contract.
type ChatRequest struct {
	SessionID string `json:"session_id,omitempty"`
	Message   string `json:"message"`
}

// ChatReply wraps the orchestrator response with the resolved session id.
type ChatReply struct {
	SessionID string `json:"session_id"`
	model.ChatResponse
}

// ChatHandler handles chat endpoints.
type ChatHandler struct {
	sessions  *session.Manager
	publisher *events.Publisher
	logger    *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(sessions *session.Manager, publisher *events.Publisher, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		sessions:  sessions,
		publisher: publisher,
		logger:    log,
	}
}

// Chat handles POST /api/v1/chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := validateMessage(req.Message); err != "" {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	sess := h.sessions.GetOrCreate(req.SessionID)

	start := time.Now()
	resp := sess.Process(r.Context(), req.Message)

	h.publisher.PublishTurn(r.Context(), events.TurnEvent{
		SessionID:  sess.ID,
		Intent:     resp.Intent,
		FormActive: resp.FormActive,
		Sources:    len(resp.Sources),
		DurationMs: time.Since(start).Milliseconds(),
		Timestamp:  time.Now(),
	})

	writeJSON(w, http.StatusOK, ChatReply{
		SessionID:    sess.ID,
		ChatResponse: *resp,
	})
}

// ClearHistory handles DELETE /api/v1/chat/history
func (h *ChatHandler) ClearHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	sess, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	sess.Clear()
	writeJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

// History handles GET /api/v1/chat/history
func (h *ChatHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		writeError(w, http.StatusBadRequest, "session_id is required")
		return
	}

	sess, err := h.sessions.Get(r.Context(), sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   sess.History(),
	})
}

func validateMessage(content string) string {
	if content == "" {
		return "message cannot be empty"
	}
	if len(content) > maxMessageBytes {
		return "message exceeds maximum length"
	}
	if !utf8.ValidString(content) {
		return "message must be valid UTF-8"
	}
	return ""
}
