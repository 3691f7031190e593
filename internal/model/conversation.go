// Package model defines data structures for the consulting chatbot.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Role represents the role of a message sender.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message represents a single conversation message. Messages are owned by
// their conversation and are append-only.
type Message struct {
	ID        string            `json:"id"`
	Role      Role              `json:"role"`
	Content   string            `json:"content"`
	Intent    Intent            `json:"intent,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// NewMessage creates a message with a fresh id and timestamp.
func NewMessage(role Role, content string) Message {
	return Message{
		ID:        uuid.Must(uuid.NewV7()).String(),
		Role:      role,
		Content:   content,
		CreatedAt: time.Now(),
	}
}

// Conversation is an ordered, append-only sequence of messages for one session.
type Conversation struct {
	ID        string            `json:"id"`
	Messages  []Message         `json:"messages"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
	Metadata  map[string]string `json:"metadata,omitempty"`
}

// NewConversation creates an empty conversation.
func NewConversation(id string) *Conversation {
	if id == "" {
		id = uuid.Must(uuid.NewV7()).String()
	}
	now := time.Now()
	return &Conversation{
		ID:        id,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Append adds a message and advances the updated timestamp.
func (c *Conversation) Append(msg Message) {
	c.Messages = append(c.Messages, msg)
	c.UpdatedAt = time.Now()
}

// Context renders the last maxExchanges user+assistant pairs as
// "Người dùng|Bot: content" lines. Returns "" when there is no history
// beyond the current message.
func (c *Conversation) Context(maxExchanges int) string {
	if len(c.Messages) <= 1 {
		return ""
	}

	recent := c.Messages
	if n := maxExchanges * 2; len(recent) > n {
		recent = recent[len(recent)-n:]
	}

	parts := make([]string, 0, len(recent))
	for _, msg := range recent {
		role := "Bot"
		if msg.Role == RoleUser {
			role = "Người dùng"
		}
		parts = append(parts, fmt.Sprintf("%s: %s", role, msg.Content))
	}
	return strings.Join(parts, "\n")
}

// Clear drops all messages. The conversation id survives.
func (c *Conversation) Clear() {
	c.Messages = nil
	c.UpdatedAt = time.Now()
}

// IntentDistribution counts assistant messages per classified intent.
func (c *Conversation) IntentDistribution() map[Intent]int {
	dist := make(map[Intent]int)
	for _, msg := range c.Messages {
		if msg.Role == RoleAssistant && msg.Intent != "" {
			dist[msg.Intent]++
		}
	}
	return dist
}
