// Package transcript records what was said in a conversation.
package transcript

import (
	"context"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Record is one user prompt or assistant response. Interrupted marks a
// response that was cut off by a stop or a newer turn. PIIRedacted marks
// content that went through Redact and had something masked.
type Record struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	TurnID         string    `json:"turn_id"`
	Role           string    `json:"role"`
	Content        string    `json:"content"`
	Lang           string    `json:"lang,omitempty"`
	Interrupted    bool      `json:"interrupted"`
	PIIRedacted    bool      `json:"pii_redacted"`
	CreatedAt      time.Time `json:"created_at"`
}

// Store persists and retrieves transcript records.
type Store interface {
	Save(ctx context.Context, record Record) error
	// Recent returns up to limit records of a conversation, oldest first.
	Recent(ctx context.Context, conversationID string, limit int) ([]Record, error)
	Close() error
}
