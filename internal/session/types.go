package session

import "time"

// CreateRequest defines payload for creating a new session. An empty
// ConversationID starts a fresh conversation.
type CreateRequest struct {
	ConversationID string `json:"conversation_id"`
	Cloud          bool   `json:"cloud"`
	Muted          bool   `json:"muted"`
}

// CreateResponse returns created session metadata.
type CreateResponse struct {
	SessionID       string    `json:"session_id"`
	ConversationID  string    `json:"conversation_id"`
	Status          Status    `json:"status"`
	Cloud           bool      `json:"cloud"`
	Muted           bool      `json:"muted"`
	StartedAt       time.Time `json:"started_at"`
	LastActivityAt  time.Time `json:"last_activity_at"`
	InactivityTTLMS int64     `json:"inactivity_ttl_ms"`
}
