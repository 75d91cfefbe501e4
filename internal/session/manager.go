// Package session tracks websocket chat sessions served by the gateway.
package session

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusActive Status = "active"
	StatusEnded  Status = "ended"
)

var ErrNotFound = errors.New("session not found")

// Session is one client connection to a conversation. Several sessions may
// resume the same conversation over time.
type Session struct {
	ID                string    `json:"session_id"`
	ConversationID    string    `json:"conversation_id"`
	Status            Status    `json:"status"`
	Cloud             bool      `json:"cloud"`
	Muted             bool      `json:"muted"`
	ActiveTurnID      string    `json:"active_turn_id"`
	TurnCount         int       `json:"turn_count"`
	InterruptionCount int       `json:"interruption_count"`
	StartedAt         time.Time `json:"started_at"`
	LastActivityAt    time.Time `json:"last_activity_at"`
}

type Manager struct {
	mu                sync.RWMutex
	sessions          map[string]*Session
	inactivityTimeout time.Duration
	onExpire          func(*Session)
}

func NewManager(inactivityTimeout time.Duration) *Manager {
	if inactivityTimeout <= 0 {
		inactivityTimeout = 10 * time.Minute
	}
	return &Manager{
		sessions:          make(map[string]*Session),
		inactivityTimeout: inactivityTimeout,
	}
}

func (m *Manager) InactivityTimeout() time.Duration { return m.inactivityTimeout }

// SetExpireHook registers a callback for sessions ended by the janitor.
func (m *Manager) SetExpireHook(hook func(*Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onExpire = hook
}

func (m *Manager) Create(req CreateRequest) *Session {
	now := time.Now().UTC()
	conversationID := strings.TrimSpace(req.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	s := &Session{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Status:         StatusActive,
		Cloud:          req.Cloud,
		Muted:          req.Muted,
		StartedAt:      now,
		LastActivityAt: now,
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return clone(s)
}

func (m *Manager) Get(sessionID string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

// List returns active sessions, oldest first.
func (m *Manager) List() []*Session {
	m.mu.RLock()
	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			out = append(out, clone(s))
		}
	}
	m.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

func (m *Manager) Touch(sessionID string) error {
	return m.update(sessionID, func(*Session) {})
}

func (m *Manager) StartTurn(sessionID, turnID string) error {
	return m.update(sessionID, func(s *Session) {
		s.ActiveTurnID = turnID
		s.TurnCount++
	})
}

// FinishTurn clears the active turn if it is still turnID.
func (m *Manager) FinishTurn(sessionID, turnID string) error {
	return m.update(sessionID, func(s *Session) {
		if s.ActiveTurnID == turnID {
			s.ActiveTurnID = ""
		}
	})
}

func (m *Manager) Interrupt(sessionID, turnID string) error {
	return m.update(sessionID, func(s *Session) {
		s.InterruptionCount++
		if s.ActiveTurnID == turnID {
			s.ActiveTurnID = ""
		}
	})
}

// SetPreferences records the session's cloud and mute toggles so a
// reconnecting client can restore them.
func (m *Manager) SetPreferences(sessionID string, cloud, muted bool) error {
	return m.update(sessionID, func(s *Session) {
		s.Cloud = cloud
		s.Muted = muted
	})
}

func (m *Manager) End(sessionID string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	s.Status = StatusEnded
	s.ActiveTurnID = ""
	s.LastActivityAt = time.Now().UTC()
	return clone(s), nil
}

func (m *Manager) StartJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				m.expireInactive()
			}
		}
	}()
}

func (m *Manager) ActiveCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, s := range m.sessions {
		if s.Status == StatusActive {
			count++
		}
	}
	return count
}

func (m *Manager) update(sessionID string, fn func(*Session)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[sessionID]
	if !ok {
		return ErrNotFound
	}
	fn(s)
	s.LastActivityAt = time.Now().UTC()
	return nil
}

func (m *Manager) expireInactive() {
	now := time.Now().UTC()
	var expired []*Session

	m.mu.Lock()
	for id, s := range m.sessions {
		if s.Status != StatusActive {
			if now.Sub(s.LastActivityAt) >= m.inactivityTimeout {
				delete(m.sessions, id)
			}
			continue
		}
		if now.Sub(s.LastActivityAt) < m.inactivityTimeout {
			continue
		}
		s.Status = StatusEnded
		s.ActiveTurnID = ""
		s.LastActivityAt = now
		expired = append(expired, clone(s))
	}
	hook := m.onExpire
	m.mu.Unlock()

	if hook != nil {
		for _, s := range expired {
			hook(s)
		}
	}
}

func clone(s *Session) *Session {
	c := *s
	return &c
}
