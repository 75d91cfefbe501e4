package transcript

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryStore keeps records in process, grouped by conversation.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[string][]Record
}

func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{records: make(map[string][]Record)}
}

func (s *InMemoryStore) Save(_ context.Context, record Record) error {
	record = withDefaults(record)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[record.ConversationID] = append(s.records[record.ConversationID], record)
	return nil
}

func (s *InMemoryStore) Recent(_ context.Context, conversationID string, limit int) ([]Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	arr := s.records[conversationID]
	if len(arr) == 0 {
		return nil, nil
	}
	if limit <= 0 || limit > len(arr) {
		limit = len(arr)
	}
	return append([]Record(nil), arr[len(arr)-limit:]...), nil
}

func (s *InMemoryStore) Close() error { return nil }

func withDefaults(record Record) Record {
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}
	return record
}
