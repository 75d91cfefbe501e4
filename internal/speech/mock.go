package speech

import (
	"context"
	"sync"
	"time"
)

// MockSynthesizer records units instead of playing them. Each Speak holds for
// Delay, or until cancelled.
type MockSynthesizer struct {
	Delay time.Duration

	mu          sync.Mutex
	voices      []Voice
	spoken      []Unit
	interrupted []Unit
	cancels     int
}

func NewMockSynthesizer(voices ...Voice) *MockSynthesizer {
	if len(voices) == 0 {
		voices = []Voice{
			{Name: "Rishi", Locale: "en_IN", Gender: GenderMale},
			{Name: "Lekha", Locale: "hi_IN", Gender: GenderFemale},
		}
	}
	return &MockSynthesizer{voices: voices}
}

func (m *MockSynthesizer) Voices(_ context.Context) ([]Voice, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Voice(nil), m.voices...), nil
}

func (m *MockSynthesizer) SetVoices(voices []Voice) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voices = append([]Voice(nil), voices...)
}

func (m *MockSynthesizer) Speak(ctx context.Context, u Unit) error {
	if m.Delay > 0 {
		timer := time.NewTimer(m.Delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			m.mu.Lock()
			m.interrupted = append(m.interrupted, u)
			m.mu.Unlock()
			return ctx.Err()
		case <-timer.C:
		}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spoken = append(m.spoken, u)
	return nil
}

func (m *MockSynthesizer) CancelAll() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancels++
	return nil
}

// Spoken returns the units that played to completion, in order.
func (m *MockSynthesizer) Spoken() []Unit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Unit(nil), m.spoken...)
}

// SpokenText returns the text of every completed unit, in order.
func (m *MockSynthesizer) SpokenText() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.spoken))
	for _, u := range m.spoken {
		out = append(out, u.Text)
	}
	return out
}

// Interrupted returns the units cut off by cancellation.
func (m *MockSynthesizer) Interrupted() []Unit {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Unit(nil), m.interrupted...)
}

func (m *MockSynthesizer) Cancels() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cancels
}
