package chat

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ialtaf14/Nova-AI/internal/backend"
	"github.com/ialtaf14/Nova-AI/internal/lang"
)

const (
	timeout = 2 * time.Second
	tick    = 5 * time.Millisecond
)

type viewEvent struct {
	kind   string
	turnID string
	text   string
}

type recordingView struct {
	mu     sync.Mutex
	events []viewEvent
}

func (v *recordingView) add(kind, turnID, text string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.events = append(v.events, viewEvent{kind: kind, turnID: turnID, text: text})
}

func (v *recordingView) TurnStarted(turnID, userText string) { v.add("started", turnID, userText) }
func (v *recordingView) Render(turnID, content string)       { v.add("render", turnID, content) }
func (v *recordingView) Interrupted(turnID string)           { v.add("interrupted", turnID, "") }
func (v *recordingView) Failed(turnID, message string)       { v.add("failed", turnID, message) }
func (v *recordingView) Ready()                              { v.add("ready", "", "") }
func (v *recordingView) Notice(text string)                  { v.add("notice", "", text) }

func (v *recordingView) snapshot() []viewEvent {
	v.mu.Lock()
	defer v.mu.Unlock()
	return append([]viewEvent(nil), v.events...)
}

func (v *recordingView) count(kind string) int {
	n := 0
	for _, ev := range v.snapshot() {
		if ev.kind == kind {
			n++
		}
	}
	return n
}

func (v *recordingView) lastRender(turnID string) string {
	out := ""
	for _, ev := range v.snapshot() {
		if ev.kind == "render" && ev.turnID == turnID {
			out = ev.text
		}
	}
	return out
}

type fakeSpeaker struct {
	mu    sync.Mutex
	units []string
	tags  []lang.Tag
	live  int
	stops int
}

func (s *fakeSpeaker) Enqueue(sentence string, tag lang.Tag) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.units = append(s.units, sentence)
	s.tags = append(s.tags, tag)
	s.live++
	return true
}

func (s *fakeSpeaker) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.live = 0
	s.stops++
}

func (s *fakeSpeaker) IsSpeaking() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live > 0
}

func (s *fakeSpeaker) spoken() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.units...)
}

func (s *fakeSpeaker) stopCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stops
}

// pipeBackend hands out one pipe per Submit so tests control what streams.
type pipeBackend struct {
	mu       sync.Mutex
	err      error
	requests []backend.Request
	writers  []*io.PipeWriter
}

func (b *pipeBackend) Submit(_ context.Context, req backend.Request) (io.ReadCloser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.requests = append(b.requests, req)
	if b.err != nil {
		return nil, b.err
	}
	pr, pw := io.Pipe()
	b.writers = append(b.writers, pw)
	return pr, nil
}

func (b *pipeBackend) stream(t *testing.T, i int) *io.PipeWriter {
	t.Helper()
	require.Eventually(t, func() bool {
		b.mu.Lock()
		defer b.mu.Unlock()
		return len(b.writers) > i
	}, timeout, tick)
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.writers[i]
}

func (b *pipeBackend) request(i int) backend.Request {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.requests[i]
}
