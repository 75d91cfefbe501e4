package chat

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ialtaf14/Nova-AI/internal/lang"
	"github.com/ialtaf14/Nova-AI/internal/segment"
)

// State is the lifecycle position of a turn.
type State string

const (
	StateIdle      State = "idle"
	StateSending   State = "sending"
	StateStreaming State = "streaming"
	StateCompleted State = "completed"
	StateCancelled State = "cancelled"
	StateFailed    State = "failed"
)

// Terminal reports whether no further transitions are possible.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateCancelled || s == StateFailed
}

// Token identifies one generation of the active-turn slot. Tokens only grow.
type Token uint64

// Turn is one prompt and its streamed response. Everything below the exported
// identity fields is owned by the Coordinator and only touched under its lock.
type Turn struct {
	ID        string
	Input     string
	Lang      lang.Tag
	StartedAt time.Time

	token  Token
	cancel context.CancelFunc

	state     State
	buffer    strings.Builder
	segmenter *segment.Segmenter
	finalized bool
	spoke     bool
}

func newTurn(input string, tag lang.Tag, cancel context.CancelFunc) *Turn {
	return &Turn{
		ID:        uuid.NewString(),
		Input:     input,
		Lang:      tag,
		StartedAt: time.Now(),
		cancel:    cancel,
		state:     StateSending,
		segmenter: segment.New(),
	}
}

// Token returns the generation assigned when the turn was installed.
func (t *Turn) Token() Token { return t.token }

func (t *Turn) content() string { return t.buffer.String() }
