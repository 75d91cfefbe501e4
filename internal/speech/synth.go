// Package speech turns finished sentences into queued, cancellable speech and
// picks a voice per language tag.
package speech

import (
	"context"
	"fmt"

	"github.com/ialtaf14/Nova-AI/internal/lang"
	"github.com/ialtaf14/Nova-AI/internal/reliability"
)

// ErrUnavailable reports that no synthesis or recognition engine can be used.
var ErrUnavailable = fmt.Errorf("speech: %w", reliability.ErrCapabilityUnavailable)

const (
	GenderFemale = "female"
	GenderMale   = "male"
)

// DefaultRate is the relative speaking rate used when none is configured.
const DefaultRate = 1.1

// Voice is one synthesis voice as reported by the engine.
type Voice struct {
	Name   string `json:"name"`
	Locale string `json:"locale"`
	Gender string `json:"gender,omitempty"`
}

// Unit is a sanitized sentence bound to the voice that will speak it.
// A zero Voice means the engine default.
type Unit struct {
	Text  string
	Voice Voice
	Rate  float64
	Lang  lang.Tag
}

// Synthesizer is the speech engine capability.
type Synthesizer interface {
	Voices(ctx context.Context) ([]Voice, error)
	// Speak blocks until the unit finished playing or ctx is cancelled.
	Speak(ctx context.Context, u Unit) error
	// CancelAll halts anything the engine is playing on its own.
	CancelAll() error
}
