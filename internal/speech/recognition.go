package speech

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"

	"github.com/rs/zerolog"
)

// RecognitionHandlers receive recognizer lifecycle callbacks. Any may be nil.
type RecognitionHandlers struct {
	OnStart  func()
	OnEnd    func()
	OnResult func(transcript string)
	OnError  func(err error)
}

// Recognizer captures one utterance per Start call.
type Recognizer interface {
	Start(ctx context.Context, h RecognitionHandlers) error
	Listening() bool
}

// CommandRecognizer runs an external program that records one utterance and
// prints its transcript on stdout.
type CommandRecognizer struct {
	argv   []string
	logger zerolog.Logger

	mu        sync.Mutex
	listening bool
}

// NewCommandRecognizer parses a whitespace-separated command line. An empty
// command yields ErrUnavailable.
func NewCommandRecognizer(command string, logger zerolog.Logger) (*CommandRecognizer, error) {
	argv := strings.Fields(command)
	if len(argv) == 0 {
		return nil, fmt.Errorf("recognition command not configured: %w", ErrUnavailable)
	}
	if _, err := exec.LookPath(argv[0]); err != nil {
		return nil, fmt.Errorf("recognition command %q: %w", argv[0], ErrUnavailable)
	}
	return &CommandRecognizer{
		argv:   argv,
		logger: logger.With().Str("component", "recognizer").Logger(),
	}, nil
}

// Start launches the command in the background. It fails if a capture is
// already running.
func (r *CommandRecognizer) Start(ctx context.Context, h RecognitionHandlers) error {
	r.mu.Lock()
	if r.listening {
		r.mu.Unlock()
		return errors.New("recognition already running")
	}
	r.listening = true
	r.mu.Unlock()

	if h.OnStart != nil {
		h.OnStart()
	}
	go r.capture(ctx, h)
	return nil
}

func (r *CommandRecognizer) Listening() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listening
}

func (r *CommandRecognizer) capture(ctx context.Context, h RecognitionHandlers) {
	defer func() {
		r.mu.Lock()
		r.listening = false
		r.mu.Unlock()
		if h.OnEnd != nil {
			h.OnEnd()
		}
	}()

	cmd := exec.CommandContext(ctx, r.argv[0], r.argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		detail := strings.TrimSpace(stderr.String())
		if detail == "" {
			detail = err.Error()
		}
		err = fmt.Errorf("recognition failed: %s", detail)
		r.logger.Warn().Err(err).Msg("speech recognition error")
		if h.OnError != nil {
			h.OnError(err)
		}
		return
	}

	transcript := strings.TrimSpace(string(out))
	if transcript == "" {
		return
	}
	if h.OnResult != nil {
		h.OnResult(transcript)
	}
}
