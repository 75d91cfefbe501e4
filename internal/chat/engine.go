// Package chat drives one conversation: it streams a response per turn,
// renders it as it grows, feeds finished sentences to speech and handles
// interruption by the user or by a newer turn.
package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/ialtaf14/Nova-AI/internal/backend"
	"github.com/ialtaf14/Nova-AI/internal/lang"
	"github.com/ialtaf14/Nova-AI/internal/observability"
	"github.com/ialtaf14/Nova-AI/internal/reliability"
	"github.com/ialtaf14/Nova-AI/internal/transcript"
)

const (
	readBufferSize = 4096
	persistTimeout = 3 * time.Second
)

var ErrUnknownModel = errors.New("unknown model")

// Speaker is the speech queue as seen by the engine.
type Speaker interface {
	Enqueue(sentence string, tag lang.Tag) bool
	StopAll()
	IsSpeaking() bool
}

type Options struct {
	Backend backend.Backend
	// Speech may be nil; the engine then runs silently.
	Speech Speaker
	View   View
	// Store may be nil to skip transcript persistence.
	Store          transcript.Store
	Metrics        *observability.Metrics
	Logger         zerolog.Logger
	ConversationID string
	Muted          bool
	Cloud          bool
}

// Engine is the turn controller for a single conversation. It holds at most
// one in-flight turn.
type Engine struct {
	backend        backend.Backend
	speech         Speaker
	view           View
	store          transcript.Store
	metrics        *observability.Metrics
	logger         zerolog.Logger
	conversationID string

	coord   Coordinator
	loops   sync.WaitGroup
	pending sync.WaitGroup

	// mu guards the settings below. When both are needed coord.mu is taken first.
	mu       sync.Mutex
	muted    bool
	cloud    bool
	language lang.Tag
	closed   bool
}

func NewEngine(opts Options) (*Engine, error) {
	if opts.Backend == nil {
		return nil, errors.New("chat engine requires a backend")
	}
	view := opts.View
	if view == nil {
		view = NopView{}
	}
	conversationID := strings.TrimSpace(opts.ConversationID)
	if conversationID == "" {
		conversationID = uuid.NewString()
	}
	return &Engine{
		backend:        opts.Backend,
		speech:         opts.Speech,
		view:           view,
		store:          opts.Store,
		metrics:        opts.Metrics,
		logger:         opts.Logger.With().Str("component", "chat").Str("conversation_id", conversationID).Logger(),
		conversationID: conversationID,
		muted:          opts.Muted,
		cloud:          opts.Cloud,
		language:       lang.English,
	}, nil
}

func (e *Engine) ConversationID() string { return e.conversationID }

// Send starts a turn for text, superseding any turn in flight. Blank input is
// ignored and reported with ok=false.
func (e *Engine) Send(ctx context.Context, text string) (turnID string, ok bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", false
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return "", false
	}
	cloud := e.cloud
	e.loops.Add(1)
	e.mu.Unlock()

	tag := lang.Classify(text)
	turnCtx, cancel := context.WithCancel(ctx)
	turn := newTurn(text, tag, cancel)

	e.coord.Begin(turn, func(prev *Turn) {
		e.mu.Lock()
		e.language = tag
		closing := e.closed
		e.mu.Unlock()
		if closing {
			// Close already ran Stop; the read loop must not outlive it.
			turn.cancel()
		}

		if prev != nil || (e.speech != nil && e.speech.IsSpeaking()) {
			e.stopSpeech()
		}
		if prev != nil {
			e.view.Interrupted(prev.ID)
			e.persistReply(prev, true)
			e.metrics.ObserveTurn(string(StateCancelled))
			e.logger.Debug().Str("turn_id", prev.ID).Msg("turn superseded")
		}
		e.view.TurnStarted(turn.ID, text)
	})

	e.persist(transcript.Record{
		ConversationID: e.conversationID,
		TurnID:         turn.ID,
		Role:           transcript.RoleUser,
		Content:        text,
		Lang:           string(tag),
	})
	e.logger.Debug().Str("turn_id", turn.ID).Str("lang", string(tag)).Bool("cloud", cloud).Msg("turn started")

	go e.readLoop(turnCtx, turn, cloud)
	return turn.ID, true
}

// Stop interrupts the turn in flight. It returns false when there is none.
func (e *Engine) Stop() bool {
	t := e.coord.Stop(func(t *Turn) {
		e.stopSpeech()
		e.view.Interrupted(t.ID)
		e.persistReply(t, true)
		e.metrics.ObserveTurn(string(StateCancelled))
	})
	if t == nil {
		return false
	}
	e.coord.Finalize(t, e.view.Ready)
	e.logger.Debug().Str("turn_id", t.ID).Msg("turn stopped")
	return true
}

// StopSpeech silences speech without touching the turn in flight.
func (e *Engine) StopSpeech() {
	e.coord.locked(e.stopSpeech)
}

func (e *Engine) State() State { return e.coord.State() }

// Active returns the id and state of the turn in flight.
func (e *Engine) Active() (turnID string, state State, ok bool) { return e.coord.Active() }

// Language returns the tag of the most recent user input.
func (e *Engine) Language() lang.Tag {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.language
}

// SetMuted toggles speech for new sentences. Muting also stops current speech.
func (e *Engine) SetMuted(muted bool) {
	e.coord.locked(func() {
		e.mu.Lock()
		e.muted = muted
		e.mu.Unlock()
		if muted {
			e.stopSpeech()
		}
	})
}

func (e *Engine) Muted() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.muted
}

// SetCloud selects the cloud model for subsequent turns and posts a notice
// when the setting changes.
func (e *Engine) SetCloud(cloud bool) {
	e.coord.locked(func() {
		e.mu.Lock()
		changed := e.cloud != cloud
		e.cloud = cloud
		e.mu.Unlock()
		if !changed {
			return
		}
		if cloud {
			e.view.Notice(CloudNotice)
		} else {
			e.view.Notice(LocalNotice)
		}
	})
}

func (e *Engine) Cloud() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cloud
}

// SwitchModel asks the backend to use the local model behind alias. The
// backend reply is an acknowledgement and is discarded.
func (e *Engine) SwitchModel(ctx context.Context, alias string) error {
	model, ok := backend.LookupModel(alias)
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownModel, alias)
	}
	body, err := e.backend.Submit(ctx, backend.Request{Query: backend.SwitchQuery(model.Alias)})
	if err != nil {
		return fmt.Errorf("switch model to %s: %w", model.Alias, err)
	}
	_, err = io.Copy(io.Discard, body)
	_ = body.Close()
	if err != nil {
		return fmt.Errorf("switch model to %s: %w", model.Alias, err)
	}
	e.coord.locked(func() { e.view.Notice(ModelNotice(model)) })
	e.logger.Info().Str("model", model.ID).Msg("model switched")
	return nil
}

// Wait blocks until every read loop started so far has returned.
func (e *Engine) Wait() {
	e.loops.Wait()
}

// Close interrupts the turn in flight and waits for background work. Send
// is ignored afterwards.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.mu.Unlock()

	e.Stop()
	e.loops.Wait()
	e.pending.Wait()
}

func (e *Engine) readLoop(ctx context.Context, turn *Turn, cloud bool) {
	defer e.loops.Done()
	defer turn.cancel()
	tok := turn.Token()

	body, err := e.backend.Submit(ctx, backend.Request{Query: turn.Input, UseCloud: cloud})
	if err != nil {
		e.fail(ctx, tok, err)
		return
	}
	defer body.Close()
	stop := context.AfterFunc(ctx, func() { _ = body.Close() })
	defer stop()

	var dec utf8Decoder
	buf := make([]byte, readBufferSize)
	for {
		n, rerr := body.Read(buf)
		if n > 0 {
			if text := dec.decode(buf[:n]); text != "" && !e.apply(tok, text) {
				return
			}
		}
		if errors.Is(rerr, io.EOF) {
			if text := dec.flush(); text != "" && !e.apply(tok, text) {
				return
			}
			e.complete(tok)
			return
		}
		if rerr != nil {
			e.fail(ctx, tok, rerr)
			return
		}
	}
}

// apply folds one decoded chunk into the turn. It returns false once the
// turn is no longer current.
func (e *Engine) apply(tok Token, text string) bool {
	return e.coord.WithCurrent(tok, func(t *Turn) {
		if t.state == StateSending {
			t.state = StateStreaming
			e.metrics.ObserveFirstChunkLatency(time.Since(t.StartedAt))
		}
		t.buffer.WriteString(text)
		e.metrics.ObserveChunk()
		e.view.Render(t.ID, t.content())

		sentences := t.segmenter.Push(text)
		if e.Muted() {
			return
		}
		for _, s := range sentences {
			e.speak(t, s)
		}
	})
}

func (e *Engine) complete(tok Token) {
	e.coord.Retire(tok, func(t *Turn) {
		rest := t.segmenter.Finalize()
		if !e.Muted() {
			for _, s := range rest {
				e.speak(t, s)
			}
		}
		t.state = StateCompleted
		e.view.Ready()
		e.persistReply(t, false)
		e.metrics.ObserveTurn(string(StateCompleted))
		e.metrics.ObserveTurnDuration(time.Since(t.StartedAt))
		e.logger.Debug().Str("turn_id", t.ID).Int("chars", t.buffer.Len()).Msg("turn completed")
	})
}

func (e *Engine) fail(ctx context.Context, tok Token, err error) {
	kind := reliability.Classify(err)
	if ctx.Err() != nil || kind == reliability.KindCancellation {
		e.coord.Retire(tok, func(t *Turn) {
			t.state = StateCancelled
			e.stopSpeech()
			e.view.Interrupted(t.ID)
			e.view.Ready()
			e.persistReply(t, true)
			e.metrics.ObserveTurn(string(StateCancelled))
		})
		return
	}

	e.coord.Retire(tok, func(t *Turn) {
		t.state = StateFailed
		e.view.Failed(t.ID, "Error: "+err.Error())
		e.view.Ready()
		e.metrics.ObserveTurn(string(StateFailed))
		e.metrics.ObserveBackendError(string(kind))
		e.logger.Error().Err(err).Str("turn_id", t.ID).Str("kind", string(kind)).Msg("chat turn failed")
	})
}

// speak must be called under the coordinator lock.
func (e *Engine) speak(t *Turn, sentence string) {
	if e.speech == nil {
		return
	}
	if !e.speech.Enqueue(sentence, t.Lang) {
		return
	}
	e.metrics.ObserveSpokenUnit(string(t.Lang))
	if !t.spoke {
		t.spoke = true
		e.metrics.ObserveFirstSpeech(time.Since(t.StartedAt))
	}
}

func (e *Engine) stopSpeech() {
	if e.speech == nil {
		return
	}
	if e.speech.IsSpeaking() {
		e.metrics.ObserveSpeechStop()
	}
	e.speech.StopAll()
}

// persistReply must be called under the coordinator lock.
func (e *Engine) persistReply(t *Turn, interrupted bool) {
	content := t.content()
	if content == "" {
		return
	}
	e.persist(transcript.Record{
		ConversationID: e.conversationID,
		TurnID:         t.ID,
		Role:           transcript.RoleAssistant,
		Content:        content,
		Lang:           string(t.Lang),
		Interrupted:    interrupted,
	})
}

func (e *Engine) persist(record transcript.Record) {
	if e.store == nil {
		return
	}
	record.Content, record.PIIRedacted = transcript.Redact(record.Content)
	e.pending.Add(1)
	go func(r transcript.Record) {
		defer e.pending.Done()
		saveCtx, cancel := context.WithTimeout(context.Background(), persistTimeout)
		defer cancel()
		if err := e.store.Save(saveCtx, r); err != nil {
			e.metrics.ObserveSessionEvent("transcript_save_failed")
			e.logger.Warn().Err(err).Str("turn_id", r.TurnID).Msg("transcript save failed")
		}
	}(record)
}
