package speech

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/ialtaf14/Nova-AI/internal/lang"
)

const voiceListTimeout = 5 * time.Second

// QueueConfig tunes a Queue.
type QueueConfig struct {
	Rate   float64
	Region string
	// OnUnit observes every unit accepted for playback.
	OnUnit func(Unit)
	// OnStop observes every StopAll call.
	OnStop func()
}

// Queue speaks units one at a time in submission order on a single worker
// goroutine. StopAll cancels the unit in flight and drops everything pending.
type Queue struct {
	synth  Synthesizer
	cfg    QueueConfig
	logger zerolog.Logger

	mu            sync.Mutex
	pending       []Unit
	playing       bool
	cancelCurrent context.CancelFunc
	closed        bool

	voicesMu     sync.Mutex
	voices       []Voice
	voicesLoaded bool
	warnedSilent bool

	wake chan struct{}
	done chan struct{}
}

// NewQueue starts the playback worker and loads the voice list in the
// background. A nil synth yields a silent queue.
func NewQueue(synth Synthesizer, cfg QueueConfig, logger zerolog.Logger) *Queue {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultRate
	}
	if cfg.Region == "" {
		cfg.Region = DefaultRegion
	}
	q := &Queue{
		synth:  synth,
		cfg:    cfg,
		logger: logger.With().Str("component", "speech_queue").Logger(),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	go q.run()
	if synth != nil {
		go q.Voices()
	}
	return q
}

// Enqueue sanitizes sentence, binds it to the voice for tag and schedules it.
// It never blocks on playback and reports whether a unit was queued.
func (q *Queue) Enqueue(sentence string, tag lang.Tag) bool {
	text := Sanitize(sentence)
	if text == "" || q.synth == nil {
		return false
	}
	voice, ok := q.Resolve(tag)
	if !ok {
		q.warnSilentOnce()
		return false
	}
	unit := Unit{Text: text, Voice: voice, Rate: q.cfg.Rate, Lang: tag}

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, unit)
	q.mu.Unlock()

	if q.cfg.OnUnit != nil {
		q.cfg.OnUnit(unit)
	}
	q.signal()
	return true
}

// StopAll halts current playback and discards pending units. Safe to call at
// any time, any number of times.
func (q *Queue) StopAll() {
	q.mu.Lock()
	q.pending = nil
	cancel := q.cancelCurrent
	q.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if q.synth != nil {
		if err := q.synth.CancelAll(); err != nil && !errors.Is(err, ErrUnavailable) {
			q.logger.Debug().Err(err).Msg("synthesizer cancel failed")
		}
	}
	if q.cfg.OnStop != nil {
		q.cfg.OnStop()
	}
}

// IsSpeaking reports whether a unit is playing or waiting to play.
func (q *Queue) IsSpeaking() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.playing || len(q.pending) > 0
}

// Resolve returns the preferred voice for tag from the cached voice list.
func (q *Queue) Resolve(tag lang.Tag) (Voice, bool) {
	return ResolveVoice(q.Voices(), tag, q.cfg.Region)
}

// Voices lists the engine voices, loading them on first use.
func (q *Queue) Voices() []Voice {
	if q.synth == nil {
		return nil
	}
	q.voicesMu.Lock()
	defer q.voicesMu.Unlock()
	if q.voicesLoaded {
		return q.voices
	}

	ctx, cancel := context.WithTimeout(context.Background(), voiceListTimeout)
	defer cancel()
	voices, err := q.synth.Voices(ctx)
	if err != nil {
		q.logger.Warn().Err(err).Msg("listing speech voices failed")
	}
	q.voices = voices
	q.voicesLoaded = true
	if len(voices) > 0 {
		q.logger.Info().Int("voices", len(voices)).Msg("speech voices loaded")
	}
	return q.voices
}

// RefreshVoices drops the cached voice list so the next lookup reloads it.
func (q *Queue) RefreshVoices() {
	q.voicesMu.Lock()
	defer q.voicesMu.Unlock()
	q.voices = nil
	q.voicesLoaded = false
	q.warnedSilent = false
}

// Close stops playback and the worker. The queue rejects units afterwards.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	q.mu.Unlock()

	q.StopAll()
	q.signal()
	<-q.done
}

func (q *Queue) warnSilentOnce() {
	q.voicesMu.Lock()
	defer q.voicesMu.Unlock()
	if q.warnedSilent {
		return
	}
	q.warnedSilent = true
	q.logger.Warn().Msg("no speech voices available; speaking is disabled")
}

func (q *Queue) signal() {
	select {
	case q.wake <- struct{}{}:
	default:
	}
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		unit, ctx, ok := q.next()
		if !ok {
			return
		}
		err := q.synth.Speak(ctx, unit)

		q.mu.Lock()
		cancel := q.cancelCurrent
		q.playing = false
		q.cancelCurrent = nil
		q.mu.Unlock()
		if cancel != nil {
			cancel()
		}

		if err != nil && !errors.Is(err, context.Canceled) {
			q.logger.Warn().Err(err).Str("voice", unit.Voice.Name).Msg("speech playback failed")
		}
	}
}

// next blocks until a unit is pending and claims it together with a
// cancellable context, or returns false once the queue is closed.
func (q *Queue) next() (Unit, context.Context, bool) {
	for {
		q.mu.Lock()
		if q.closed {
			q.mu.Unlock()
			return Unit{}, nil, false
		}
		if len(q.pending) > 0 {
			unit := q.pending[0]
			q.pending = q.pending[1:]
			ctx, cancel := context.WithCancel(context.Background())
			q.cancelCurrent = cancel
			q.playing = true
			q.mu.Unlock()
			return unit, ctx, true
		}
		q.mu.Unlock()
		<-q.wake
	}
}
