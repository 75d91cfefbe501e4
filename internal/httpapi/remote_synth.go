package httpapi

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/ialtaf14/Nova-AI/internal/protocol"
	"github.com/ialtaf14/Nova-AI/internal/speech"
)

var errConnectionClosed = errors.New("websocket connection closed")

// remoteSynthesizer delegates speech to the websocket client. Each unit is
// announced with speech_enqueue and counts as played once the client answers
// with client_speech_done.
type remoteSynthesizer struct {
	view *wsView

	// announce orders speech_enqueue against speech_cancel.
	announce sync.Mutex

	mu      sync.Mutex
	voices  []speech.Voice
	waiting map[string]chan struct{}
}

func newRemoteSynthesizer(view *wsView) *remoteSynthesizer {
	return &remoteSynthesizer{view: view, waiting: make(map[string]chan struct{})}
}

func (r *remoteSynthesizer) Voices(context.Context) ([]speech.Voice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]speech.Voice(nil), r.voices...), nil
}

func (r *remoteSynthesizer) Speak(ctx context.Context, u speech.Unit) error {
	id := uuid.NewString()
	played := make(chan struct{})
	r.mu.Lock()
	r.waiting[id] = played
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		delete(r.waiting, id)
		r.mu.Unlock()
	}()

	r.announce.Lock()
	if err := ctx.Err(); err != nil {
		r.announce.Unlock()
		return err
	}
	sent := r.view.send(protocol.SpeechEnqueue{
		Type:      protocol.TypeSpeechEnqueue,
		SessionID: r.view.sessionID,
		UnitID:    id,
		Text:      u.Text,
		Voice:     protocol.Voice{Name: u.Voice.Name, Locale: u.Voice.Locale, Gender: u.Voice.Gender},
		Rate:      u.Rate,
		Lang:      string(u.Lang),
	})
	r.announce.Unlock()
	if !sent {
		return errConnectionClosed
	}

	select {
	case <-played:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-r.view.ctx.Done():
		return errConnectionClosed
	}
}

func (r *remoteSynthesizer) CancelAll() error {
	r.announce.Lock()
	defer r.announce.Unlock()
	if !r.view.send(protocol.SpeechCancel{Type: protocol.TypeSpeechCancel, SessionID: r.view.sessionID}) {
		return errConnectionClosed
	}
	return nil
}

func (r *remoteSynthesizer) setVoices(voices []protocol.Voice) {
	out := make([]speech.Voice, 0, len(voices))
	for _, v := range voices {
		if v.Name == "" && v.Locale == "" {
			continue
		}
		out = append(out, speech.Voice{Name: v.Name, Locale: v.Locale, Gender: v.Gender})
	}
	r.mu.Lock()
	r.voices = out
	r.mu.Unlock()
}

func (r *remoteSynthesizer) done(unitID string) {
	r.mu.Lock()
	played, ok := r.waiting[unitID]
	delete(r.waiting, unitID)
	r.mu.Unlock()
	if ok {
		close(played)
	}
}
