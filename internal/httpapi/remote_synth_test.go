package httpapi

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ialtaf14/Nova-AI/internal/protocol"
	"github.com/ialtaf14/Nova-AI/internal/session"
	"github.com/ialtaf14/Nova-AI/internal/speech"
)

func newTestRemoteSynth(t *testing.T) (*remoteSynthesizer, chan any) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	outbound := make(chan any, 8)
	view := &wsView{
		ctx:       ctx,
		sessionID: "sess-1",
		outbound:  outbound,
		sessions:  session.NewManager(time.Minute),
	}
	return newRemoteSynthesizer(view), outbound
}

func drain(ch chan any) []any {
	var out []any
	for {
		select {
		case msg := <-ch:
			out = append(out, msg)
		default:
			return out
		}
	}
}

func TestRemoteSpeakAfterCancelIsNotAnnounced(t *testing.T) {
	r, outbound := newTestRemoteSynth(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, r.CancelAll())

	err := r.Speak(ctx, speech.Unit{Text: "stale sentence"})
	require.ErrorIs(t, err, context.Canceled)

	msgs := drain(outbound)
	require.Len(t, msgs, 1)
	_, ok := msgs[0].(protocol.SpeechCancel)
	assert.True(t, ok, "only the cancel reaches the client, got %T", msgs[0])
}

func TestRemoteSpeakWaitsForClientAck(t *testing.T) {
	r, outbound := newTestRemoteSynth(t)

	done := make(chan error, 1)
	go func() { done <- r.Speak(context.Background(), speech.Unit{Text: "Hello there."}) }()

	var enqueue protocol.SpeechEnqueue
	select {
	case msg := <-outbound:
		var ok bool
		enqueue, ok = msg.(protocol.SpeechEnqueue)
		require.True(t, ok, "got %T", msg)
	case <-time.After(2 * time.Second):
		t.Fatal("speech_enqueue not sent")
	}
	assert.Equal(t, "Hello there.", enqueue.Text)

	select {
	case <-done:
		t.Fatal("Speak returned before the client finished")
	case <-time.After(20 * time.Millisecond):
	}

	r.done(enqueue.UnitID)
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Speak did not return after client_speech_done")
	}
}
