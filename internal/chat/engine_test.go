package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ialtaf14/Nova-AI/internal/backend"
	"github.com/ialtaf14/Nova-AI/internal/lang"
	"github.com/ialtaf14/Nova-AI/internal/transcript"
)

type harness struct {
	engine  *Engine
	backend *pipeBackend
	view    *recordingView
	speaker *fakeSpeaker
	store   *transcript.InMemoryStore
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		backend: &pipeBackend{},
		view:    &recordingView{},
		speaker: &fakeSpeaker{},
		store:   transcript.NewInMemoryStore(),
	}
	engine, err := NewEngine(Options{
		Backend:        h.backend,
		Speech:         h.speaker,
		View:           h.view,
		Store:          h.store,
		Logger:         zerolog.Nop(),
		ConversationID: "conv-1",
	})
	require.NoError(t, err)
	h.engine = engine
	t.Cleanup(engine.Close)
	return h
}

func (h *harness) records(t *testing.T) []transcript.Record {
	t.Helper()
	out, err := h.store.Recent(context.Background(), "conv-1", 50)
	require.NoError(t, err)
	return out
}

func write(t *testing.T, h *harness, i int, chunks ...string) {
	t.Helper()
	w := h.backend.stream(t, i)
	for _, c := range chunks {
		_, err := w.Write([]byte(c))
		require.NoError(t, err)
	}
}

func TestEngineStreamsRendersAndSpeaks(t *testing.T) {
	h := newHarness(t)

	id, ok := h.engine.Send(context.Background(), "  how are you?  ")
	require.True(t, ok)
	assert.Equal(t, "how are you?", h.backend.request(0).Query)

	write(t, h, 0, "Hel", "lo! How a", "re you? I am", " fine.")
	require.NoError(t, h.backend.stream(t, 0).Close())
	h.engine.Wait()

	events := h.view.snapshot()
	require.NotEmpty(t, events)
	assert.Equal(t, viewEvent{kind: "started", turnID: id, text: "how are you?"}, events[0])
	assert.Equal(t, "Hello! How are you? I am fine.", h.view.lastRender(id))
	assert.Equal(t, "ready", events[len(events)-1].kind)
	assert.Equal(t, 1, h.view.count("ready"))
	assert.Zero(t, h.view.count("interrupted"))

	assert.Equal(t, []string{"Hello!", "How are you?", "I am fine."}, h.speaker.spoken())
	assert.Equal(t, StateCompleted, h.engine.State())
	_, _, active := h.engine.Active()
	assert.False(t, active)

	require.Eventually(t, func() bool { return len(h.records(t)) == 2 }, timeout, tick)
	records := h.records(t)
	roles := []string{records[0].Role, records[1].Role}
	assert.ElementsMatch(t, []string{transcript.RoleUser, transcript.RoleAssistant}, roles)
	for _, r := range records {
		assert.Equal(t, id, r.TurnID)
		assert.False(t, r.Interrupted)
		if r.Role == transcript.RoleAssistant {
			assert.Equal(t, "Hello! How are you? I am fine.", r.Content)
		}
	}
}

func TestEngineSpeaksTrailingRemainderOnce(t *testing.T) {
	h := newHarness(t)

	_, ok := h.engine.Send(context.Background(), "what is 2+2")
	require.True(t, ok)
	write(t, h, 0, "The answer is 4")
	require.NoError(t, h.backend.stream(t, 0).Close())
	h.engine.Wait()

	assert.Equal(t, []string{"The answer is 4"}, h.speaker.spoken())
}

func TestEngineRedactsPersistedTranscript(t *testing.T) {
	h := newHarness(t)

	id, ok := h.engine.Send(context.Background(), "my number is +91 98765 43210")
	require.True(t, ok)
	write(t, h, 0, "Saved +91 98765 43210 for you.")
	require.NoError(t, h.backend.stream(t, 0).Close())
	h.engine.Wait()

	assert.Equal(t, "Saved +91 98765 43210 for you.", h.view.lastRender(id), "display is not redacted")
	require.Eventually(t, func() bool { return len(h.records(t)) == 2 }, timeout, tick)
	for _, r := range h.records(t) {
		assert.True(t, r.PIIRedacted)
		assert.NotContains(t, r.Content, "98765")
		assert.Contains(t, r.Content, "[REDACTED_PHONE]")
	}
}

func TestEngineIgnoresBlankInput(t *testing.T) {
	h := newHarness(t)

	_, ok := h.engine.Send(context.Background(), " \n\t ")
	assert.False(t, ok)
	assert.Empty(t, h.view.snapshot())
	assert.Equal(t, StateIdle, h.engine.State())
}

func TestEngineSupersedeDiscardsStaleChunks(t *testing.T) {
	h := newHarness(t)

	first, ok := h.engine.Send(context.Background(), "tell me a story")
	require.True(t, ok)
	write(t, h, 0, "Once upon a time. ")
	require.Eventually(t, func() bool { return h.view.lastRender(first) != "" }, timeout, tick)

	second, ok := h.engine.Send(context.Background(), "never mind")
	require.True(t, ok)
	stopsAfterSupersede := h.speaker.stopCount()
	assert.GreaterOrEqual(t, stopsAfterSupersede, 1)

	// Late bytes for the old turn are either rejected by the closed pipe or
	// dropped by the token check.
	_, _ = h.backend.stream(t, 0).Write([]byte("There was a dragon. "))

	write(t, h, 1, "Okay. ")
	require.NoError(t, h.backend.stream(t, 1).Close())
	h.engine.Wait()

	assert.Equal(t, "Once upon a time. ", h.view.lastRender(first))
	assert.Equal(t, "Okay. ", h.view.lastRender(second))
	assert.Equal(t, []string{"Once upon a time.", "Okay."}, h.speaker.spoken())

	var sawSecondStart bool
	for _, ev := range h.view.snapshot() {
		if ev.kind == "started" && ev.turnID == second {
			sawSecondStart = true
		}
		if sawSecondStart {
			assert.NotEqual(t, first, ev.turnID, "old turn touched the view after supersede: %+v", ev)
		}
	}
	assert.Equal(t, 1, h.view.count("interrupted"))
	assert.Equal(t, 1, h.view.count("ready"))
	assert.Equal(t, StateCompleted, h.engine.State())

	require.Eventually(t, func() bool { return len(h.records(t)) == 4 }, timeout, tick)
	var interrupted []transcript.Record
	for _, r := range h.records(t) {
		if r.Interrupted {
			interrupted = append(interrupted, r)
		}
	}
	require.Len(t, interrupted, 1)
	assert.Equal(t, first, interrupted[0].TurnID)
	assert.Equal(t, "Once upon a time. ", interrupted[0].Content)
}

func TestEngineStopWhenIdleIsNoop(t *testing.T) {
	h := newHarness(t)

	assert.False(t, h.engine.Stop())
	assert.Empty(t, h.view.snapshot())
	assert.Zero(t, h.speaker.stopCount())
}

func TestEngineStopInterruptsTurn(t *testing.T) {
	h := newHarness(t)

	id, ok := h.engine.Send(context.Background(), "explain everything")
	require.True(t, ok)
	write(t, h, 0, "Partial answer")
	require.Eventually(t, func() bool { return h.view.lastRender(id) == "Partial answer" }, timeout, tick)

	require.True(t, h.engine.Stop())
	h.engine.Wait()
	assert.False(t, h.engine.Stop())

	events := h.view.snapshot()
	require.GreaterOrEqual(t, len(events), 2)
	assert.Equal(t, viewEvent{kind: "interrupted", turnID: id}, events[len(events)-2])
	assert.Equal(t, "ready", events[len(events)-1].kind)
	assert.Equal(t, 1, h.view.count("ready"))
	assert.Equal(t, StateCancelled, h.engine.State())
	assert.Equal(t, 1, h.speaker.stopCount())

	require.Eventually(t, func() bool { return len(h.records(t)) == 2 }, timeout, tick)
	var reply transcript.Record
	for _, r := range h.records(t) {
		if r.Role == transcript.RoleAssistant {
			reply = r
		}
	}
	assert.Equal(t, "Partial answer", reply.Content)
	assert.True(t, reply.Interrupted)
}

func TestEngineFailureRendersError(t *testing.T) {
	h := newHarness(t)
	h.backend.err = errors.New("dial tcp 127.0.0.1:5000: connection refused")

	id, ok := h.engine.Send(context.Background(), "hello")
	require.True(t, ok)
	h.engine.Wait()

	events := h.view.snapshot()
	require.Len(t, events, 3)
	assert.Equal(t, viewEvent{kind: "failed", turnID: id, text: "Error: dial tcp 127.0.0.1:5000: connection refused"}, events[1])
	assert.Equal(t, "ready", events[2].kind)
	assert.Equal(t, StateFailed, h.engine.State())
}

func TestEngineMidStreamFailure(t *testing.T) {
	h := newHarness(t)

	id, ok := h.engine.Send(context.Background(), "hello")
	require.True(t, ok)
	write(t, h, 0, "Half a sentence")
	require.NoError(t, h.backend.stream(t, 0).CloseWithError(errors.New("connection reset")))
	h.engine.Wait()

	assert.Equal(t, "Half a sentence", h.view.lastRender(id))
	assert.Equal(t, 1, h.view.count("failed"))
	assert.Equal(t, 1, h.view.count("ready"))
	assert.Empty(t, h.speaker.spoken())
}

func TestEngineParentCancellationInterrupts(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())

	id, ok := h.engine.Send(ctx, "hello")
	require.True(t, ok)
	write(t, h, 0, "Streaming")
	cancel()
	h.engine.Wait()

	assert.Equal(t, 1, h.view.count("interrupted"))
	assert.Equal(t, 1, h.view.count("ready"))
	assert.Zero(t, h.view.count("failed"))
	assert.Equal(t, "Streaming", h.view.lastRender(id))
	assert.Equal(t, StateCancelled, h.engine.State())
	assert.GreaterOrEqual(t, h.speaker.stopCount(), 1)
}

func TestEngineSendRacingCloseDoesNotOutliveIt(t *testing.T) {
	h := newHarness(t)

	// Hold the coordinator so Send passes its closed check and parks in Begin.
	h.engine.coord.mu.Lock()
	sent := make(chan string, 1)
	go func() {
		id, _ := h.engine.Send(context.Background(), "late")
		sent <- id
	}()
	time.Sleep(50 * time.Millisecond)
	h.engine.mu.Lock()
	h.engine.closed = true
	h.engine.mu.Unlock()
	h.engine.coord.mu.Unlock()

	var id string
	select {
	case id = <-sent:
	case <-time.After(timeout):
		t.Fatal("Send did not return")
	}
	require.NotEmpty(t, id)

	done := make(chan struct{})
	go func() {
		h.engine.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(timeout):
		t.Fatal("read loop kept running after close")
	}
	assert.Equal(t, 1, h.view.count("interrupted"))
}

func TestEngineMutedStillAdvancesSegmentation(t *testing.T) {
	h := newHarness(t)
	h.engine.SetMuted(true)
	assert.True(t, h.engine.Muted())
	assert.Equal(t, 1, h.speaker.stopCount())

	_, ok := h.engine.Send(context.Background(), "count")
	require.True(t, ok)
	write(t, h, 0, "One. Two")
	require.Eventually(t, func() bool { return h.engine.State() == StateStreaming }, timeout, tick)

	h.engine.SetMuted(false)
	write(t, h, 0, " three. Four")
	require.NoError(t, h.backend.stream(t, 0).Close())
	h.engine.Wait()

	assert.Equal(t, []string{"Two three.", "Four"}, h.speaker.spoken())
}

func TestEngineDecodesRunesSplitAcrossReads(t *testing.T) {
	h := newHarness(t)

	id, ok := h.engine.Send(context.Background(), "namaste kaise ho")
	require.True(t, ok)
	assert.Equal(t, lang.Hinglish, h.engine.Language())

	reply := []byte("नमस्ते दोस्त। ठीक हूँ.")
	w := h.backend.stream(t, 0)
	for _, cut := range [][2]int{{0, 4}, {4, 11}, {11, len(reply)}} {
		_, err := w.Write(reply[cut[0]:cut[1]])
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	h.engine.Wait()

	for _, ev := range h.view.snapshot() {
		if ev.kind == "render" {
			assert.NotContains(t, ev.text, "�")
		}
	}
	assert.Equal(t, string(reply), h.view.lastRender(id))
	assert.Equal(t, []string{"नमस्ते दोस्त। ठीक हूँ."}, h.speaker.spoken())
	h.speaker.mu.Lock()
	assert.Equal(t, []lang.Tag{lang.Hinglish}, h.speaker.tags)
	h.speaker.mu.Unlock()
}

func TestEngineCloudAndModelNotices(t *testing.T) {
	view := &recordingView{}
	mock := backend.NewMockBackend()
	mock.Delay = 0
	engine, err := NewEngine(Options{Backend: mock, View: view, Logger: zerolog.Nop()})
	require.NoError(t, err)
	t.Cleanup(engine.Close)
	assert.NotEmpty(t, engine.ConversationID())

	engine.SetCloud(true)
	engine.SetCloud(true)
	assert.True(t, engine.Cloud())
	engine.SetCloud(false)

	require.NoError(t, engine.SwitchModel(context.Background(), "Qwen"))
	err = engine.SwitchModel(context.Background(), "gpt")
	assert.ErrorIs(t, err, ErrUnknownModel)

	qwen, _ := backend.LookupModel("qwen")
	assert.Equal(t, []viewEvent{
		{kind: "notice", text: CloudNotice},
		{kind: "notice", text: LocalNotice},
		{kind: "notice", text: "🔄 Switched to model: **Qwen 3**\n✨ *Best for Logic & Mathematics*"},
	}, view.snapshot())
	assert.Equal(t, ModelNotice(qwen), view.snapshot()[2].text)
}

func TestEngineForwardsCloudFlag(t *testing.T) {
	h := newHarness(t)
	h.engine.SetCloud(true)

	_, ok := h.engine.Send(context.Background(), "hi")
	require.True(t, ok)
	h.backend.stream(t, 0)
	assert.True(t, h.backend.request(0).UseCloud)
}

func TestEngineCloseInterruptsAndRejects(t *testing.T) {
	h := newHarness(t)

	_, ok := h.engine.Send(context.Background(), "long question")
	require.True(t, ok)
	h.backend.stream(t, 0)

	h.engine.Close()
	assert.Equal(t, 1, h.view.count("interrupted"))
	assert.Equal(t, 1, h.view.count("ready"))

	_, ok = h.engine.Send(context.Background(), "again")
	assert.False(t, ok)
}

func TestNewEngineRequiresBackend(t *testing.T) {
	_, err := NewEngine(Options{})
	require.Error(t, err)
}
