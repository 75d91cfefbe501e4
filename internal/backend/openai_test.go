package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type completionRecorder struct {
	mu       sync.Mutex
	requests []openai.ChatCompletionRequest
	auth     []string
}

func (c *completionRecorder) last() openai.ChatCompletionRequest {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests[len(c.requests)-1]
}

func newCompletionServer(t *testing.T, deltas []string) (*httptest.Server, *completionRecorder) {
	t.Helper()
	rec := &completionRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		var req openai.ChatCompletionRequest
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, sonic.Unmarshal(body, &req))
		rec.mu.Lock()
		rec.requests = append(rec.requests, req)
		rec.auth = append(rec.auth, r.Header.Get("Authorization"))
		rec.mu.Unlock()

		w.Header().Set("Content-Type", "text/event-stream")
		for _, d := range deltas {
			chunk := openai.ChatCompletionStreamResponse{
				ID:     "chunk",
				Object: "chat.completion.chunk",
				Model:  req.Model,
				Choices: []openai.ChatCompletionStreamChoice{
					{Index: 0, Delta: openai.ChatCompletionStreamChoiceDelta{Content: d}},
				},
			}
			payload, _ := sonic.Marshal(chunk)
			fmt.Fprintf(w, "data: %s\n\n", payload)
			w.(http.Flusher).Flush()
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	t.Cleanup(srv.Close)
	return srv, rec
}

func TestOpenAIBackendStreamsLocalModelAndKeepsHistory(t *testing.T) {
	srv, rec := newCompletionServer(t, []string{"Hello", " there", "!"})
	b := NewOpenAIBackend(OpenAIConfig{LocalBaseURL: srv.URL + "/v1"}, zerolog.Nop())

	body, err := b.Submit(context.Background(), Request{Query: "hi"})
	require.NoError(t, err)
	text, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "Hello there!", string(text))

	req := rec.last()
	assert.Equal(t, DefaultModel, req.Model)
	assert.True(t, req.Stream)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, req.Messages[0].Role)
	assert.Equal(t, "hi", req.Messages[1].Content)

	require.Eventually(t, func() bool { return len(b.History()) == 2 }, timeout, tick)
	assert.Equal(t, "Hello there!", b.History()[1].Content)
}

func TestOpenAIBackendCloudUsesCloudModel(t *testing.T) {
	srv, rec := newCompletionServer(t, []string{"ok"})
	b := NewOpenAIBackend(OpenAIConfig{
		LocalBaseURL: "http://127.0.0.1:1/v1",
		CloudBaseURL: srv.URL + "/v1",
		CloudAPIKey:  "sk-test",
	}, zerolog.Nop())

	body, err := b.Submit(context.Background(), Request{Query: "hi", UseCloud: true})
	require.NoError(t, err)
	_, err = io.ReadAll(body)
	require.NoError(t, err)

	req := rec.last()
	assert.Equal(t, DefaultCloudModel, req.Model)
	assert.Equal(t, DefaultCloudMaxTokens, req.MaxTokens)
	assert.Equal(t, "Bearer sk-test", rec.auth[0])
}

func TestOpenAIBackendCloudWithoutKey(t *testing.T) {
	b := NewOpenAIBackend(OpenAIConfig{}, zerolog.Nop())
	_, err := b.Submit(context.Background(), Request{Query: "hi", UseCloud: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cloud backend not configured")
}

func TestOpenAIBackendSwitchAndEmptyQuery(t *testing.T) {
	srv, rec := newCompletionServer(t, []string{"hey"})
	b := NewOpenAIBackend(OpenAIConfig{LocalBaseURL: srv.URL + "/v1"}, zerolog.Nop())

	body, err := b.Submit(context.Background(), Request{Query: SwitchQuery("qwen")})
	require.NoError(t, err)
	text, _ := io.ReadAll(body)
	assert.Equal(t, "Switched to qwen3:8b", string(text))
	assert.Equal(t, "qwen3:8b", b.Model())

	body, err = b.Submit(context.Background(), Request{Query: "   "})
	require.NoError(t, err)
	text, _ = io.ReadAll(body)
	assert.Equal(t, "I didn't hear anything.", string(text))

	body, err = b.Submit(context.Background(), Request{Query: "hello"})
	require.NoError(t, err)
	_, _ = io.ReadAll(body)
	assert.Equal(t, "qwen3:8b", rec.last().Model)
}

func TestOpenAIBackendHistoryLimit(t *testing.T) {
	srv, rec := newCompletionServer(t, []string{"a"})
	b := NewOpenAIBackend(OpenAIConfig{LocalBaseURL: srv.URL + "/v1", HistoryLimit: 4}, zerolog.Nop())

	for i := 0; i < 5; i++ {
		body, err := b.Submit(context.Background(), Request{Query: fmt.Sprintf("q%d", i)})
		require.NoError(t, err)
		_, _ = io.ReadAll(body)
		want := min(2*(i+1), 4)
		require.Eventually(t, func() bool { return len(b.History()) == want }, timeout, tick)
	}

	msgs := rec.last().Messages
	assert.LessOrEqual(t, len(msgs), 5)
	assert.Equal(t, "q4", msgs[len(msgs)-1].Content)
	assert.True(t, strings.HasPrefix(b.History()[0].Content, "q3"))
}

func TestOpenAIBackendReportsMissingModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"message":"model \"llama3.1\" not found","type":"api_error"}}`)
	}))
	defer srv.Close()

	b := NewOpenAIBackend(OpenAIConfig{LocalBaseURL: srv.URL}, zerolog.Nop())
	_, err := b.Submit(context.Background(), Request{Query: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ollama pull llama3.1")
}
