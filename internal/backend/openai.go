package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/sashabaranov/go-openai"
)

const (
	DefaultLocalBaseURL   = "http://127.0.0.1:11434/v1"
	DefaultCloudBaseURL   = "https://openrouter.ai/api/v1"
	DefaultCloudModel     = "moonshotai/kimi-k2"
	DefaultCloudMaxTokens = 4096
	DefaultHistoryLimit   = 20
)

// DefaultSystemPrompt is the assistant persona.
const DefaultSystemPrompt = "You are Nova, an AI assistant acting as a technical mentor, problem solver and learning companion. " +
	"Be sharp, calm, honest and direct. " +
	"Detect the user's language and script and reply in the same one: English, Hinglish or Hindi. " +
	"Keep an Indian context. Format answers with Markdown and keep them concise."

// OpenAIConfig configures OpenAIBackend.
type OpenAIConfig struct {
	LocalBaseURL   string
	LocalModel     string
	CloudBaseURL   string
	CloudAPIKey    string
	CloudModel     string
	CloudMaxTokens int
	HistoryLimit   int
	SystemPrompt   string
}

// OpenAIBackend streams completions straight from OpenAI-compatible servers:
// Ollama for local models, OpenRouter (or any compatible host) for cloud. It
// keeps the conversation history, including partial replies.
type OpenAIBackend struct {
	cfg    OpenAIConfig
	local  *openai.Client
	cloud  *openai.Client
	logger zerolog.Logger

	mu      sync.Mutex
	model   string
	history []openai.ChatCompletionMessage
}

func NewOpenAIBackend(cfg OpenAIConfig, logger zerolog.Logger) *OpenAIBackend {
	if strings.TrimSpace(cfg.LocalBaseURL) == "" {
		cfg.LocalBaseURL = DefaultLocalBaseURL
	}
	if strings.TrimSpace(cfg.LocalModel) == "" {
		cfg.LocalModel = DefaultModel
	}
	if strings.TrimSpace(cfg.CloudBaseURL) == "" {
		cfg.CloudBaseURL = DefaultCloudBaseURL
	}
	if strings.TrimSpace(cfg.CloudModel) == "" {
		cfg.CloudModel = DefaultCloudModel
	}
	if cfg.CloudMaxTokens <= 0 {
		cfg.CloudMaxTokens = DefaultCloudMaxTokens
	}
	if cfg.HistoryLimit <= 0 {
		cfg.HistoryLimit = DefaultHistoryLimit
	}
	if strings.TrimSpace(cfg.SystemPrompt) == "" {
		cfg.SystemPrompt = DefaultSystemPrompt
	}

	b := &OpenAIBackend{
		cfg:    cfg,
		local:  newOpenAIClient(cfg.LocalBaseURL, "ollama"),
		logger: logger.With().Str("component", "openai_backend").Logger(),
		model:  cfg.LocalModel,
	}
	if strings.TrimSpace(cfg.CloudAPIKey) != "" {
		b.cloud = newOpenAIClient(cfg.CloudBaseURL, cfg.CloudAPIKey)
	}
	return b
}

func newOpenAIClient(baseURL, apiKey string) *openai.Client {
	cfg := openai.DefaultConfig(apiKey)
	cfg.BaseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	cfg.HTTPClient = &http.Client{}
	return openai.NewClientWithConfig(cfg)
}

// Model returns the active local model id.
func (b *OpenAIBackend) Model() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.model
}

// History returns a copy of the rolling conversation history.
func (b *OpenAIBackend) History() []openai.ChatCompletionMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]openai.ChatCompletionMessage(nil), b.history...)
}

func (b *OpenAIBackend) Submit(ctx context.Context, req Request) (io.ReadCloser, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return textBody("I didn't hear anything."), nil
	}
	if m, ok := parseSwitch(query); ok {
		b.mu.Lock()
		b.model = m.ID
		b.mu.Unlock()
		b.logger.Info().Str("model", m.ID).Msg("switched local model")
		return textBody("Switched to " + m.ID), nil
	}

	client, model, maxTokens := b.local, b.Model(), 0
	if req.UseCloud {
		if b.cloud == nil {
			return nil, errors.New("cloud backend not configured: set NOVA_CLOUD_API_KEY")
		}
		client, model, maxTokens = b.cloud, b.cfg.CloudModel, b.cfg.CloudMaxTokens
	}

	stream, err := client.CreateChatCompletionStream(ctx, openai.ChatCompletionRequest{
		Model:     model,
		Messages:  b.pushUser(query),
		MaxTokens: maxTokens,
		Stream:    true,
	})
	if err != nil {
		if isModelMissing(err) && !req.UseCloud {
			return nil, fmt.Errorf("model %q is not installed yet; run `ollama pull %s`: %w", model, model, err)
		}
		return nil, fmt.Errorf("create completion stream: %w", err)
	}

	pr, pw := io.Pipe()
	go b.pump(stream, pw)
	return pr, nil
}

// pump copies content deltas into pw and records whatever was produced, even
// when the reader hangs up or the stream fails midway.
func (b *OpenAIBackend) pump(stream *openai.ChatCompletionStream, pw *io.PipeWriter) {
	var full strings.Builder
	defer func() {
		stream.Close()
		if full.Len() > 0 {
			b.pushAssistant(full.String())
		}
	}()

	for {
		resp, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			pw.Close()
			return
		}
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if len(resp.Choices) == 0 || resp.Choices[0].Delta.Content == "" {
			continue
		}
		content := resp.Choices[0].Delta.Content
		full.WriteString(content)
		if _, err := pw.Write([]byte(content)); err != nil {
			return
		}
	}
}

// pushUser appends the prompt to history and returns the messages to send.
func (b *OpenAIBackend) pushUser(query string) []openai.ChatCompletionMessage {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(openai.ChatMessageRoleUser, query)

	msgs := make([]openai.ChatCompletionMessage, 0, len(b.history)+1)
	msgs = append(msgs, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: b.cfg.SystemPrompt})
	return append(msgs, b.history...)
}

func (b *OpenAIBackend) pushAssistant(content string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.appendLocked(openai.ChatMessageRoleAssistant, content)
}

func (b *OpenAIBackend) appendLocked(role, content string) {
	b.history = append(b.history, openai.ChatCompletionMessage{Role: role, Content: content})
	if over := len(b.history) - b.cfg.HistoryLimit; over > 0 {
		b.history = append([]openai.ChatCompletionMessage(nil), b.history[over:]...)
	}
}

func isModelMissing(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
		return true
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusNotFound {
		return true
	}
	return false
}
