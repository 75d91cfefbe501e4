// Package backend submits prompts and returns the streamed response body.
package backend

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
)

// Request is one prompt submission.
type Request struct {
	Query    string `json:"query"`
	UseCloud bool   `json:"use_cloud"`
}

// Backend turns a request into a UTF-8 byte stream. Cancelling ctx aborts both
// the request and any read in progress on the returned body.
type Backend interface {
	Submit(ctx context.Context, req Request) (io.ReadCloser, error)
}

// Config controls backend construction.
type Config struct {
	Mode           string
	URL            string
	LocalBaseURL   string
	LocalModel     string
	CloudBaseURL   string
	CloudAPIKey    string
	CloudModel     string
	CloudMaxTokens int
	HistoryLimit   int
	SystemPrompt   string
}

// New builds the backend for cfg.Mode: http, openai, mock, or auto (the HTTP
// endpoint first, then a direct OpenAI-compatible connection).
func New(cfg Config, logger zerolog.Logger) (Backend, error) {
	mode := strings.ToLower(strings.TrimSpace(cfg.Mode))
	if mode == "" {
		mode = "auto"
	}

	switch mode {
	case "http":
		if strings.TrimSpace(cfg.URL) == "" {
			return nil, errors.New("backend url is required for http mode")
		}
		return NewHTTPBackend(cfg.URL), nil
	case "openai":
		return NewOpenAIBackend(openAIConfig(cfg), logger), nil
	case "mock":
		return NewMockBackend(), nil
	case "auto":
		direct := NewOpenAIBackend(openAIConfig(cfg), logger)
		if strings.TrimSpace(cfg.URL) == "" {
			return direct, nil
		}
		return NewFallbackBackend(NewHTTPBackend(cfg.URL), direct, logger), nil
	default:
		return nil, fmt.Errorf("unsupported backend mode %q", cfg.Mode)
	}
}

func openAIConfig(cfg Config) OpenAIConfig {
	return OpenAIConfig{
		LocalBaseURL:   cfg.LocalBaseURL,
		LocalModel:     cfg.LocalModel,
		CloudBaseURL:   cfg.CloudBaseURL,
		CloudAPIKey:    cfg.CloudAPIKey,
		CloudModel:     cfg.CloudModel,
		CloudMaxTokens: cfg.CloudMaxTokens,
		HistoryLimit:   cfg.HistoryLimit,
		SystemPrompt:   cfg.SystemPrompt,
	}
}

// textBody wraps a complete reply as a stream.
func textBody(text string) io.ReadCloser {
	return io.NopCloser(strings.NewReader(text))
}
