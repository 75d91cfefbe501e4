package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/bytedance/sonic"

	"github.com/ialtaf14/Nova-AI/internal/reliability"
)

// DefaultURL is the chat endpoint of a locally running backend.
const DefaultURL = "http://127.0.0.1:5000/process"

// HTTPBackend posts {"query","use_cloud"} to an endpoint that answers with a
// text/plain stream, or with {"response": "..."} for commands.
type HTTPBackend struct {
	url    string
	client *http.Client
}

func NewHTTPBackend(url string) *HTTPBackend {
	url = strings.TrimSpace(url)
	if url == "" {
		url = DefaultURL
	}
	// No client timeout: a turn ends on stream end, a stop, or a newer turn.
	return &HTTPBackend{url: url, client: &http.Client{}}
}

func (b *HTTPBackend) URL() string { return b.url }

func (b *HTTPBackend) Submit(ctx context.Context, req Request) (io.ReadCloser, error) {
	payload, err := sonic.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "text/plain, application/json")

	res, err := b.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		defer res.Body.Close()
		body, _ := io.ReadAll(io.LimitReader(res.Body, 4<<10))
		return nil, &reliability.StatusError{Code: res.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	ct := strings.ToLower(res.Header.Get("Content-Type"))
	if !strings.Contains(ct, "application/json") {
		return res.Body, nil
	}

	defer res.Body.Close()
	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	return textBody(extractReply(body)), nil
}

// extractReply unwraps a JSON command acknowledgement. Bodies without a
// known text field are passed through verbatim.
func extractReply(body []byte) string {
	var obj map[string]any
	if err := sonic.Unmarshal(body, &obj); err != nil {
		return string(body)
	}
	for _, k := range []string{"response", "text", "message"} {
		if s, ok := obj[k].(string); ok {
			return s
		}
	}
	return string(body)
}
