package backend

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// MockBackend streams a deterministic reply in fixed-size byte chunks, which
// may split multi-byte runes.
type MockBackend struct {
	ChunkSize int
	Delay     time.Duration
	Reply     func(req Request) string
}

func NewMockBackend() *MockBackend {
	return &MockBackend{ChunkSize: 7, Delay: 30 * time.Millisecond}
}

func (b *MockBackend) Submit(ctx context.Context, req Request) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	reply := b.reply(req)
	size := b.ChunkSize
	if size <= 0 {
		size = len(reply)
	}

	pr, pw := io.Pipe()
	go func() {
		for start := 0; start < len(reply); start += size {
			if b.Delay > 0 {
				select {
				case <-ctx.Done():
					pw.CloseWithError(ctx.Err())
					return
				case <-time.After(b.Delay):
				}
			}
			end := min(start+size, len(reply))
			if _, err := pw.Write([]byte(reply[start:end])); err != nil {
				return
			}
		}
		pw.Close()
	}()
	return pr, nil
}

func (b *MockBackend) reply(req Request) string {
	if b.Reply != nil {
		return b.Reply(req)
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return "I didn't hear anything."
	}
	if m, ok := parseSwitch(query); ok {
		return "Switched to " + m.ID
	}
	where := "local"
	if req.UseCloud {
		where = "cloud"
	}
	return fmt.Sprintf("I heard you: **%s**. This is a %s mock reply.\nAsk me anything else!", query, where)
}
