package chat

import (
	"fmt"

	"github.com/ialtaf14/Nova-AI/internal/backend"
)

const (
	CloudNotice = "☁️ **Connected to Kimi AI** (Moonshot Cloud)"
	LocalNotice = "💻 **Switched to Local AI** (Ollama)"

	// InterruptedMarker is appended by views to a response cut off mid-stream.
	InterruptedMarker = " [Interrupted]"
)

// ModelNotice is the status line shown after a model switch.
func ModelNotice(m backend.Model) string {
	return fmt.Sprintf("🔄 Switched to model: **%s**\n✨ *%s*", m.Name, m.Description)
}
