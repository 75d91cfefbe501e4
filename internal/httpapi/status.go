package httpapi

import (
	"net"
	"net/http"
	"net/url"
	"os/exec"
	"strings"
	"time"
)

const probeTimeout = 250 * time.Millisecond

type statusCheck struct {
	ID     string `json:"id"`
	Status string `json:"status"` // ok|warn|error
	Label  string `json:"label"`
	Detail string `json:"detail,omitempty"`
	Fix    string `json:"fix,omitempty"`
}

type statusResponse struct {
	BackendMode  string        `json:"backend_mode"`
	SpeechEngine string        `json:"speech_engine"`
	StoreMode    string        `json:"store_mode"`
	Checks       []statusCheck `json:"checks"`
}

// handleStatus reports which capabilities are wired up and how to fix the
// ones that are not.
func (s *Server) handleStatus(w http.ResponseWriter, _ *http.Request) {
	checks := make([]statusCheck, 0, 6)
	checks = append(checks, s.backendChecks()...)
	checks = append(checks, s.speechChecks()...)
	checks = append(checks, s.storeCheck())

	respondJSON(w, http.StatusOK, statusResponse{
		BackendMode:  s.cfg.BackendMode,
		SpeechEngine: s.cfg.SpeechEngine,
		StoreMode:    s.storeMode(),
		Checks:       checks,
	})
}

func (s *Server) backendChecks() []statusCheck {
	var checks []statusCheck
	mode := s.cfg.BackendMode
	if mode == "mock" {
		return append(checks, statusCheck{
			ID:     "backend",
			Status: "warn",
			Label:  "Chat backend is mock",
			Detail: "Replies are canned echoes.",
			Fix:    "Set NOVA_BACKEND_MODE=auto to talk to Ollama.",
		})
	}

	if s.cfg.BackendURL != "" {
		if err := probeURL(s.cfg.BackendURL); err != nil {
			status := "warn"
			if mode == "http" {
				status = "error"
			}
			checks = append(checks, statusCheck{
				ID:     "backend_http",
				Status: status,
				Label:  "HTTP backend",
				Detail: err.Error(),
				Fix:    "Start the backend at NOVA_BACKEND_URL.",
			})
		} else {
			checks = append(checks, statusCheck{ID: "backend_http", Status: "ok", Label: "HTTP backend", Detail: s.cfg.BackendURL})
		}
	}
	if mode != "http" {
		if err := probeURL(s.cfg.OllamaBaseURL); err != nil {
			checks = append(checks, statusCheck{
				ID:     "ollama",
				Status: "error",
				Label:  "Local models (Ollama)",
				Detail: err.Error(),
				Fix:    "Run `ollama serve` and `ollama pull " + s.cfg.LocalModel + "`.",
			})
		} else {
			checks = append(checks, statusCheck{ID: "ollama", Status: "ok", Label: "Local models (Ollama)", Detail: s.cfg.OllamaBaseURL})
		}
		if s.cfg.CloudAPIKey == "" {
			checks = append(checks, statusCheck{
				ID:     "cloud_key",
				Status: "warn",
				Label:  "Cloud model",
				Detail: "NOVA_CLOUD_API_KEY is not set",
				Fix:    "Set NOVA_CLOUD_API_KEY to enable the cloud toggle.",
			})
		} else {
			checks = append(checks, statusCheck{ID: "cloud_key", Status: "ok", Label: "Cloud model", Detail: s.cfg.CloudModel})
		}
	}
	return checks
}

func (s *Server) speechChecks() []statusCheck {
	checks := []statusCheck{}
	if s.voices == nil {
		checks = append(checks, statusCheck{
			ID:     "speech",
			Status: "warn",
			Label:  "Server speech",
			Detail: "disabled; browser clients speak with their own voices",
		})
	} else {
		checks = append(checks, statusCheck{ID: "speech", Status: "ok", Label: "Server speech", Detail: s.cfg.SpeechEngine})
	}

	command := strings.Fields(s.cfg.RecognitionCommand)
	switch {
	case len(command) == 0:
		checks = append(checks, statusCheck{
			ID:     "recognition",
			Status: "warn",
			Label:  "Terminal speech recognition",
			Detail: "not configured",
			Fix:    "Set NOVA_RECOGNITION_COMMAND to a program that prints one transcript.",
		})
	default:
		if _, err := exec.LookPath(command[0]); err != nil {
			checks = append(checks, statusCheck{
				ID:     "recognition",
				Status: "error",
				Label:  "Terminal speech recognition",
				Detail: command[0] + " not found",
			})
		} else {
			checks = append(checks, statusCheck{ID: "recognition", Status: "ok", Label: "Terminal speech recognition", Detail: command[0]})
		}
	}
	return checks
}

func (s *Server) storeCheck() statusCheck {
	switch s.storeMode() {
	case "postgres":
		return statusCheck{ID: "transcript_store", Status: "ok", Label: "Transcript persistence", Detail: "postgres"}
	case "in-memory":
		return statusCheck{
			ID:     "transcript_store",
			Status: "warn",
			Label:  "Transcript persistence",
			Detail: "in-memory only",
			Fix:    "Set DATABASE_URL to keep transcripts across restarts.",
		}
	default:
		return statusCheck{ID: "transcript_store", Status: "warn", Label: "Transcript persistence", Detail: "disabled"}
	}
}

func probeURL(raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return err
	}
	host := u.Host
	if host == "" {
		return &url.Error{Op: "parse", URL: raw, Err: net.UnknownNetworkError("host missing")}
	}
	if u.Port() == "" {
		port := "80"
		if u.Scheme == "https" {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}
	c, err := net.DialTimeout("tcp", host, probeTimeout)
	if err != nil {
		return err
	}
	return c.Close()
}
