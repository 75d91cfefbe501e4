package httpapi

import (
	"net/http"

	"github.com/ialtaf14/Nova-AI/internal/chat"
)

// scrollThresholdPX is how close to the bottom the transcript must be for a
// render to keep it pinned there.
const scrollThresholdPX = 100

type uiSettingsResponse struct {
	ScrollThresholdPX int     `json:"scroll_threshold_px"`
	InterruptedMarker string  `json:"interrupted_marker"`
	SpeechRate        float64 `json:"speech_rate"`
	SpeechRegion      string  `json:"speech_region"`
	CloudConfigured   bool    `json:"cloud_configured"`
}

func (s *Server) handleUISettings(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, uiSettingsResponse{
		ScrollThresholdPX: scrollThresholdPX,
		InterruptedMarker: chat.InterruptedMarker,
		SpeechRate:        s.cfg.SpeechRate,
		SpeechRegion:      s.cfg.SpeechRegion,
		CloudConfigured:   s.cfg.CloudAPIKey != "" || s.cfg.BackendMode == "http",
	})
}
