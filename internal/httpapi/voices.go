package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/ialtaf14/Nova-AI/internal/backend"
	"github.com/ialtaf14/Nova-AI/internal/lang"
	"github.com/ialtaf14/Nova-AI/internal/speech"
)

const voiceListTimeout = 5 * time.Second

type listVoicesResponse struct {
	Region   string                    `json:"region"`
	Voices   []speech.Voice            `json:"voices"`
	Resolved map[lang.Tag]speech.Voice `json:"resolved"`
}

// handleListVoices lists the server-side synthesizer voices and the voice
// picked for each language tag.
func (s *Server) handleListVoices(w http.ResponseWriter, r *http.Request) {
	region := s.cfg.SpeechRegion
	if region == "" {
		region = speech.DefaultRegion
	}
	resp := listVoicesResponse{
		Region:   region,
		Voices:   []speech.Voice{},
		Resolved: map[lang.Tag]speech.Voice{},
	}
	if s.voices == nil {
		respondJSON(w, http.StatusOK, resp)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), voiceListTimeout)
	defer cancel()
	voices, err := s.voices.Voices(ctx)
	if err != nil {
		respondError(w, http.StatusBadGateway, "voices_unavailable", err.Error())
		return
	}
	if len(voices) > 0 {
		resp.Voices = voices
	}
	for _, tag := range []lang.Tag{lang.English, lang.Hinglish, lang.Hindi} {
		if v, ok := speech.ResolveVoice(voices, tag, region); ok {
			resp.Resolved[tag] = v
		}
	}
	respondJSON(w, http.StatusOK, resp)
}

type modelSummary struct {
	Alias       string `json:"alias"`
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

func (s *Server) handleListModels(w http.ResponseWriter, _ *http.Request) {
	models := make([]modelSummary, 0, len(backend.Models))
	for _, m := range backend.Models {
		models = append(models, modelSummary{Alias: m.Alias, ID: m.ID, Name: m.Name, Description: m.Description})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"default": s.cfg.LocalModel,
		"models":  models,
	})
}
