package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/ialtaf14/Nova-AI/internal/config"
	"github.com/ialtaf14/Nova-AI/internal/reliability"
	"github.com/ialtaf14/Nova-AI/internal/speech"
	"github.com/ialtaf14/Nova-AI/internal/transcript"
)

const (
	storeConnectAttempts = 4
	storeRetryBase       = 250 * time.Millisecond
	storeRetryCap        = 4 * time.Second
)

// loadConfig reads the environment and applies flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	if backendMode != "" {
		cfg.BackendMode = backendMode
	}
	if bindAddr != "" {
		cfg.BindAddr = bindAddr
	}
	if err := cfg.Normalize(); err != nil {
		return config.Config{}, fmt.Errorf("config error: %w", err)
	}
	return cfg, nil
}

// openStore connects the transcript store, retrying with backoff while the
// database comes up.
func openStore(ctx context.Context, databaseURL string, logger zerolog.Logger) (transcript.Store, error) {
	var lastErr error
	for attempt := 0; attempt < storeConnectAttempts; attempt++ {
		store, err := transcript.NewStore(ctx, databaseURL)
		if err == nil {
			return store, nil
		}
		lastErr = err
		if attempt == storeConnectAttempts-1 {
			break
		}
		wait := reliability.ExponentialBackoff(attempt, storeRetryBase, storeRetryCap)
		logger.Warn().Err(err).Int("attempt", attempt+1).Dur("retry_in", wait).Msg("transcript store unavailable")
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(wait):
		}
	}
	return nil, fmt.Errorf("transcript store init failed: %w", lastErr)
}

// newSynthesizer builds the configured engine. A missing engine is not fatal:
// speech is silent and the rest of the client works.
func newSynthesizer(cfg config.Config, logger zerolog.Logger) (speech.Synthesizer, error) {
	synth, err := speech.NewSynthesizer(cfg.SpeechEngine, logger)
	if errors.Is(err, speech.ErrUnavailable) {
		logger.Warn().Err(err).Msg("speech synthesis unavailable, continuing silently")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if synth == nil {
		logger.Info().Msg("speech synthesis disabled")
	}
	return synth, nil
}

// newRecognizer returns nil when no recognition command is configured or
// runnable.
func newRecognizer(cfg config.Config, logger zerolog.Logger) speech.Recognizer {
	if cfg.RecognitionCommand == "" {
		return nil
	}
	rec, err := speech.NewCommandRecognizer(cfg.RecognitionCommand, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("speech recognition unavailable")
		return nil
	}
	return rec
}
