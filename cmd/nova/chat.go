package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ialtaf14/Nova-AI/internal/backend"
	"github.com/ialtaf14/Nova-AI/internal/chat"
	"github.com/ialtaf14/Nova-AI/internal/observability"
	"github.com/ialtaf14/Nova-AI/internal/speech"
	"github.com/ialtaf14/Nova-AI/internal/transcript"
	"github.com/ialtaf14/Nova-AI/internal/tui"
)

func runChat(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Log lines would corrupt the full-screen UI, so they go to a file or nowhere.
	logOut, err := observability.OpenLogFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logOut.Close()
	observability.InitLogger(cfg.LogLevel, cfg.LogPretty, logOut)
	logger := observability.Logger("cli")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(cfg.MetricsNamespace, nil)

	store, err := openStore(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		logger.Warn().Err(err).Msg("keeping transcripts in memory")
		store = transcript.NewInMemoryStore()
	}
	defer store.Close()

	be, err := backend.New(cfg.Backend(), observability.Logger("backend"))
	if err != nil {
		return fmt.Errorf("backend init failed: %w", err)
	}

	synth, err := newSynthesizer(cfg, observability.Logger("speech"))
	if err != nil {
		return err
	}
	queue := speech.NewQueue(synth, speech.QueueConfig{
		Rate:   cfg.SpeechRate,
		Region: cfg.SpeechRegion,
	}, observability.Logger("speech"))
	defer queue.Close()

	ui := tui.New(tui.Options{
		Recognizer: newRecognizer(cfg, observability.Logger("speech")),
		Muted:      startMuted,
		Cloud:      useCloud,
		Logger:     observability.Logger("tui"),
	})

	engine, err := chat.NewEngine(chat.Options{
		Backend: be,
		Speech:  queue,
		View:    ui.View(),
		Store:   store,
		Metrics: metrics,
		Logger:  observability.Logger("chat"),
		Muted:   startMuted,
		Cloud:   useCloud,
	})
	if err != nil {
		return err
	}
	defer engine.Close()

	logger.Info().
		Str("backend", cfg.BackendMode).
		Str("conversation_id", engine.ConversationID()).
		Bool("cloud", useCloud).
		Bool("muted", startMuted).
		Msg("chat started")

	if err := ui.Run(ctx, engine); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
