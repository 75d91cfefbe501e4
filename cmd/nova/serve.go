package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ialtaf14/Nova-AI/internal/backend"
	"github.com/ialtaf14/Nova-AI/internal/httpapi"
	"github.com/ialtaf14/Nova-AI/internal/observability"
	"github.com/ialtaf14/Nova-AI/internal/session"
)

const janitorInterval = 5 * time.Second

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	logOut, err := observability.OpenLogFile(cfg.LogFile)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer logOut.Close()
	if cfg.LogFile == "" {
		observability.InitLogger(cfg.LogLevel, cfg.LogPretty, cmd.ErrOrStderr())
	} else {
		observability.InitLogger(cfg.LogLevel, cfg.LogPretty, logOut)
	}
	logger := observability.Logger("server")

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := observability.NewMetrics(cfg.MetricsNamespace, nil)

	store, err := openStore(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	backendCfg := cfg.Backend()
	if _, err := backend.New(backendCfg, logger); err != nil {
		return fmt.Errorf("backend init failed: %w", err)
	}

	synth, err := newSynthesizer(cfg, observability.Logger("speech"))
	if err != nil {
		return err
	}

	sessions := session.NewManager(cfg.SessionInactivityTimeout)
	api := httpapi.New(cfg, httpapi.Deps{
		Sessions: sessions,
		Backends: func() (backend.Backend, error) {
			return backend.New(backendCfg, observability.Logger("backend"))
		},
		Store:   store,
		Metrics: metrics,
		Voices:  synth,
		Logger:  observability.Logger("httpapi"),
	})
	sessions.SetExpireHook(func(s *session.Session) {
		api.CloseSession(s.ID)
		metrics.ObserveSessionEvent("expired")
		metrics.SetActiveSessions(sessions.ActiveCount())
	})

	httpServer := &http.Server{
		Addr:              cfg.BindAddr,
		Handler:           api.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, runCancel := context.WithCancel(ctx)
	defer runCancel()
	sessions.StartJanitor(runCtx, janitorInterval)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", cfg.BindAddr).Str("backend", cfg.BackendMode).Msg("server listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("listen error: %w", err)
		}
	case <-ctx.Done():
		logger.Info().Msg("shutdown signal received")
	}

	runCancel()
	api.CloseAll()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn().Err(err).Msg("graceful shutdown failed")
		_ = httpServer.Close()
	}

	logger.Info().Msg("shutdown complete")
	return nil
}
