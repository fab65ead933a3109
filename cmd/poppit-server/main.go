// Package main provides the model server for poppit.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/poppitai/poppit/internal/config"
	"github.com/poppitai/poppit/internal/corpus"
	"github.com/poppitai/poppit/internal/llm"
	"github.com/poppitai/poppit/internal/metrics"
	"github.com/poppitai/poppit/internal/server"
)

func main() {
	cfg := config.Load()

	logger, logClose := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
	defer logClose()

	model, err := llm.NewModel(cfg)
	if err != nil {
		logger.Error("failed to create model", "error", err)
		os.Exit(1)
	}

	feedback := corpus.NewFeedbackFile(cfg.LikesPath)
	stats := metrics.NewCollector()

	srv := server.New(cfg.ListenAddr, model, feedback, stats, logger)

	// Serve until interrupted, then shut down gracefully.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}
