package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"
	"time"

	"shopfront/internal/app"
	"shopfront/internal/config"
	"shopfront/pkg/logger"

	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zapLog, err := logger.New(cfg.AppEnv)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer zapLog.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, zapLog)
	if err != nil {
		zapLog.Fatal("failed to start application", zap.Error(err))
	}

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- application.Listen()
	}()

	select {
	case <-ctx.Done():
		zapLog.Info("shutting down server")
	case err := <-serverErr:
		if err != nil {
			zapLog.Error("server stopped unexpectedly", zap.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("error during shutdown", zap.Error(err))
	}
	zapLog.Info("server gracefully stopped")
}
