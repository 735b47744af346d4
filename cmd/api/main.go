package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/anistark/crunchythread/internal/app"
	"github.com/anistark/crunchythread/internal/config"
	apihttp "github.com/anistark/crunchythread/internal/http"
	"github.com/anistark/crunchythread/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, logCloser := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		Service: cfg.AppName,
		File:    cfg.LogFile,
	})
	defer logCloser.Close()
	slog.SetDefault(logger)

	a, err := app.New(cfg, logger)
	if err != nil {
		slog.Error("failed to start app", "path", cfg.SQLitePath, "error", err)
		os.Exit(1)
	}
	defer a.Close()

	server := apihttp.NewServer(a)

	syncCtx, syncCancel := context.WithCancel(context.Background())
	if cfg.MappingSyncEnabled {
		a.MappingSync.Start(syncCtx)
	}

	go func() {
		if err := server.Listen(":" + cfg.Port); err != nil {
			slog.Error("server stopped", "error", err)
		}
	}()

	slog.Info("api started", "port", cfg.Port, "env", cfg.Environment)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	slog.Info("shutting down server")
	syncCancel()
	if cfg.MappingSyncEnabled {
		a.MappingSync.StopWait(2 * time.Second)
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
