package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"docaudit-backend/internal/bootstrap"
	"docaudit-backend/internal/shared/config"
	"docaudit-backend/internal/shared/server"
	"docaudit-backend/internal/shared/telemetry"
)

const shutdownTimeout = 15 * time.Second

func main() {
	cfg := config.Load()

	log, err := telemetry.Init(cfg.Env, cfg.LogLevel)
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatal("bootstrap failed", zap.Error(err))
	}
	if app.DB != nil {
		defer app.DB.Close()
	}

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
		// Analyses hold the request open for the AI call.
		WriteTimeout: 2 * cfg.AITimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("api.start",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Env),
			zap.String("ai_provider", cfg.AIProvider),
			zap.Bool("in_memory", app.InMemoryFallback),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	log.Info("api.shutdown")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
