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

	"ecg-synth/internal/api"
	"ecg-synth/internal/observability"
	"ecg-synth/internal/store"
	"ecg-synth/internal/synth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func main() {
	cfg, err := loadServerConfig(newEnv())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	logger := observability.FromConfig(cfg.Log)
	defer logger.Sync()

	if cfg.production() {
		gin.SetMode(gin.ReleaseMode)
	}

	cache := store.NewResultCache(cfg.CacheTTL)
	defer cache.Close()

	deps := api.Deps{
		Engine:         synth.New(logger),
		Cache:          cache,
		Logger:         logger,
		MaxSamples:     cfg.MaxSamples,
		ScenarioDir:    cfg.ScenarioDir,
		StaticDir:      cfg.StaticDir,
		AllowedOrigins: cfg.AllowedOrigins,
	}

	// Persistence is optional: without RUNS_DB the stored-run routes answer 503.
	if cfg.RunsDB != "" {
		runs, err := store.Open(cfg.RunsDB)
		if err != nil {
			logger.Fatal("failed to open run store", zap.String("path", cfg.RunsDB), zap.Error(err))
		}
		defer runs.Close()
		deps.Store = runs
		logger.Info("run store opened", zap.String("path", cfg.RunsDB))
	}

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%s", cfg.Port),
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting API server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}
