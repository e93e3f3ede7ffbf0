// Package main is the entry point for the skinforge rendering daemon.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/Faultbox/skinforge/internal/assets"
	"github.com/Faultbox/skinforge/internal/config"
	"github.com/Faultbox/skinforge/internal/logger"
	"github.com/Faultbox/skinforge/internal/render"
	"github.com/Faultbox/skinforge/internal/server"
	"github.com/Faultbox/skinforge/internal/templates"
)

func main() {
	// Parse CLI flags first
	config.ParseFlags()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("=== skinforge daemon ===")
	logger.Sugar.Debugf("Config: %+v", cfg)

	source, err := openSource(cfg)
	if err != nil {
		logger.Error("failed to open template source", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := templates.Load(ctx, source, cfg.Render.Format())
	if err != nil {
		logger.Error("failed to load templates", zap.Error(err))
		os.Exit(1)
	}

	srv := server.New(render.New(store), cfg.Render.Format(), cfg.Render.MaxScale)

	httpSrv := &http.Server{
		Addr:         cfg.Server.Listen,
		Handler:      srv.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Listen))
		errc <- httpSrv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown error", zap.Error(err))
		}
	case err := <-errc:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", zap.Error(err))
			os.Exit(1)
		}
	}

	hits, misses := srv.CacheStats()
	logger.Info("daemon stopped", zap.Int("cache_hits", hits), zap.Int("cache_misses", misses))
}

// openSource picks the template source from config: a pack file when
// configured, a directory otherwise.
func openSource(cfg *config.Config) (assets.Source, error) {
	if cfg.Data.TemplatePack != "" {
		return assets.OpenPak(cfg.Data.TemplatePack)
	}
	return assets.NewDir(cfg.Data.TemplateDir), nil
}
