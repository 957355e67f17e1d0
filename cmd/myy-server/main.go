package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"myy/internal/cache"
	"myy/internal/cli"
	apphttp "myy/internal/http"
	applog "myy/internal/log"
)

func main() {
	bootLogger := cli.SetupLogger(nil, applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(bootLogger.Logger)
	logger := cli.SetupLogger(cfg, applog.ComponentApp)

	ctx, stop := cli.GracefulShutdown(context.Background(), logger.Logger)
	defer stop()

	rt, err := cli.OpenTracker(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open tracker", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		os.Exit(1)
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("Failed to close store", applog.FieldError, err)
		}
	}()

	caches := cache.NewManager()
	caches.Register(rt.Views)
	caches.StartCleanup(cfg.SummaryCacheTTL)
	defer caches.Stop()

	srv := apphttp.NewServer(apphttp.Config{
		Addr:               cfg.Addr(),
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		RateLimitBurst:     cfg.RateLimitBurst,
		Logger:             logger,
		Ready:              rt.Ping,
	}, rt.Tracker)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting myy server",
			applog.FieldOperation, applog.OpStartup,
			applog.FieldBackend, rt.Backend.String(),
			"port", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		start := time.Now()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		logger.Info("Server stopped gracefully",
			applog.FieldOperation, applog.OpShutdown,
			applog.FieldDurationHuman, time.Since(start).String())
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}
}
