// Package cli provides the process bootstrap shared by cmd/myy and
// cmd/myy-server: logging, configuration, backend and tracker setup, and
// signal handling.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"myy/internal/aggregate"
	"myy/internal/backend"
	"myy/internal/cache"
	"myy/internal/config"
	"myy/internal/kv"
	applog "myy/internal/log"
	"myy/internal/services"
)

// SetupLogger builds the application logger from cfg and installs it as
// the slog default. An unknown level falls back to info.
func SetupLogger(cfg *config.Config, component string) *applog.Logger {
	lc := applog.DefaultConfig()
	lc.Component = component
	if cfg != nil {
		if lvl, err := applog.ParseLevel(cfg.LogLevel); err == nil {
			lc.Level = lvl
		}
		lc.Format = cfg.LogFormat
	}
	logger := applog.New(lc)
	applog.SetDefault(logger)
	return logger
}

// LoadAndValidateConfig loads configuration and validates it.
// Returns the config or exits the process on validation failure.
func LoadAndValidateConfig(logger *slog.Logger) *config.Config {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("Configuration load failed", applog.FieldError, err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", applog.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// Runtime is an opened tracker plus what is needed to tear it down.
type Runtime struct {
	Tracker *services.Tracker
	Views   *cache.LRUCache[aggregate.MonthSummary]
	Store   kv.Store
	Backend backend.BackendType
	cleanup backend.CleanupFunc
}

// Close closes the tracker and then the backing store.
func (r *Runtime) Close() error {
	if err := r.Tracker.Close(); err != nil {
		return err
	}
	if r.cleanup != nil {
		return r.cleanup()
	}
	return nil
}

// OpenTracker creates the configured backend and opens the tracker over it.
func OpenTracker(ctx context.Context, cfg *config.Config, logger *applog.Logger, opts ...services.Option) (*Runtime, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	res, err := backend.NewFactory(logger.Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("create %s backend: %w", bcfg.Type, err)
	}

	views := cache.NewLRUCache[aggregate.MonthSummary](cfg.SummaryCacheSize, cfg.SummaryCacheTTL)
	opts = append([]services.Option{services.WithLogger(logger), services.WithViewCache(views)}, opts...)

	tracker, err := services.Open(ctx, res.Store, opts...)
	if err != nil {
		_ = res.Cleanup()
		return nil, err
	}
	return &Runtime{Tracker: tracker, Views: views, Store: res.Store, Backend: bcfg.Type, cleanup: res.Cleanup}, nil
}

// Ping reads one key to check the store answers.
func (r *Runtime) Ping(ctx context.Context) error {
	_, _, err := r.Store.Get(ctx, kv.KeyDarkMode)
	return err
}

// GracefulShutdown returns a context that is cancelled on SIGINT or
// SIGTERM. The returned stop function releases the signal handler.
func GracefulShutdown(parent context.Context, logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()

	return ctx, func() {
		signal.Stop(sigChan)
		cancel()
	}
}
