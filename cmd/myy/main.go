// Command myy is the terminal front end of the tracker.
package main

import (
	"context"
	"os"

	"myy/internal/cli"
	applog "myy/internal/log"
)

func main() {
	bootLogger := cli.SetupLogger(nil, applog.ComponentCLI)
	cfg := cli.LoadAndValidateConfig(bootLogger.Logger)

	lc := applog.DefaultConfig()
	lc.Component = applog.ComponentCLI
	lc.Format = cfg.LogFormat
	lc.Output = os.Stderr
	if lvl, err := applog.ParseLevel(cfg.LogLevel); err == nil {
		lc.Level = lvl
	}
	logger := applog.New(lc)
	applog.SetDefault(logger)

	ctx, stop := cli.GracefulShutdown(context.Background(), logger.Logger)
	rt, err := cli.OpenTracker(ctx, cfg, logger)
	if err != nil {
		logger.Error("Failed to open tracker", applog.FieldError, err, applog.FieldBackend, cfg.DataBackend)
		stop()
		os.Exit(1)
	}

	a := &app{tracker: rt.Tracker, in: os.Stdin, out: os.Stdout, errOut: os.Stderr}
	code := a.run(ctx, os.Args[1:])

	if err := rt.Close(); err != nil {
		logger.Error("Failed to close store", applog.FieldError, err)
	}
	stop()
	os.Exit(code)
}
