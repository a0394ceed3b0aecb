package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lcalzada-xor/wsniff/internal/app"
	"github.com/lcalzada-xor/wsniff/internal/config"
	"github.com/lcalzada-xor/wsniff/internal/telemetry"
)

func main() {
	// load config
	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		return
	}
	if err != nil {
		slog.Error("Invalid configuration", "error", err)
		os.Exit(2)
	}

	// Setup Structured Logging
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	// Raw sockets and mode changes need root; replaying a file does not.
	if cfg.ReplayPath == "" && os.Geteuid() != 0 {
		slog.Error("wsniff must run as root to capture (use -replay to read a pcap file)")
		os.Exit(1)
	}

	// Initialize Tracing
	shutdownTracer, err := telemetry.InitTracer(nil)
	if err != nil {
		slog.Error("Failed to init tracer", "error", err)
	} else {
		defer func() {
			if err := shutdownTracer(context.Background()); err != nil {
				slog.Error("Failed to shutdown tracer", "error", err)
			}
		}()
	}

	// Initialize Application
	application, err := app.New(cfg)
	if err != nil {
		slog.Error("Failed to initialize application", "error", err)
		os.Exit(1)
	}

	// Root Context with cancellation on Interrupt
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	slog.Info("wsniff starting...", "interface", cfg.Interface, "addr", cfg.Addr)

	// Run stops the engine, restoring managed mode, before it returns
	if err := application.Run(ctx); err != nil {
		slog.Error("Application error", "error", err)
	}
}
