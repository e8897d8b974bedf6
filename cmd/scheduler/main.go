package main

import (
	"context"
	"errors"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/JulianoL13/app-config-aggregator/internal/app"
	"github.com/JulianoL13/app-config-aggregator/internal/common/logs/slog"
	"github.com/JulianoL13/app-config-aggregator/internal/config"
	"github.com/JulianoL13/app-config-aggregator/internal/pipeline"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file (defaults to $CONFIG_FILE)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.New(slog.ParseLevel("info")).Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := slog.FromConfig(cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		<-quit
		logger.Info("shutting down...")
		cancel()
	}()

	p, err := app.BuildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer p.Close()

	uc := pipeline.NewScheduleUseCase(p.Aggregate, cfg.Schedule.Interval, logger)

	if err := uc.Execute(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("scheduler error", "error", err)
		p.Close()
		os.Exit(1)
	}
}
