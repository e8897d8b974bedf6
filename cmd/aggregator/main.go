package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/JulianoL13/app-config-aggregator/internal/app"
	"github.com/JulianoL13/app-config-aggregator/internal/common/logs/slog"
	"github.com/JulianoL13/app-config-aggregator/internal/config"
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
	logger.Info("starting config aggregator", "sources", len(cfg.Sources), "artifact", cfg.Artifact.Path)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	p, err := app.BuildPipeline(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to build pipeline", "error", err)
		os.Exit(1)
	}
	defer p.Close()

	report, err := p.Aggregate.Execute(ctx)
	if err != nil {
		logger.Error("run failed", "run_id", report.RunID, "error", err)
		p.Close()
		os.Exit(1)
	}

	logger.Info("run report",
		"run_id", report.RunID,
		"sources", report.Sources,
		"failed_sources", report.FailedSources,
		"rejected", report.Rejected,
		"selected", report.Selected,
		"by_protocol", report.ByProtocol,
		"published", report.Published,
	)
}
