package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/JulianoL13/app-config-aggregator/internal/app"
	"github.com/JulianoL13/app-config-aggregator/internal/common/logs/slog"
	queueredis "github.com/JulianoL13/app-config-aggregator/internal/common/queue/redis"
	"github.com/JulianoL13/app-config-aggregator/internal/config"
	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
	descriptorhttp "github.com/JulianoL13/app-config-aggregator/internal/descriptor/http"
	descriptorredis "github.com/JulianoL13/app-config-aggregator/internal/descriptor/redis"
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
	logger.Info("starting config-aggregator API", "port", cfg.API.Port)

	if cfg.Redis.Addr == "" {
		logger.Error("REDIS_ADDR is required for the API")
		os.Exit(1)
	}

	redisClient := app.NewRedisClient(cfg.Redis)
	defer redisClient.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pingCtx, pingCancel := context.WithTimeout(ctx, 5*time.Second)
	defer pingCancel()

	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		logger.Error("failed to connect to redis", "error", err)
		os.Exit(1)
	}
	logger.Info("connected to redis", "addr", cfg.Redis.Addr)

	repo := descriptorredis.NewRepository(redisClient, cfg.Redis.KeyPrefix).WithTTL(cfg.Redis.TTL)
	cached := descriptor.NewCachedReader(repo)

	// Each instance needs its own group so every cache sees every event.
	hostname, _ := os.Hostname()
	streams := queueredis.NewStreamsClient(redisClient, 0)
	watcher := descriptor.NewWatchPublishedUseCase(streams, cached, logger, cfg.Redis.Topic,
		descriptor.DefaultGroupReaders+"-"+hostname, "api-"+hostname)

	go func() {
		if err := watcher.Execute(ctx); err != nil {
			logger.Error("snapshot watcher stopped", "error", err)
		}
	}()

	handler := descriptorhttp.NewHandler(
		descriptor.NewGetDescriptorsUseCase(cached, logger),
		descriptor.NewGetRandomDescriptorUseCase(cached, logger),
		repo,
		logger,
	)
	router := descriptorhttp.NewRouter(handler, logger)

	server := &http.Server{
		Addr:         ":" + cfg.API.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("listening", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-quit:
	case <-ctx.Done():
	}

	logger.Info("shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}

	logger.Info("server stopped")
}
