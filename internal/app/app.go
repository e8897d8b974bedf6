// Package app assembles the run pipeline from configuration. It is shared by
// the one-shot and scheduled commands.
package app

import (
	"context"
	"fmt"
	"time"

	"github.com/JulianoL13/app-config-aggregator/internal/common/logs"
	queueredis "github.com/JulianoL13/app-config-aggregator/internal/common/queue/redis"
	"github.com/JulianoL13/app-config-aggregator/internal/common/workerpool"
	"github.com/JulianoL13/app-config-aggregator/internal/config"
	"github.com/JulianoL13/app-config-aggregator/internal/descriptor"
	descriptorredis "github.com/JulianoL13/app-config-aggregator/internal/descriptor/redis"
	"github.com/JulianoL13/app-config-aggregator/internal/pipeline"
	"github.com/JulianoL13/app-config-aggregator/internal/pipeline/adapters"
	"github.com/JulianoL13/app-config-aggregator/internal/scraper"
	httpclient "github.com/JulianoL13/app-config-aggregator/internal/scraper/http"
	"github.com/JulianoL13/app-config-aggregator/internal/verifier"
	netverifier "github.com/JulianoL13/app-config-aggregator/internal/verifier/net"
	"github.com/redis/go-redis/v9"
)

const (
	pingTimeout  = 5 * time.Second
	streamMaxLen = 1000
)

// Pipeline owns the resources behind one AggregateUseCase.
type Pipeline struct {
	Aggregate *pipeline.AggregateUseCase
	closers   []func()
}

func (p *Pipeline) Close() {
	for i := len(p.closers) - 1; i >= 0; i-- {
		p.closers[i]()
	}
}

func NewRedisClient(cfg config.Redis) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
}

// BuildPipeline wires fetching, probing, the artifact store and, when Redis
// is configured and reachable, snapshot publishing.
func BuildPipeline(ctx context.Context, cfg config.Config, logger logs.Logger) (*Pipeline, error) {
	p := &Pipeline{}

	fetchPool, err := workerpool.New(cfg.Fetch.Concurrency)
	if err != nil {
		return nil, fmt.Errorf("fetch pool: %w", err)
	}
	p.closers = append(p.closers, fetchPool.Stop)

	fetcher := httpclient.New(httpclient.Options{
		Timeout:   cfg.Fetch.Timeout,
		MaxBytes:  cfg.Fetch.MaxBytes,
		UserAgent: cfg.Fetch.UserAgent,
		GitHubAPI: cfg.Fetch.GitHubAPI,
	}, logger)
	fetchUC := scraper.NewFetchSourcesUseCase(fetcher, fetchPool, scraper.NewSources(cfg.Sources), cfg.Fetch.Timeout, logger)

	var prober pipeline.Prober
	if cfg.Probe.Enabled {
		probePool, err := workerpool.New(cfg.Probe.Concurrency)
		if err != nil {
			p.Close()
			return nil, fmt.Errorf("probe pool: %w", err)
		}
		p.closers = append(p.closers, probePool.Stop)

		checker := netverifier.New(netverifier.Options{Timeout: cfg.Probe.Timeout}, logger)
		probeUC := verifier.NewProbeUseCase(checker, probePool, cfg.Probe.Timeout, logger).
			WithRateLimit(cfg.Probe.RatePerSecond)
		prober = adapters.NewProbeAdapter(probeUC)
	}

	store := adapters.NewFileStore(cfg.Artifact.Path, cfg.Artifact.ListPath, cfg.Artifact.TailMarkers, cfg.Artifact.DefaultHeader)

	var publisher pipeline.Publisher
	if cfg.Redis.Addr != "" {
		client := NewRedisClient(cfg.Redis)

		pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		err := client.Ping(pingCtx).Err()
		cancel()

		if err != nil {
			logger.Warn("redis unavailable, snapshots will not be published", "addr", cfg.Redis.Addr, "error", err)
			client.Close()
		} else {
			p.closers = append(p.closers, func() { client.Close() })

			repo := descriptorredis.NewRepository(client, cfg.Redis.KeyPrefix).WithTTL(cfg.Redis.TTL)
			streams := queueredis.NewStreamsClient(client, streamMaxLen)
			publisher = adapters.NewSnapshotPublisher(repo, streams, cfg.Redis.Topic, cfg.Artifact.Path)
			logger.Info("connected to redis", "addr", cfg.Redis.Addr)
		}
	}

	p.Aggregate = pipeline.NewAggregateUseCase(
		adapters.NewSourceAdapter(fetchUC),
		descriptor.NewScorer(cfg.Scoring),
		prober,
		store,
		publisher,
		pipeline.Options{
			Remark:    cfg.Remark,
			MaxOutput: cfg.MaxOutput,
			Policy:    pipeline.ProbePolicy(cfg.Probe.Policy),
			Penalty:   cfg.Probe.Penalty,
		},
		logger,
	)

	return p, nil
}
