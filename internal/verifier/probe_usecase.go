package verifier

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type Prober interface {
	Probe(ctx context.Context, t Target) ProbeOutput
}

type WorkerPool interface {
	Submit(ctx context.Context, job func(ctx context.Context)) error
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type ProbeUseCase struct {
	prober  Prober
	pool    WorkerPool
	limiter *rate.Limiter
	timeout time.Duration
	logger  Logger
}

func NewProbeUseCase(prober Prober, pool WorkerPool, timeout time.Duration, logger Logger) *ProbeUseCase {
	return &ProbeUseCase{
		prober:  prober,
		pool:    pool,
		timeout: timeout,
		logger:  logger,
	}
}

// WithRateLimit caps how many probes start per second across all workers.
// Waiting for a turn does not count against a probe's timeout. Zero or less
// removes the cap.
func (uc *ProbeUseCase) WithRateLimit(perSecond float64) *ProbeUseCase {
	if perSecond <= 0 {
		uc.limiter = nil
		return uc
	}
	uc.limiter = rate.NewLimiter(rate.Limit(perSecond), max(1, int(perSecond)))
	return uc
}

// Execute probes every target through the pool and returns the outcomes keyed
// by Target.Key. Every key is present in the result; a probe that could not
// run reports its error.
func (uc *ProbeUseCase) Execute(ctx context.Context, targets []Target) map[string]ProbeOutput {
	uc.logger.Info("starting reachability probe", "count", len(targets))

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]ProbeOutput, len(targets))
	)

	store := func(key string, out ProbeOutput) {
		mu.Lock()
		results[key] = out
		mu.Unlock()
	}

	for _, target := range targets {
		wg.Add(1)

		err := uc.pool.Submit(context.WithoutCancel(ctx), func(context.Context) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				store(target.Key, ProbeOutput{Error: err})
				return
			}

			if uc.limiter != nil {
				if err := uc.limiter.Wait(ctx); err != nil {
					store(target.Key, ProbeOutput{Error: fmt.Errorf("rate limit: %w", err)})
					return
				}
			}

			probeCtx, cancel := context.WithTimeout(ctx, uc.timeout)
			defer cancel()

			out := uc.prober.Probe(probeCtx, target)
			if !out.Reachable {
				uc.logger.Debug("probe failed", "host", target.Host, "port", target.Port, "method", target.Method.String(), "error", out.Error)
			}
			store(target.Key, out)
		})
		if err != nil {
			store(target.Key, ProbeOutput{Error: fmt.Errorf("schedule probe: %w", err)})
			wg.Done()
		}
	}
	wg.Wait()

	alive := 0
	for _, out := range results {
		if out.Reachable {
			alive++
		}
	}
	uc.logger.Info("reachability probe complete", "alive", alive, "dead", len(results)-alive)

	return results
}
