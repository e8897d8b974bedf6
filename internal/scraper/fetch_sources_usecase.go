package scraper

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type Fetcher interface {
	Fetch(ctx context.Context, source Source) (string, error)
}

type WorkerPool interface {
	Submit(ctx context.Context, job func(ctx context.Context)) error
}

type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
}

// FetchResult is the outcome for one source. Text is empty when Err is set.
type FetchResult struct {
	Source Source
	Text   string
	Err    error
}

type FetchSourcesUseCase struct {
	fetcher Fetcher
	pool    WorkerPool
	sources []Source
	timeout time.Duration
	logger  Logger
}

func NewFetchSourcesUseCase(f Fetcher, pool WorkerPool, sources []Source, timeout time.Duration, logger Logger) *FetchSourcesUseCase {
	return &FetchSourcesUseCase{
		fetcher: f,
		pool:    pool,
		sources: sources,
		timeout: timeout,
		logger:  logger,
	}
}

// Execute fetches every source concurrently. Results come back in source
// order whatever the completion order; a failing source yields an empty text
// and an entry in the returned errors.
func (uc *FetchSourcesUseCase) Execute(ctx context.Context) ([]FetchResult, []error) {
	results := make([]FetchResult, len(uc.sources))

	var wg sync.WaitGroup
	for i, src := range uc.sources {
		results[i].Source = src
		wg.Add(1)

		// The job must always run so wg is released; it checks ctx itself.
		err := uc.pool.Submit(context.WithoutCancel(ctx), func(context.Context) {
			defer wg.Done()

			if err := ctx.Err(); err != nil {
				results[i].Err = fmt.Errorf("fetch %s: %w", src.Name, err)
				return
			}

			timeoutCtx, cancel := context.WithTimeout(ctx, uc.timeout)
			defer cancel()

			text, err := uc.fetcher.Fetch(timeoutCtx, src)
			if err != nil {
				results[i].Err = fmt.Errorf("fetch %s: %w", src.Name, err)
				return
			}
			results[i].Text = text
		})
		if err != nil {
			results[i].Err = fmt.Errorf("schedule %s: %w", src.Name, err)
			wg.Done()
		}
	}
	wg.Wait()

	var errs []error
	for i := range results {
		if results[i].Err != nil {
			uc.logger.Warn("source failed", "source", results[i].Source.Name, "error", results[i].Err)
			errs = append(errs, results[i].Err)
			continue
		}
		uc.logger.Debug("source fetched", "source", results[i].Source.Name, "bytes", len(results[i].Text))
	}

	uc.logger.Info("fetch complete", "sources", len(uc.sources), "failed", len(errs))
	return results, errs
}
