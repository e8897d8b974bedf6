package workerpool

import (
	"context"
	"fmt"

	"github.com/panjf2000/ants/v2"
)

// Pool bounds the number of concurrently running jobs. Submit blocks while
// every worker is busy.
type Pool struct {
	pool *ants.Pool
}

func New(size int) (*Pool, error) {
	if size <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", size)
	}
	p, err := ants.NewPool(size, ants.WithNonblocking(false))
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Pool{pool: p}, nil
}

// Submit queues job. If ctx is already done when a worker picks the job up,
// the job is skipped.
func (p *Pool) Submit(ctx context.Context, job func(ctx context.Context)) error {
	err := p.pool.Submit(func() {
		if ctx.Err() != nil {
			return
		}
		job(ctx)
	})
	if err != nil {
		return fmt.Errorf("submit job: %w", err)
	}
	return nil
}

func (p *Pool) Stop() {
	p.pool.Release()
}

func (p *Pool) Workers() int {
	return p.pool.Cap()
}

func (p *Pool) Running() int {
	return p.pool.Running()
}
