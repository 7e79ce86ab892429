package worker

import (
	"context"
	"log/slog"
	"sync"

	"github.com/reshetovitsme/tweet-media-relay/internal/shared/errors"
	"github.com/samber/oops"
)

// Handler processes one job
type Handler[J any] func(ctx context.Context, job J) error

// ErrorHook receives handler errors and recovered panics
type ErrorHook[J any] func(ctx context.Context, job J, err error)

// Pool runs jobs on a fixed number of goroutines fed by a buffered queue.
// A panicking job is recovered and reported through the error hook; the worker keeps running.
type Pool[J any] struct {
	workers int
	jobs    chan J
	handle  Handler[J]
	onError ErrorHook[J]

	mu     sync.RWMutex
	closed bool
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a pool. workers and queueSize below one are raised to one and zero.
func New[J any](workers, queueSize int, handle Handler[J], onError ErrorHook[J]) *Pool[J] {
	return &Pool[J]{
		workers: max(workers, 1),
		jobs:    make(chan J, max(queueSize, 0)),
		handle:  handle,
		onError: onError,
		ctx:     context.Background(),
		cancel:  func() {},
	}
}

// Start launches the workers. Cancelling ctx aborts queued and running jobs.
func (p *Pool[J]) Start(ctx context.Context) {
	p.mu.Lock()
	p.ctx, p.cancel = context.WithCancel(ctx)
	p.mu.Unlock()

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.run(i)
	}
	slog.Info("Worker pool started", "workers", p.workers, "queue_size", cap(p.jobs))
}

func (p *Pool[J]) run(id int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.process(id, job)
		}
	}
}

func (p *Pool[J]) process(id int, job J) {
	var err error
	if panicErr := oops.With("worker", id).Recover(func() {
		err = p.handle(p.ctx, job)
	}); panicErr != nil {
		err = panicErr
	}

	if err != nil && p.onError != nil {
		p.onError(p.ctx, job, err)
	}
}

// Enqueue blocks until the job is queued, ctx is done or the pool stops.
func (p *Pool[J]) Enqueue(ctx context.Context, job J) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return errors.ErrWorkerPoolClosed
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-p.ctx.Done():
		return errors.ErrWorkerPoolClosed
	case p.jobs <- job:
		return nil
	}
}

// Stop refuses new jobs, lets the workers drain the queue and waits for them.
func (p *Pool[J]) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
	slog.Info("Worker pool stopped")
}
