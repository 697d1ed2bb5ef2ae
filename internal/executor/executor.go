// Package executor runs remote requests on a fixed pool of workers fed by a
// bounded queue.
package executor

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"github.com/specialistvlad/graphua/internal/ctxlog"
)

var (
	// ErrQueueFull is returned by Submit when every queue slot is taken.
	ErrQueueFull = errors.New("executor queue is full")
	// ErrStopped is returned by Submit after Stop.
	ErrStopped = errors.New("executor stopped")
)

// Task is one unit of work. It receives the context it was submitted with.
type Task func(ctx context.Context)

// Dispatcher accepts tasks for asynchronous execution.
type Dispatcher interface {
	Submit(ctx context.Context, name string, task Task) error
}

type job struct {
	ctx  context.Context
	name string
	task Task
}

// Stats are running totals since the pool was created.
type Stats struct {
	Workers   int
	Queued    int
	Running   int64
	Completed uint64
	Rejected  uint64
	Skipped   uint64
	Panics    uint64
}

// Pool is a Dispatcher backed by a fixed number of goroutines.
type Pool struct {
	workers int
	queue   chan job
	wg      sync.WaitGroup

	mu      sync.RWMutex
	started bool
	stopped bool

	running   atomic.Int64
	completed atomic.Uint64
	rejected  atomic.Uint64
	skipped   atomic.Uint64
	panics    atomic.Uint64
}

var _ Dispatcher = (*Pool)(nil)

// New creates a pool. Values below one are raised to one.
func New(workers, queueSize int) *Pool {
	if workers < 1 {
		workers = 1
	}
	if queueSize < 1 {
		queueSize = 1
	}
	return &Pool{workers: workers, queue: make(chan job, queueSize)}
}

// Start launches the workers. Calling Start more than once has no effect.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started || p.stopped {
		return
	}
	p.started = true

	ctxlog.FromContext(ctx).Debug("Starting worker pool.", "workers", p.workers, "queue", cap(p.queue))
	for i := 1; i <= p.workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx, i)
	}
}

// Submit enqueues task without blocking. Tasks whose context is already done
// when a worker picks them up are skipped.
func (p *Pool) Submit(ctx context.Context, name string, task Task) error {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.stopped {
		p.rejected.Add(1)
		return ErrStopped
	}

	select {
	case p.queue <- job{ctx: ctx, name: name, task: task}:
		return nil
	default:
		p.rejected.Add(1)
		ctxlog.FromContext(ctx).Warn("Executor queue full, rejecting task.", "task", name)
		return ErrQueueFull
	}
}

// Stop closes the queue and waits for the queued tasks to finish.
func (p *Pool) Stop() {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	close(p.queue)
	started := p.started
	p.mu.Unlock()

	if !started {
		// Nothing will drain the queue; count what was left behind.
		for range p.queue {
			p.skipped.Add(1)
		}
		return
	}
	p.wg.Wait()
}

// Stats returns a snapshot of the counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.workers,
		Queued:    len(p.queue),
		Running:   p.running.Load(),
		Completed: p.completed.Load(),
		Rejected:  p.rejected.Load(),
		Skipped:   p.skipped.Load(),
		Panics:    p.panics.Load(),
	}
}
