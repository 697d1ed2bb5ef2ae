package executor

import (
	"context"

	"github.com/specialistvlad/graphua/internal/ctxlog"
)

// worker is the processing loop for a single worker goroutine.
func (p *Pool) worker(ctx context.Context, workerID int) {
	defer p.wg.Done()
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Worker started.", "workerID", workerID)

	for j := range p.queue {
		if err := j.ctx.Err(); err != nil {
			ctxlog.FromContext(j.ctx).Debug("Skipping cancelled task.", "workerID", workerID, "task", j.name, "error", err)
			p.skipped.Add(1)
			continue
		}
		p.run(j, workerID)
	}
	logger.Debug("Worker finished.", "workerID", workerID)
}

func (p *Pool) run(j job, workerID int) {
	taskLogger := ctxlog.FromContext(j.ctx).With("workerID", workerID, "task", j.name)
	p.running.Add(1)
	defer func() {
		p.running.Add(-1)
		if r := recover(); r != nil {
			p.panics.Add(1)
			taskLogger.Error("Task panicked.", "panic", r)
			return
		}
		p.completed.Add(1)
	}()

	taskLogger.Debug("Worker picked up task.")
	j.task(j.ctx)
}
