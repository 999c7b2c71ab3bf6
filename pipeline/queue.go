// Package pipeline coordinates the enrichment flow: article discovery from
// the source site, single-article enhancement, sequential batch runs, the
// search-backend cascade and the background task queue that serializes all
// of it.
package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"github.com/contentloop/enrich"
)

// Ensure Queue implements enrich.TaskQueue at compile time.
var _ enrich.TaskQueue = (*Queue)(nil)

// Queue runs submitted tasks on a single background worker, strictly in
// submission order. One worker is the point: discovery and enhancement runs
// must never interleave, so overlapping triggers queue up instead of racing.
type Queue struct {
	logger *slog.Logger

	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []enrich.Task
	busy   bool
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
}

// NewQueue creates a Queue and starts its worker.
func NewQueue(logger *slog.Logger) *Queue {
	q := &Queue{
		logger: logger,
		done:   make(chan struct{}),
	}
	q.cond = sync.NewCond(&q.mu)
	q.ctx, q.cancel = context.WithCancel(context.Background())
	go q.run()
	return q
}

// Submit enqueues a task for background execution.
func (q *Queue) Submit(task enrich.Task) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return enrich.Errorf(enrich.EUNAVAILABLE, "task queue is closed")
	}

	q.tasks = append(q.tasks, task)
	q.cond.Signal()
	return nil
}

// Pending returns the number of tasks waiting to run.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.tasks)
}

// Busy reports whether a task is currently executing.
func (q *Queue) Busy() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.busy
}

// Close stops the worker, cancels the in-flight task's context and discards
// pending tasks. Close blocks until the worker has exited and is safe to
// call multiple times.
func (q *Queue) Close() error {
	q.mu.Lock()
	if !q.closed {
		q.closed = true
		q.cancel()
		q.cond.Signal()
	}
	q.mu.Unlock()

	<-q.done
	return nil
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if q.closed {
			q.tasks = nil
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks = q.tasks[1:]
		q.busy = true
		q.mu.Unlock()

		q.logger.Info("task started", "task", task.Name)
		task.Run(q.ctx)
		q.logger.Info("task finished", "task", task.Name)

		q.mu.Lock()
		q.busy = false
		q.mu.Unlock()
	}
}
