package enrich

import "context"

// Task is a unit of background work executed by a TaskQueue worker.
type Task struct {
	Name string
	Run  func(ctx context.Context)
}

// TaskQueue runs submitted tasks on a single background worker, strictly
// sequentially. Submit returns immediately; the queue's lifecycle (pending
// count, in-flight flag) is inspectable so batch triggers can report state
// instead of launching untracked goroutines.
type TaskQueue interface {
	// Submit enqueues a task for background execution.
	// Returns an error if the queue has been closed.
	Submit(task Task) error

	// Pending returns the number of tasks waiting to run.
	Pending() int

	// Busy reports whether a task is currently executing.
	Busy() bool

	// Close stops the worker after the in-flight task finishes and discards
	// pending tasks. Close blocks until the worker has exited.
	Close() error
}
