package mock

import "github.com/contentloop/enrich"

var _ enrich.TaskQueue = (*TaskQueue)(nil)

// TaskQueue is a mock implementation of enrich.TaskQueue.
type TaskQueue struct {
	SubmitFn  func(task enrich.Task) error
	PendingFn func() int
	BusyFn    func() bool
	CloseFn   func() error
}

func (q *TaskQueue) Submit(task enrich.Task) error {
	return q.SubmitFn(task)
}

func (q *TaskQueue) Pending() int {
	if q.PendingFn == nil {
		return 0
	}
	return q.PendingFn()
}

func (q *TaskQueue) Busy() bool {
	if q.BusyFn == nil {
		return false
	}
	return q.BusyFn()
}

func (q *TaskQueue) Close() error {
	if q.CloseFn == nil {
		return nil
	}
	return q.CloseFn()
}
