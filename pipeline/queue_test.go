package pipeline_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/contentloop/enrich"
	"github.com/contentloop/enrich/pipeline"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQueue(t *testing.T) {
	t.Parallel()

	t.Run("runs tasks in submission order", func(t *testing.T) {
		t.Parallel()

		q := pipeline.NewQueue(discardLogger())
		defer q.Close()

		var mu sync.Mutex
		var order []string
		done := make(chan struct{})

		for _, name := range []string{"first", "second", "third"} {
			name := name
			err := q.Submit(enrich.Task{
				Name: name,
				Run: func(ctx context.Context) {
					mu.Lock()
					order = append(order, name)
					if len(order) == 3 {
						close(done)
					}
					mu.Unlock()
				},
			})
			require.NoError(t, err)
		}

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("tasks did not run")
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, []string{"first", "second", "third"}, order)
	})

	t.Run("never runs tasks concurrently", func(t *testing.T) {
		t.Parallel()

		q := pipeline.NewQueue(discardLogger())
		defer q.Close()

		var mu sync.Mutex
		running := 0
		maxRunning := 0
		done := make(chan struct{})

		for i := 0; i < 5; i++ {
			last := i == 4
			err := q.Submit(enrich.Task{
				Name: "overlap-check",
				Run: func(ctx context.Context) {
					mu.Lock()
					running++
					if running > maxRunning {
						maxRunning = running
					}
					mu.Unlock()

					time.Sleep(10 * time.Millisecond)

					mu.Lock()
					running--
					mu.Unlock()
					if last {
						close(done)
					}
				},
			})
			require.NoError(t, err)
		}

		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("tasks did not run")
		}

		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 1, maxRunning)
	})

	t.Run("busy and pending reflect lifecycle", func(t *testing.T) {
		t.Parallel()

		q := pipeline.NewQueue(discardLogger())
		defer q.Close()

		started := make(chan struct{})
		release := make(chan struct{})

		require.NoError(t, q.Submit(enrich.Task{
			Name: "blocker",
			Run: func(ctx context.Context) {
				close(started)
				<-release
			},
		}))
		require.NoError(t, q.Submit(enrich.Task{
			Name: "waiter",
			Run:  func(ctx context.Context) {},
		}))

		<-started
		assert.True(t, q.Busy())
		assert.Equal(t, 1, q.Pending())

		close(release)
	})

	t.Run("close cancels the in-flight task and rejects new submissions", func(t *testing.T) {
		t.Parallel()

		q := pipeline.NewQueue(discardLogger())

		started := make(chan struct{})
		canceled := make(chan struct{})

		require.NoError(t, q.Submit(enrich.Task{
			Name: "long-runner",
			Run: func(ctx context.Context) {
				close(started)
				<-ctx.Done()
				close(canceled)
			},
		}))

		<-started
		require.NoError(t, q.Close())

		select {
		case <-canceled:
		case <-time.After(time.Second):
			t.Fatal("in-flight task was not canceled")
		}

		err := q.Submit(enrich.Task{Name: "late", Run: func(ctx context.Context) {}})
		require.Error(t, err)
		assert.Equal(t, enrich.EUNAVAILABLE, enrich.ErrorCode(err))
	})

	t.Run("close is idempotent", func(t *testing.T) {
		t.Parallel()

		q := pipeline.NewQueue(discardLogger())
		require.NoError(t, q.Close())
		require.NoError(t, q.Close())
	})
}
