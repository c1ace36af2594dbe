package parallel

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkerPool(t *testing.T) {
	t.Run("executes submitted tasks", func(t *testing.T) {
		pool := NewWorkerPool(4)
		defer pool.Shutdown()

		var count atomic.Int64
		var wg sync.WaitGroup
		for i := 0; i < 32; i++ {
			wg.Add(1)
			err := pool.Submit(context.Background(), func() {
				defer wg.Done()
				count.Add(1)
			})
			require.NoError(t, err)
		}
		wg.Wait()
		assert.Equal(t, int64(32), count.Load())
	})

	t.Run("defaults worker count", func(t *testing.T) {
		pool := NewWorkerPool(0)
		defer pool.Shutdown()
		assert.Greater(t, pool.Size(), 0)
	})

	t.Run("submit after shutdown fails", func(t *testing.T) {
		pool := NewWorkerPool(1)
		pool.Shutdown()
		err := pool.Submit(context.Background(), func() {})
		assert.ErrorIs(t, err, ErrPoolShutdown)
	})

	t.Run("submit honors cancellation", func(t *testing.T) {
		pool := NewWorkerPool(1)
		defer pool.Shutdown()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		release := make(chan struct{})
		started := make(chan struct{})
		// Occupy the single worker, then fill the queue so the next
		// submission has to block.
		require.NoError(t, pool.Submit(context.Background(), func() {
			close(started)
			<-release
		}))
		<-started
		require.NoError(t, pool.Submit(context.Background(), func() {}))
		require.NoError(t, pool.Submit(context.Background(), func() {}))
		err := pool.Submit(ctx, func() {})
		assert.ErrorIs(t, err, context.Canceled)
		close(release)
	})
}
