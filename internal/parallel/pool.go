// Package parallel provides the worker pool used to multiplex
// independent match problems across goroutines. Each problem is owned
// by exactly one worker at a time; the pool only schedules, it never
// shares search state.
package parallel

import (
	"context"
	"fmt"
	"runtime"
	"sync"
)

// ErrPoolShutdown is returned when submitting work to a pool that has
// been shut down.
var ErrPoolShutdown = fmt.Errorf("worker pool has been shutdown")

// WorkerPool manages a fixed set of goroutines running match searches.
// It provides controlled concurrency with backpressure: submission
// blocks once every worker is busy and the task queue is full, so a
// large batch of problems cannot exhaust memory with parked searches.
type WorkerPool struct {
	maxWorkers   int
	taskChan     chan func()
	workerWg     sync.WaitGroup
	shutdownChan chan struct{}
	once         sync.Once
}

// NewWorkerPool creates a pool with the given number of workers.
// A non-positive count defaults to the number of CPU cores.
func NewWorkerPool(maxWorkers int) *WorkerPool {
	if maxWorkers <= 0 {
		maxWorkers = runtime.NumCPU()
	}

	pool := &WorkerPool{
		maxWorkers:   maxWorkers,
		taskChan:     make(chan func(), maxWorkers*2),
		shutdownChan: make(chan struct{}),
	}

	for i := 0; i < maxWorkers; i++ {
		pool.workerWg.Add(1)
		go pool.worker()
	}

	return pool
}

// worker drains the task channel until shutdown.
func (wp *WorkerPool) worker() {
	defer wp.workerWg.Done()

	for {
		select {
		case task := <-wp.taskChan:
			if task != nil {
				task()
			}
		case <-wp.shutdownChan:
			return
		}
	}
}

// Submit queues a task, blocking until a worker slot frees up, the
// context is cancelled, or the pool shuts down.
func (wp *WorkerPool) Submit(ctx context.Context, task func()) error {
	select {
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	default:
	}
	select {
	case wp.taskChan <- task:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-wp.shutdownChan:
		return ErrPoolShutdown
	}
}

// Size returns the number of workers.
func (wp *WorkerPool) Size() int {
	return wp.maxWorkers
}

// Shutdown stops the pool, waiting for currently executing tasks to
// complete. Tasks still queued may run or be dropped: each idle worker
// picks at random between a queued task and the shutdown signal.
func (wp *WorkerPool) Shutdown() {
	wp.once.Do(func() {
		close(wp.shutdownChan)
		close(wp.taskChan)
		wp.workerWg.Wait()
	})
}
