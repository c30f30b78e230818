package utils

import (
	"context"
	"sync"
)

// DefaultWorkers is used when a pool is created with a non-positive size.
const DefaultWorkers = 4

// Worker processes one item.
type Worker[T any, R any] func(ctx context.Context, item T) (R, error)

// WorkerPool runs a worker over a slice of items with bounded concurrency.
// Results and errors are returned in item order. A panicking worker yields a
// *PanicError for its item and does not stop the pool.
//
// Example:
//
//	pool := NewWorkerPool(4, func(ctx context.Context, text string) (int, error) {
//	    return len(text), nil
//	})
//	lengths, errs := pool.Process(ctx, []string{"a", "bb", "ccc"})
type WorkerPool[T any, R any] struct {
	numWorkers int
	worker     Worker[T, R]
}

// NewWorkerPool creates a new worker pool
func NewWorkerPool[T any, R any](numWorkers int, worker Worker[T, R]) *WorkerPool[T, R] {
	if numWorkers <= 0 {
		numWorkers = DefaultWorkers
	}
	return &WorkerPool[T, R]{
		numWorkers: numWorkers,
		worker:     worker,
	}
}

// Process blocks until every item is handled or ctx is done. Items never
// started because ctx ended get ctx.Err().
func (wp *WorkerPool[T, R]) Process(ctx context.Context, items []T) ([]R, []error) {
	if len(items) == 0 {
		return nil, nil
	}

	indexes := make(chan int, len(items))
	for i := range items {
		indexes <- i
	}
	close(indexes)

	results := make([]R, len(items))
	errs := make([]error, len(items))
	started := make([]bool, len(items))

	workers := min(wp.numWorkers, len(items))
	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				if ctx.Err() != nil {
					return
				}
				// Each index is owned by exactly one worker.
				started[i] = true
				results[i], errs[i] = CallSafely(func() (R, error) {
					return wp.worker(ctx, items[i])
				})
			}
		}()
	}
	wg.Wait()

	for i := range items {
		if !started[i] {
			errs[i] = ctx.Err()
		}
	}
	return results, errs
}
