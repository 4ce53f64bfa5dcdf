package karatsuba

import (
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"
)

var (
	taskSemaphore     chan struct{}
	taskSemaphoreOnce sync.Once
)

// getTaskSemaphore returns the process-wide semaphore bounding the number
// of goroutines spawned by parallel recursion. It holds 2·GOMAXPROCS
// tokens so some goroutines stay runnable while others wait on memory.
func getTaskSemaphore() chan struct{} {
	taskSemaphoreOnce.Do(func() {
		taskSemaphore = make(chan struct{}, runtime.GOMAXPROCS(0)*2)
	})
	return taskSemaphore
}

// executeParallel runs the three sub-products of a split node. A task gets
// its own goroutine only if a semaphore token is free right away; otherwise
// it runs on the calling goroutine. Acquisition never blocks, so nested
// parallel nodes cannot deadlock waiting on their ancestors' tokens.
// Once an inline task fails or the run is canceled, no further task is
// started.
func (r *run) executeParallel(tasks [3]func() error) error {
	sem := getTaskSemaphore()
	var g errgroup.Group
	var inlineErr error

	for _, task := range tasks {
		if inlineErr == nil {
			inlineErr = r.ctx.Err()
		}
		if inlineErr != nil {
			break
		}
		select {
		case sem <- struct{}{}:
			r.spawns.Add(1)
			g.Go(func() error {
				defer func() { <-sem }()
				return task()
			})
		default:
			inlineErr = task()
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}
	return inlineErr
}
