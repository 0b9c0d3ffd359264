package tmx

import (
	"context"
	"sync"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// barrier joins the tasks a parse spawns (external tileset fetches,
// decompression) before the document is resolved.
//
// Tasks are never cancelled. Once one fails the parse is failed, tasks still
// in flight run to completion and their results are dropped.
type barrier struct {
	group errgroup.Group

	// bounds running task bodies, nil for no limit
	sem *semaphore.Weighted

	lock sync.Mutex
	err  error
}

func newBarrier(maxTasks int) *barrier {
	b := &barrier{}
	if maxTasks > 0 {
		b.sem = semaphore.NewWeighted(int64(maxTasks))
	}
	return b
}

// Go schedules `task`. This never blocks the caller.
func (b *barrier) Go(task func() error) {
	b.group.Go(func() error {
		if b.sem != nil {
			// acquiring with a background context only fails on a
			// weight > the limit, which we never ask for
			_ = b.sem.Acquire(context.Background(), 1)
			defer b.sem.Release(1)
		}

		err := task()
		if err != nil {
			b.fail(err)
		}
		return err
	})
}

// fail records `err` if it's the first failure
func (b *barrier) fail(err error) {
	b.lock.Lock()
	defer b.lock.Unlock()
	if b.err == nil {
		b.err = err
	}
}

// Err returns the first task failure so far (if any) without waiting.
func (b *barrier) Err() error {
	b.lock.Lock()
	defer b.lock.Unlock()
	return b.err
}

// Wait for all tasks to finish & return the first failure.
func (b *barrier) Wait() error {
	b.group.Wait()
	return b.Err()
}
