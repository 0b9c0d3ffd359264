package tmx

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBarrierFirstErrorWins(t *testing.T) {
	b := newBarrier(0)
	first := errors.New("first")
	release := make(chan struct{})

	b.Go(func() error { return first })
	b.Go(func() error {
		<-release
		return errors.New("second")
	})

	// Err never blocks, poll until the first failure lands
	for b.Err() == nil {
		time.Sleep(time.Millisecond)
	}
	assert.Equal(t, first, b.Err())

	close(release)
	assert.Equal(t, first, b.Wait())
}

func TestBarrierLimitsRunningTasks(t *testing.T) {
	b := newBarrier(2)

	var running, peak int32
	for i := 0; i < 20; i++ {
		b.Go(func() error {
			now := atomic.AddInt32(&running, 1)
			for {
				old := atomic.LoadInt32(&peak)
				if now <= old || atomic.CompareAndSwapInt32(&peak, old, now) {
					break
				}
			}
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&running, -1)
			return nil
		})
	}

	assert.Nil(t, b.Wait())
	assert.True(t, atomic.LoadInt32(&peak) <= 2)
	assert.True(t, atomic.LoadInt32(&peak) >= 1)
}

func TestBarrierEmpty(t *testing.T) {
	b := newBarrier(4)

	assert.Nil(t, b.Err())
	assert.Nil(t, b.Wait())
}
