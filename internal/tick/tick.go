// Package tick provides the wake-tick counter the control loop runs on.
// The tick goroutine increments the counter and latches a wake; the
// control loop reads and resets the counter between wakes. The split
// mirrors an interrupt-driven counter serviced by a sleeping foreground
// loop.
package tick

import (
	"context"
	"sync/atomic"
	"time"
)

// Counter counts wake ticks. Increment runs on the tick goroutine, Count
// and Reset on the control loop; the atomic cell keeps the two contexts
// coherent without a lock. A tick landing between Count and Reset is
// absorbed by the reset, so intervals are measured from the last reset.
type Counter struct {
	n atomic.Uint32
}

func (c *Counter) Increment() {
	c.n.Add(1)
}

func (c *Counter) Count() uint32 {
	return c.n.Load()
}

func (c *Counter) Reset() {
	c.n.Store(0)
}

// Source emits wake ticks at a fixed interval. Wakes coalesce when the
// loop is behind: a sleeping loop services one wake no matter how many
// ticks fired while it was busy, but the counter still records them all.
type Source struct {
	interval time.Duration
	counter  *Counter
	wake     chan struct{}
}

func NewSource(interval time.Duration, counter *Counter) *Source {
	return &Source{
		interval: interval,
		counter:  counter,
		wake:     make(chan struct{}, 1),
	}
}

// Wake returns the channel the control loop blocks on.
func (s *Source) Wake() <-chan struct{} {
	return s.wake
}

// Run increments the counter and latches a wake every interval until ctx
// is cancelled.
func (s *Source) Run(ctx context.Context) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.counter.Increment()
			select {
			case s.wake <- struct{}{}:
			default:
			}
		}
	}
}
