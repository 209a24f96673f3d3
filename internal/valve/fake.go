package valve

import "time"

// FakeWaiter records requested waits without blocking, so pulse tests
// run instantly and can assert the drive and decay windows.
type FakeWaiter struct {
	Waits []time.Duration
}

func (f *FakeWaiter) Wait(d time.Duration) {
	f.Waits = append(f.Waits, d)
}

// Reset clears the recorded waits.
func (f *FakeWaiter) Reset() {
	f.Waits = nil
}
