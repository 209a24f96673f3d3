package valve

import "time"

// Waiter blocks the caller for a duration. The drive and decay windows
// are a few milliseconds, short enough to block the control loop for;
// nothing else needs servicing while a pulse is in flight.
type Waiter interface {
	Wait(d time.Duration)
}

// TimerWaiter blocks on a one-shot timer.
type TimerWaiter struct{}

func (TimerWaiter) Wait(d time.Duration) {
	if d <= 0 {
		return
	}
	t := time.NewTimer(d)
	<-t.C
}
