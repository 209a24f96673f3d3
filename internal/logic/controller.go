package logic

import "time"

const (
	// FaultMultiplier scales the check interval into the longest fill
	// the controller tolerates before declaring the fill stuck.
	FaultMultiplier = 32

	// SettleMultiplier scales the check interval into the post-fill
	// hold-off during which level checks are suppressed.
	SettleMultiplier = 16

	// minFillTicks is the minimum number of ticks a fill runs before
	// the level is consulted, so ripple at the float does not close
	// the valve immediately after opening it.
	minFillTicks = 2
)

// Controller is the tank fill state machine. It is evaluated once per
// wake tick with the current float switch level and decides when to
// pulse the valve.
type Controller struct {
	checkInterval uint32
	ticks         Ticks
	valve         Valve

	state         State
	counts        EventCounts
	startTime     time.Time
	lastHeartbeat time.Time
}

// NewController creates a controller in the idle state. checkInterval is
// the number of ticks between level checks while idle; the fault and
// settle windows are derived from it. The startTime is used for
// calculating uptime in heartbeat events.
func NewController(checkInterval uint32, ticks Ticks, valve Valve, startTime time.Time) *Controller {
	return &Controller{
		checkInterval: checkInterval,
		ticks:         ticks,
		valve:         valve,
		state:         StateIdle,
		startTime:     startTime,
		lastHeartbeat: startTime,
	}
}

// Evaluate advances the state machine one step and returns any events
// that should be emitted. The tick counter is read exactly once per
// evaluation, so every branch sees the same count. A valve error does
// not suppress the transition or its event; the caller decides how to
// report it.
func (c *Controller) Evaluate(in Input) ([]Event, error) {
	n := c.ticks.Count()

	switch c.state {
	case StateIdle:
		return c.evalIdle(in, n)
	case StateFilling:
		return c.evalFilling(in, n)
	case StatePostFill:
		return c.evalPostFill(in, n)
	case StateFault:
		return c.evalFault(in, n)
	}
	return nil, nil
}

// evalIdle waits out the check interval, then opens the valve if the
// tank needs water. The counter resets whether or not a fill starts, so
// checks stay evenly spaced.
func (c *Controller) evalIdle(in Input, n uint32) ([]Event, error) {
	if n <= c.checkInterval {
		return nil, nil
	}
	c.ticks.Reset()
	if in.Full {
		return nil, nil
	}
	c.state = StateFilling
	err := c.valve.Pulse(Open)
	return c.emit(EventValveOpen, in.Time, n), err
}

// evalFilling closes the valve when the float reports full, or declares
// a fault if the fill has run too long.
func (c *Controller) evalFilling(in Input, n uint32) ([]Event, error) {
	if n < minFillTicks {
		return nil, nil
	}
	if in.Full {
		c.ticks.Reset()
		c.state = StatePostFill
		err := c.valve.Pulse(Close)
		return c.emit(EventValveClose, in.Time, n), err
	}
	if n >= c.checkInterval*FaultMultiplier {
		// No reset: the counter keeps running until the fault clears.
		c.state = StateFault
		err := c.valve.Pulse(Close)
		return c.emit(EventFault, in.Time, n), err
	}
	return nil, nil
}

// evalPostFill holds in hysteresis until the settle window elapses. The
// float is not consulted here; waves from the fill would otherwise
// retrigger immediately.
func (c *Controller) evalPostFill(in Input, n uint32) ([]Event, error) {
	if n < c.checkInterval*SettleMultiplier {
		return nil, nil
	}
	c.ticks.Reset()
	c.state = StateIdle
	return c.emit(EventSettled, in.Time, n), nil
}

// evalFault waits for the float to report full again, which means water
// arrived after all (or someone filled the tank by hand). The valve was
// already pulsed closed on the way in.
func (c *Controller) evalFault(in Input, n uint32) ([]Event, error) {
	if !in.Full {
		return nil, nil
	}
	c.ticks.Reset()
	c.state = StateIdle
	return c.emit(EventFaultCleared, in.Time, n), nil
}

// emit records the event in the counts and wraps it with the current
// (post-transition) state.
func (c *Controller) emit(t EventType, at time.Time, n uint32) []Event {
	switch t {
	case EventValveOpen:
		c.counts.Opened++
	case EventValveClose:
		c.counts.Closed++
	case EventFault:
		c.counts.Faults++
	case EventFaultCleared:
		c.counts.Recovered++
	case EventSettled:
		c.counts.Settled++
	}

	return []Event{{
		Timestamp: at,
		Type:      t,
		State:     c.state,
		Ticks:     n,
	}}
}

// CurrentState returns the controller's current state.
func (c *Controller) CurrentState() State {
	return c.state
}

// Counts returns the number of each event emitted since startup.
func (c *Controller) Counts() EventCounts {
	return c.counts
}

// CheckHeartbeat returns heartbeat data if the interval has elapsed since
// the last heartbeat (or startup). Returns nil if the interval has not
// elapsed, or if interval is <= 0 (disabled).
func (c *Controller) CheckHeartbeat(now time.Time, interval time.Duration) *HeartbeatData {
	if interval <= 0 {
		return nil
	}

	if now.Sub(c.lastHeartbeat) < interval {
		return nil
	}

	c.lastHeartbeat = now
	return &HeartbeatData{
		Timestamp: now,
		Uptime:    now.Sub(c.startTime),
		State:     c.state,
		Counts:    c.counts,
	}
}
