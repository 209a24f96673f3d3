// Package valve pulses the latching solenoid through the H-bridge. The
// valve holds its position without power, so a pulse is fire-and-forget:
// drive one winding briefly, let the current decay, put the bridge back
// to sleep.
package valve

import (
	"fmt"
	"time"

	"github.com/sweeney/stocktank/internal/gpio"
	"github.com/sweeney/stocktank/internal/logic"
)

// Solenoid sequences a single drive pulse. The drive window moves the
// valve; the decay window shorts the winding through the bridge's low
// side so the coil current collapses before the bridge sleeps.
type Solenoid struct {
	bridge gpio.Bridge
	waiter Waiter
	drive  time.Duration
	decay  time.Duration
}

// NewSolenoid creates a solenoid driver with the given drive and decay
// windows.
func NewSolenoid(bridge gpio.Bridge, waiter Waiter, drive, decay time.Duration) *Solenoid {
	return &Solenoid{
		bridge: bridge,
		waiter: waiter,
		drive:  drive,
		decay:  decay,
	}
}

// Pulse drives the valve one step in the given direction. The sequence
// always runs to the end so the bridge is never left enabled or a
// select left asserted; the first failing step is reported after the
// bridge is back asleep.
func (s *Solenoid) Pulse(dir logic.Direction) error {
	var firstErr error
	step := func(name string, err error) {
		if err != nil && firstErr == nil {
			firstErr = fmt.Errorf("%s: %w", name, err)
		}
	}

	switch dir {
	case logic.Open:
		step("select open", s.bridge.SelectOpen())
	case logic.Close:
		step("select close", s.bridge.SelectClose())
	default:
		return fmt.Errorf("unknown pulse direction %q", dir)
	}

	step("enable bridge", s.bridge.Enable())
	s.waiter.Wait(s.drive)
	step("clear selects", s.bridge.ClearSelects())
	s.waiter.Wait(s.decay)
	step("disable bridge", s.bridge.Disable())

	return firstErr
}
