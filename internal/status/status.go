// Package status provides a thread-safe status tracker for the stocktank
// daemon. It is read by the HTTP handlers and the MQTT heartbeat.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/stocktank/internal/logic"
)

// Config contains daemon configuration for display.
type Config struct {
	TickMs        int64
	CheckInterval uint32
	DriveMs       int64
	DecayMs       int64
	HeartbeatMs   int64
	Broker        string
	HTTPAddr      string
}

// Snapshot is a point-in-time view of daemon state.
// It is a value type — safe to use after the lock is released.
type Snapshot struct {
	State         logic.State
	TankFull      bool
	Ticks         uint32
	Counts        logic.EventCounts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// ValvePosition returns the commanded valve position for display. The
// position is inferred from the state; the valve has no feedback.
func (s Snapshot) ValvePosition() string {
	if s.State == "" {
		return "UNKNOWN"
	}
	if s.State.ValveOpen() {
		return "OPEN"
	}
	return "CLOSED"
}

// TankLevel returns the last observed float switch level for display.
func (s Snapshot) TankLevel() string {
	if s.State == "" {
		return "UNKNOWN"
	}
	if s.TankFull {
		return "FULL"
	}
	return "LOW"
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime: startTime,
			Config:    cfg,
		},
	}
}

// Update sets the controller state, tank level, tick count, and event
// counts. Called from the control loop on every wake.
func (t *Tracker) Update(state logic.State, full bool, ticks uint32, counts logic.EventCounts) {
	t.mu.Lock()
	t.snap.State = state
	t.snap.TankFull = full
	t.snap.Ticks = ticks
	t.snap.Counts = counts
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
