// Package logic contains pure business logic for tank level control.
// This package has NO external dependencies (no GPIO, MQTT, OS, or time.Sleep).
// Time is always injectable via time.Time parameters.
package logic

import "time"

// State represents the controller's position in the fill cycle.
type State string

const (
	StateIdle     State = "IDLE"
	StateFilling  State = "FILLING"
	StatePostFill State = "POST_FILL"
	StateFault    State = "FAULT"
)

// ValveOpen reports whether the valve is commanded open in this state.
// The valve is latching, so the commanded position persists between
// pulses.
func (s State) ValveOpen() bool {
	return s == StateFilling
}

// Direction selects which way a solenoid pulse drives the valve.
type Direction string

const (
	Open  Direction = "OPEN"
	Close Direction = "CLOSE"
)

// EventType represents a state transition event.
type EventType string

const (
	EventValveOpen    EventType = "VALVE_OPEN"
	EventValveClose   EventType = "VALVE_CLOSE"
	EventFault        EventType = "FAULT"
	EventFaultCleared EventType = "FAULT_CLEARED"
	EventSettled      EventType = "SETTLED"
)

// Event represents a state transition to be published.
type Event struct {
	Timestamp time.Time
	Type      EventType
	// State after the transition.
	State State
	// Counter value at the moment of the decision.
	Ticks uint32
}

// Input represents a single sample of the tank level.
type Input struct {
	Full bool // true = float switch high, tank at level
	Time time.Time
}

// Ticks is the wake counter the controller paces itself by. The counter
// increments elsewhere; the controller only reads and resets it.
type Ticks interface {
	Count() uint32
	Reset()
}

// Valve issues drive pulses to the latching solenoid.
type Valve interface {
	Pulse(Direction) error
}

// EventCounts tracks the number of each event type since startup.
type EventCounts struct {
	Opened    int
	Closed    int
	Faults    int
	Recovered int
	Settled   int
}

// HeartbeatData contains information for a heartbeat event.
type HeartbeatData struct {
	Timestamp time.Time
	Uptime    time.Duration
	State     State
	Counts    EventCounts
}
