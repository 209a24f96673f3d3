// Package mqtt formats and publishes tank events to an MQTT broker.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/stocktank/internal/logic"
)

// Topic carries tank events: valve opens and closes, faults, settles.
const Topic = "water/stocktank/events"

// TopicSystem carries daemon lifecycle events and heartbeats.
const TopicSystem = "water/stocktank/system"

// Publisher sends events to the broker. Publish failures are returned
// to the caller, never fatal; the control loop keeps running without
// the broker.
type Publisher interface {
	// Publish sends a tank event.
	Publish(event logic.Event) error

	// PublishSystem sends a daemon lifecycle event.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the broker connection is up.
type ConnectionStatus interface {
	IsConnected() bool
}

// SystemEvent is a daemon lifecycle event: STARTUP, SHUTDOWN,
// HEARTBEAT, or the RECONNECTED and will messages the real publisher
// manages itself.
type SystemEvent struct {
	Timestamp  time.Time
	Event      string
	Reason     string // shutdown signal name, empty otherwise
	RawPayload []byte // pre-formatted payload; overrides the default formatting
	Retained   bool
}

// Payload is the wire structure for tank events.
type Payload struct {
	Tank TankPayload `json:"tank"`
}

// TankPayload contains the tank event details.
type TankPayload struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	State     string `json:"state"`
	Valve     string `json:"valve"`
	Ticks     uint32 `json:"ticks"`
}

// FormatPayload creates the JSON payload for a tank event.
func FormatPayload(event logic.Event) ([]byte, error) {
	payload := Payload{
		Tank: TankPayload{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     string(event.Type),
			State:     string(event.State),
			Valve:     valvePosition(event.State),
			Ticks:     event.Ticks,
		},
	}
	return json.Marshal(payload)
}

func valvePosition(s logic.State) string {
	if s.ValveOpen() {
		return "OPEN"
	}
	return "CLOSED"
}

// SystemPayload is the wire structure for system events that carry no
// status snapshot, such as the will payload and RECONNECTED.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details. Timestamp is
// omitted when empty so the will payload, registered before anything
// happens, stays honest.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp,omitempty"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event. A
// non-nil RawPayload wins, letting callers attach a full status
// snapshot instead of the minimal structure.
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Event:  event.Event,
			Reason: event.Reason,
		},
	}
	if !event.Timestamp.IsZero() {
		payload.System.Timestamp = event.Timestamp.UTC().Format(time.RFC3339)
	}
	return json.Marshal(payload)
}
