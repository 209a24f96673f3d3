package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/sweeney/stocktank/internal/logic"
)

func TestTopic(t *testing.T) {
	if Topic != "water/stocktank/events" {
		t.Errorf("unexpected topic: %s", Topic)
	}
}

func TestTopicSystem(t *testing.T) {
	if TopicSystem != "water/stocktank/system" {
		t.Errorf("unexpected system topic: %s", TopicSystem)
	}
}

func TestFormatPayload(t *testing.T) {
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      logic.EventValveOpen,
		State:     logic.StateFilling,
		Ticks:     3,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	if parsed.Tank.Timestamp != "2026-02-02T22:18:12Z" {
		t.Errorf("unexpected timestamp: %s", parsed.Tank.Timestamp)
	}
	if parsed.Tank.Event != "VALVE_OPEN" {
		t.Errorf("unexpected event: %s", parsed.Tank.Event)
	}
	if parsed.Tank.State != "FILLING" {
		t.Errorf("unexpected state: %s", parsed.Tank.State)
	}
	if parsed.Tank.Valve != "OPEN" {
		t.Errorf("unexpected valve position: %s", parsed.Tank.Valve)
	}
	if parsed.Tank.Ticks != 3 {
		t.Errorf("unexpected ticks: %d", parsed.Tank.Ticks)
	}
}

func TestFormatPayloadExactJSON(t *testing.T) {
	event := logic.Event{
		Timestamp: time.Date(2026, 2, 2, 22, 18, 12, 0, time.UTC),
		Type:      logic.EventValveClose,
		State:     logic.StatePostFill,
		Ticks:     5,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"tank":{"timestamp":"2026-02-02T22:18:12Z","event":"VALVE_CLOSE","state":"POST_FILL","valve":"CLOSED","ticks":5}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatPayloadAllEventTypes(t *testing.T) {
	tests := []struct {
		eventType logic.EventType
		state     logic.State
		wantEvent string
		wantState string
		wantValve string
	}{
		{logic.EventValveOpen, logic.StateFilling, "VALVE_OPEN", "FILLING", "OPEN"},
		{logic.EventValveClose, logic.StatePostFill, "VALVE_CLOSE", "POST_FILL", "CLOSED"},
		{logic.EventFault, logic.StateFault, "FAULT", "FAULT", "CLOSED"},
		{logic.EventFaultCleared, logic.StateIdle, "FAULT_CLEARED", "IDLE", "CLOSED"},
		{logic.EventSettled, logic.StateIdle, "SETTLED", "IDLE", "CLOSED"},
	}

	for _, tt := range tests {
		t.Run(string(tt.eventType), func(t *testing.T) {
			event := logic.Event{
				Timestamp: time.Now(),
				Type:      tt.eventType,
				State:     tt.state,
			}

			payload, err := FormatPayload(event)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			var parsed Payload
			if err := json.Unmarshal(payload, &parsed); err != nil {
				t.Fatalf("invalid JSON: %v", err)
			}

			if parsed.Tank.Event != tt.wantEvent {
				t.Errorf("event: got %s, want %s", parsed.Tank.Event, tt.wantEvent)
			}
			if parsed.Tank.State != tt.wantState {
				t.Errorf("state: got %s, want %s", parsed.Tank.State, tt.wantState)
			}
			if parsed.Tank.Valve != tt.wantValve {
				t.Errorf("valve: got %s, want %s", parsed.Tank.Valve, tt.wantValve)
			}
		})
	}
}

func TestFormatPayloadTimezoneConversion(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*60*60)
	event := logic.Event{
		Timestamp: time.Date(2026, 6, 15, 14, 30, 0, 0, loc),
		Type:      logic.EventValveOpen,
		State:     logic.StateFilling,
	}

	payload, err := FormatPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var parsed Payload
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}

	// 14:30 at UTC+2 is 12:30 UTC
	if parsed.Tank.Timestamp != "2026-06-15T12:30:00Z" {
		t.Errorf("timestamp not converted to UTC: %s", parsed.Tank.Timestamp)
	}
}

func TestFormatSystemPayload(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 8, 30, 0, 0, time.UTC),
		Event:     "SHUTDOWN",
		Reason:    "SIGTERM",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T08:30:00Z","event":"SHUTDOWN","reason":"SIGTERM"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadOmitsEmptyReason(t *testing.T) {
	event := SystemEvent{
		Timestamp: time.Date(2026, 2, 10, 14, 30, 0, 0, time.UTC),
		Event:     "RECONNECTED",
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"timestamp":"2026-02-10T14:30:00Z","event":"RECONNECTED"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestWillPayloadOmitsTimestamp(t *testing.T) {
	// The will is registered at connect time; stamping it then would
	// claim the controller died the moment it connected.
	payload, err := FormatSystemPayload(SystemEvent{Event: "OFFLINE"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	expected := `{"system":{"event":"OFFLINE"}}`
	if string(payload) != expected {
		t.Errorf("unexpected payload:\ngot:  %s\nwant: %s", string(payload), expected)
	}
}

func TestFormatSystemPayloadRawPassthrough(t *testing.T) {
	raw := []byte(`{"status":{"state":"IDLE"}}`)
	event := SystemEvent{
		Timestamp:  time.Now(),
		Event:      "HEARTBEAT",
		RawPayload: raw,
	}

	payload, err := FormatSystemPayload(event)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(payload) != string(raw) {
		t.Errorf("raw payload not passed through:\ngot:  %s\nwant: %s", payload, raw)
	}
}

func TestFakePublisher(t *testing.T) {
	f := NewFakePublisher()

	event := logic.Event{
		Timestamp: time.Now(),
		Type:      logic.EventValveOpen,
		State:     logic.StateFilling,
		Ticks:     3,
	}

	if err := f.Publish(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(f.Events))
	}
	if f.Events[0].Type != logic.EventValveOpen {
		t.Errorf("unexpected event type: %s", f.Events[0].Type)
	}
	if len(f.Payloads) != 1 {
		t.Fatalf("expected 1 payload, got %d", len(f.Payloads))
	}
}

func TestFakePublisherError(t *testing.T) {
	f := NewFakePublisher()
	wantErr := errors.New("broker exploded")
	f.PublishError = wantErr

	err := f.Publish(logic.Event{Type: logic.EventValveOpen})
	if !errors.Is(err, wantErr) {
		t.Errorf("Publish error = %v, want %v", err, wantErr)
	}
	if len(f.Events) != 0 {
		t.Errorf("event recorded despite error")
	}
}

func TestFakePublisherPublishSystem(t *testing.T) {
	f := NewFakePublisher()

	event := SystemEvent{
		Timestamp: time.Now(),
		Event:     "STARTUP",
		Retained:  true,
	}

	if err := f.PublishSystem(event); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(f.SystemEvents) != 1 {
		t.Fatalf("expected 1 system event, got %d", len(f.SystemEvents))
	}
	if f.SystemEvents[0].Event != "STARTUP" {
		t.Errorf("unexpected event: %s", f.SystemEvents[0].Event)
	}
	if !f.SystemEvents[0].Retained {
		t.Error("retained flag not recorded")
	}
	if len(f.SystemPayloads) != 1 {
		t.Fatalf("expected 1 system payload, got %d", len(f.SystemPayloads))
	}
}

func TestFakePublisherPublishSystemError(t *testing.T) {
	f := NewFakePublisher()
	wantErr := errors.New("nope")
	f.PublishSystemError = wantErr

	err := f.PublishSystem(SystemEvent{Event: "HEARTBEAT"})
	if !errors.Is(err, wantErr) {
		t.Errorf("PublishSystem error = %v, want %v", err, wantErr)
	}
	if len(f.SystemEvents) != 0 {
		t.Errorf("system event recorded despite error")
	}
}

func TestFakePublisherPreservesEventOrder(t *testing.T) {
	f := NewFakePublisher()

	sequence := []logic.EventType{
		logic.EventValveOpen,
		logic.EventValveClose,
		logic.EventSettled,
	}
	for _, et := range sequence {
		if err := f.Publish(logic.Event{Type: et, Timestamp: time.Now()}); err != nil {
			t.Fatalf("publish %s: %v", et, err)
		}
	}

	if len(f.Events) != len(sequence) {
		t.Fatalf("expected %d events, got %d", len(sequence), len(f.Events))
	}
	for i, et := range sequence {
		if f.Events[i].Type != et {
			t.Errorf("event %d = %s, want %s", i, f.Events[i].Type, et)
		}
	}
}

func TestFakePublisherClose(t *testing.T) {
	f := NewFakePublisher()
	if err := f.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Closed {
		t.Error("Closed not set")
	}
}

func TestFakePublisherReset(t *testing.T) {
	f := NewFakePublisher()
	f.Publish(logic.Event{Type: logic.EventValveOpen, Timestamp: time.Now()})
	f.PublishSystem(SystemEvent{Event: "STARTUP"})
	f.Close()
	f.Connected = true

	f.Reset()

	if len(f.Events) != 0 || len(f.Payloads) != 0 {
		t.Error("events not cleared by Reset")
	}
	if len(f.SystemEvents) != 0 || len(f.SystemPayloads) != 0 {
		t.Error("system events not cleared by Reset")
	}
	if f.Closed || f.Connected {
		t.Error("flags not cleared by Reset")
	}
}

var _ Publisher = (*FakePublisher)(nil)
var _ Publisher = (*RealPublisher)(nil)
var _ ConnectionStatus = (*RealPublisher)(nil)
