package gpio

import (
	"errors"
	"testing"
)

func TestFakeSwitchConsumesLevelsInOrder(t *testing.T) {
	sw := &FakeSwitch{Levels: []bool{false, true, false}}

	want := []bool{false, true, false}
	for i, w := range want {
		got, err := sw.Full()
		if err != nil {
			t.Fatalf("read %d: unexpected error: %v", i, err)
		}
		if got != w {
			t.Errorf("read %d = %v, want %v", i, got, w)
		}
	}
}

func TestFakeSwitchRepeatsLastLevel(t *testing.T) {
	sw := &FakeSwitch{Levels: []bool{false, true}}

	sw.Full()
	for i := 0; i < 3; i++ {
		got, err := sw.Full()
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got {
			t.Errorf("read after exhaustion = false, want last scripted level true")
		}
	}
}

func TestFakeSwitchEmptyScriptReadsLow(t *testing.T) {
	sw := &FakeSwitch{}

	got, err := sw.Full()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got {
		t.Errorf("empty script read = true, want false")
	}
}

func TestFakeSwitchReadError(t *testing.T) {
	wantErr := errors.New("flaky wiring")
	sw := &FakeSwitch{Levels: []bool{true}, ReadError: wantErr}

	if _, err := sw.Full(); !errors.Is(err, wantErr) {
		t.Errorf("Full() error = %v, want %v", err, wantErr)
	}
}

func TestFakeSwitchReset(t *testing.T) {
	sw := &FakeSwitch{Levels: []bool{true, false}}
	sw.Full()
	sw.Full()
	sw.Close()

	sw.Reset()

	if sw.Closed {
		t.Errorf("Closed = true after Reset")
	}
	got, err := sw.Full()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got {
		t.Errorf("first read after Reset = false, want true")
	}
}

func TestFakeBridgeRecordsOpsInOrder(t *testing.T) {
	b := &FakeBridge{}

	b.SelectOpen()
	b.Enable()
	b.ClearSelects()
	b.Disable()

	want := []string{OpSelectOpen, OpEnable, OpClearSelects, OpDisable}
	if len(b.Ops) != len(want) {
		t.Fatalf("recorded %d ops, want %d: %v", len(b.Ops), len(want), b.Ops)
	}
	for i, w := range want {
		if b.Ops[i] != w {
			t.Errorf("op %d = %q, want %q", i, b.Ops[i], w)
		}
	}
}

func TestFakeBridgeTracksLevels(t *testing.T) {
	b := &FakeBridge{}

	b.SelectClose()
	b.Enable()

	if !b.CloseSelect {
		t.Errorf("CloseSelect = false after SelectClose")
	}
	if !b.Enabled || !b.Indicator {
		t.Errorf("Enabled=%v Indicator=%v after Enable, want both true", b.Enabled, b.Indicator)
	}

	b.ClearSelects()
	b.Disable()

	if b.OpenSelect || b.CloseSelect || b.Enabled || b.Indicator {
		t.Errorf("levels not all low after ClearSelects+Disable: open=%v close=%v en=%v led=%v",
			b.OpenSelect, b.CloseSelect, b.Enabled, b.Indicator)
	}
}

func TestFakeBridgeErrorLeavesLevelUnchanged(t *testing.T) {
	b := &FakeBridge{EnableError: errors.New("bus fault")}

	if err := b.Enable(); err == nil {
		t.Fatalf("Enable() = nil, want error")
	}
	if b.Enabled {
		t.Errorf("Enabled = true after failed Enable")
	}
	if len(b.Ops) != 1 || b.Ops[0] != OpEnable {
		t.Errorf("failed op not recorded: %v", b.Ops)
	}
}

func TestFakeBridgeReset(t *testing.T) {
	b := &FakeBridge{}
	b.SelectOpen()
	b.Enable()
	b.Close()

	b.Reset()

	if len(b.Ops) != 0 {
		t.Errorf("Ops not cleared by Reset: %v", b.Ops)
	}
	if b.OpenSelect || b.Enabled || b.Indicator || b.Closed {
		t.Errorf("levels not cleared by Reset")
	}
}
