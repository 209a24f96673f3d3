//go:build linux

package gpio

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"
)

// RealSwitch reads the float switch from actual hardware using the Linux
// GPIO character device.
type RealSwitch struct {
	chip *gpiocdev.Chip
	line *gpiocdev.Line
}

// NewRealSwitch requests the float switch line as an input with pull-down,
// so a disconnected switch reads "needs water" rather than floating.
func NewRealSwitch(chipName string, pin int) (*RealSwitch, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	line, err := chip.RequestLine(pin, gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request float switch pin %d: %w", pin, err)
	}

	return &RealSwitch{chip: chip, line: line}, nil
}

// Full returns the float switch level: high = full, low = needs water.
func (s *RealSwitch) Full() (bool, error) {
	v, err := s.line.Value()
	if err != nil {
		return false, fmt.Errorf("read float switch: %w", err)
	}
	return v != 0, nil
}

// Close releases the input line and the chip handle.
func (s *RealSwitch) Close() error {
	var errs []error

	if s.line != nil {
		if err := s.line.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close float switch line: %w", err))
		}
	}
	if s.chip != nil {
		if err := s.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}

// Line order within the bridge's output request. All four lines live in a
// single request so grouped writes (both selects, or enable+indicator)
// happen in one kernel call, like the single port-register writes the
// DRV8833 expects.
const (
	lineOpen = iota // open-select
	lineClose
	lineEnable
	lineIndicator
	lineCount
)

// RealBridge drives the DRV8833 and indicator through one multi-line
// output request, keeping a shadow of the commanded levels.
type RealBridge struct {
	chip   *gpiocdev.Chip
	lines  *gpiocdev.Lines
	levels [lineCount]int
}

// BridgePins holds the BCM offsets for the bridge's output lines.
type BridgePins struct {
	OpenSelect  int
	CloseSelect int
	Enable      int
	Indicator   int
}

// NewRealBridge requests the four output lines, all initially low
// (bridge asleep, nothing selected, indicator off).
func NewRealBridge(chipName string, pins BridgePins) (*RealBridge, error) {
	chip, err := gpiocdev.NewChip(chipName)
	if err != nil {
		return nil, fmt.Errorf("open gpio chip: %w", err)
	}

	offsets := []int{pins.OpenSelect, pins.CloseSelect, pins.Enable, pins.Indicator}
	lines, err := chip.RequestLines(offsets, gpiocdev.AsOutput(0, 0, 0, 0))
	if err != nil {
		chip.Close()
		return nil, fmt.Errorf("request bridge pins %v: %w", offsets, err)
	}

	return &RealBridge{chip: chip, lines: lines}, nil
}

func (b *RealBridge) write() error {
	if err := b.lines.SetValues(b.levels[:]); err != nil {
		return fmt.Errorf("set bridge lines: %w", err)
	}
	return nil
}

// SelectOpen asserts the open-select line.
func (b *RealBridge) SelectOpen() error {
	b.levels[lineOpen] = 1
	return b.write()
}

// SelectClose asserts the close-select line.
func (b *RealBridge) SelectClose() error {
	b.levels[lineClose] = 1
	return b.write()
}

// ClearSelects releases both select lines in one write (fast decay).
func (b *RealBridge) ClearSelects() error {
	b.levels[lineOpen] = 0
	b.levels[lineClose] = 0
	return b.write()
}

// Enable asserts nSLEEP and the indicator in one write.
func (b *RealBridge) Enable() error {
	b.levels[lineEnable] = 1
	b.levels[lineIndicator] = 1
	return b.write()
}

// Disable releases nSLEEP and the indicator in one write.
func (b *RealBridge) Disable() error {
	b.levels[lineEnable] = 0
	b.levels[lineIndicator] = 0
	return b.write()
}

// Close drives every output low and reverts the lines to inputs before
// releasing them. The DRV8833's internal pull-down then holds the bridge
// asleep across daemon restarts and reboots.
func (b *RealBridge) Close() error {
	var errs []error

	if b.lines != nil {
		b.levels = [lineCount]int{}
		if err := b.lines.SetValues(b.levels[:]); err != nil {
			errs = append(errs, fmt.Errorf("clear bridge lines: %w", err))
		}
		if err := b.lines.Reconfigure(gpiocdev.AsInput); err != nil {
			errs = append(errs, fmt.Errorf("reconfigure bridge lines: %w", err))
		}
		if err := b.lines.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close bridge lines: %w", err))
		}
	}
	if b.chip != nil {
		if err := b.chip.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close chip: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close errors: %v", errs)
	}
	return nil
}
