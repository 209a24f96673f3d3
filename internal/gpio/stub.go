//go:build !linux

package gpio

import "errors"

var errNotSupported = errors.New("gpio: real hardware requires linux")

// RealSwitch is a placeholder on non-linux platforms so the package
// still compiles for development machines.
type RealSwitch struct{}

func NewRealSwitch(chipName string, pin int) (*RealSwitch, error) {
	return nil, errNotSupported
}

func (s *RealSwitch) Full() (bool, error) { return false, errNotSupported }
func (s *RealSwitch) Close() error        { return nil }

// BridgePins holds the BCM offsets for the bridge's output lines.
type BridgePins struct {
	OpenSelect  int
	CloseSelect int
	Enable      int
	Indicator   int
}

// RealBridge is a placeholder on non-linux platforms.
type RealBridge struct{}

func NewRealBridge(chipName string, pins BridgePins) (*RealBridge, error) {
	return nil, errNotSupported
}

func (b *RealBridge) SelectOpen() error   { return errNotSupported }
func (b *RealBridge) SelectClose() error  { return errNotSupported }
func (b *RealBridge) ClearSelects() error { return errNotSupported }
func (b *RealBridge) Enable() error       { return errNotSupported }
func (b *RealBridge) Disable() error      { return errNotSupported }
func (b *RealBridge) Close() error        { return nil }
