// Package gpio provides pin-level access to the controller's hardware.
// The real implementation uses the Linux GPIO character device.
// The fake implementations allow testing without hardware.
package gpio

// Switch reads the tank float switch.
type Switch interface {
	// Full returns the logical float switch state: true = tank full,
	// false = tank needs water.
	Full() (bool, error)

	// Close releases the input line.
	Close() error
}

// Bridge drives the DRV8833 H-bridge and the indicator LED.
// Select lines choose pulse polarity, the enable line is the DRV8833
// nSLEEP input, and the indicator mirrors driver activity.
type Bridge interface {
	// SelectOpen asserts the open-select line.
	SelectOpen() error

	// SelectClose asserts the close-select line.
	SelectClose() error

	// ClearSelects releases both select lines, putting the bridge into
	// fast decay.
	ClearSelects() error

	// Enable asserts the driver-enable and indicator lines together.
	Enable() error

	// Disable releases the driver-enable and indicator lines together.
	Disable() error

	// Close releases the output lines.
	Close() error
}

// Default chip and pin assignments (BCM numbering).
const (
	DefaultChip = "gpiochip0"

	DefaultFloatSwitchPin = 24 // float switch input, high = full
	DefaultOpenSelectPin  = 17 // DRV8833 AIN1
	DefaultCloseSelectPin = 27 // DRV8833 AIN2
	DefaultEnablePin      = 22 // DRV8833 nSLEEP
	DefaultIndicatorPin   = 23 // activity LED
)
