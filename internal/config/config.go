// Package config loads the controller configuration from a YAML file.
// Missing fields fall back to defaults, so an empty or absent file runs
// the controller with the standard field wiring.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sweeney/stocktank/internal/gpio"
)

// Config represents the controller configuration.
type Config struct {
	GPIO   GPIOConfig   `yaml:"gpio"`
	Timing TimingConfig `yaml:"timing"`
	MQTT   MQTTConfig   `yaml:"mqtt"`
	HTTP   HTTPConfig   `yaml:"http"`
}

// GPIOConfig names the chip and the line offsets.
type GPIOConfig struct {
	Chip           string `yaml:"chip"`
	FloatSwitchPin int    `yaml:"float_switch_pin"`
	OpenSelectPin  int    `yaml:"open_select_pin"`
	CloseSelectPin int    `yaml:"close_select_pin"`
	EnablePin      int    `yaml:"enable_pin"`
	IndicatorPin   int    `yaml:"indicator_pin"`
}

// TimingConfig contains the control loop timing parameters.
type TimingConfig struct {
	// TickInterval is the wake period of the control loop.
	TickInterval time.Duration `yaml:"tick_interval"`
	// DrivePulse is how long a winding is driven per valve pulse.
	DrivePulse time.Duration `yaml:"drive_pulse"`
	// Decay is the fast-decay window after the drive pulse.
	Decay time.Duration `yaml:"decay"`
	// CheckInterval is the number of ticks between level checks while
	// idle. The fault and settle windows are multiples of it.
	CheckInterval uint32 `yaml:"check_interval"`
	// Heartbeat is the MQTT heartbeat period. Zero disables heartbeats.
	Heartbeat time.Duration `yaml:"heartbeat"`
}

// MQTTConfig contains MQTT publisher configuration. An empty broker
// disables publishing entirely.
type MQTTConfig struct {
	Broker string `yaml:"broker"`
}

// HTTPConfig contains the status page configuration. An empty addr
// disables the HTTP server.
type HTTPConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a configuration matching the standard field wiring.
func Default() *Config {
	return &Config{
		GPIO: GPIOConfig{
			Chip:           gpio.DefaultChip,
			FloatSwitchPin: gpio.DefaultFloatSwitchPin,
			OpenSelectPin:  gpio.DefaultOpenSelectPin,
			CloseSelectPin: gpio.DefaultCloseSelectPin,
			EnablePin:      gpio.DefaultEnablePin,
			IndicatorPin:   gpio.DefaultIndicatorPin,
		},
		Timing: TimingConfig{
			TickInterval:  20 * time.Second,
			DrivePulse:    13 * time.Millisecond,
			Decay:         2 * time.Millisecond,
			CheckInterval: 2,
			Heartbeat:     15 * time.Minute,
		},
		MQTT: MQTTConfig{
			Broker: "", // disabled until pointed at a broker
		},
		HTTP: HTTPConfig{
			Addr: ":8080",
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist
// or fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save writes the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults restores fields whose zero value can never be meant.
// Pin offsets are left alone (0 is a real line), and the broker, HTTP
// addr, and heartbeat are left alone because empty or zero disables
// them.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.GPIO.Chip == "" {
		c.GPIO.Chip = def.GPIO.Chip
	}
	if c.Timing.TickInterval == 0 {
		c.Timing.TickInterval = def.Timing.TickInterval
	}
	if c.Timing.DrivePulse == 0 {
		c.Timing.DrivePulse = def.Timing.DrivePulse
	}
	if c.Timing.Decay == 0 {
		c.Timing.Decay = def.Timing.Decay
	}
	if c.Timing.CheckInterval == 0 {
		c.Timing.CheckInterval = def.Timing.CheckInterval
	}
}

// Validate checks for values the controller cannot run with. It does not
// mutate the configuration.
func (c *Config) Validate() error {
	if c.GPIO.Chip == "" {
		return fmt.Errorf("gpio: chip must be set")
	}

	pins := map[int]string{}
	for _, p := range []struct {
		name string
		pin  int
	}{
		{"float_switch_pin", c.GPIO.FloatSwitchPin},
		{"open_select_pin", c.GPIO.OpenSelectPin},
		{"close_select_pin", c.GPIO.CloseSelectPin},
		{"enable_pin", c.GPIO.EnablePin},
		{"indicator_pin", c.GPIO.IndicatorPin},
	} {
		if p.pin < 0 {
			return fmt.Errorf("gpio: %s must not be negative", p.name)
		}
		if other, dup := pins[p.pin]; dup {
			return fmt.Errorf("gpio: %s and %s share pin %d", other, p.name, p.pin)
		}
		pins[p.pin] = p.name
	}

	if c.Timing.TickInterval <= 0 {
		return fmt.Errorf("timing: tick_interval must be positive")
	}
	if c.Timing.DrivePulse <= 0 {
		return fmt.Errorf("timing: drive_pulse must be positive")
	}
	if c.Timing.Decay < 0 {
		return fmt.Errorf("timing: decay must not be negative")
	}
	// Both waits block the control loop, so a pulse must fit well
	// inside a tick.
	if c.Timing.DrivePulse+c.Timing.Decay >= c.Timing.TickInterval {
		return fmt.Errorf("timing: drive_pulse plus decay must be shorter than tick_interval")
	}
	if c.Timing.CheckInterval < 1 {
		return fmt.Errorf("timing: check_interval must be at least 1")
	}
	if c.Timing.Heartbeat < 0 {
		return fmt.Errorf("timing: heartbeat must not be negative")
	}

	return nil
}
