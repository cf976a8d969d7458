package meter

import (
	"errors"
	"time"
)

// Config is the meter's timing.  Durations read from YAML as "1s", "10ms".
type Config struct {
	// Interval between measurements
	Interval time.Duration `yaml:"interval"`
	// BusFrequency of the two-wire bus in Hz; zero runs it flat out
	BusFrequency uint32 `yaml:"bus-frequency"`
	// AckTimeout bounds each bus ack; zero waits forever
	AckTimeout time.Duration `yaml:"ack-timeout"`
	// StrobeDelay and SettleDelay pace the LCD enable strobe
	StrobeDelay time.Duration `yaml:"strobe-delay"`
	SettleDelay time.Duration `yaml:"settle-delay"`
	// PulseWidth of the sensor trigger
	PulseWidth time.Duration `yaml:"pulse-width"`
	// EchoTimeout and MaxPulse bound the two echo waits; zero waits forever
	EchoTimeout time.Duration `yaml:"echo-timeout"`
	MaxPulse    time.Duration `yaml:"max-pulse"`
}

func DefaultConfig() Config {
	return Config{
		Interval:    time.Second,
		AckTimeout:  10 * time.Millisecond,
		StrobeDelay: time.Millisecond,
		SettleDelay: 10 * time.Millisecond,
		PulseWidth:  10 * time.Microsecond,
		EchoTimeout: 100 * time.Millisecond,
		MaxPulse:    100 * time.Millisecond,
	}
}

func (c Config) Validate() error {
	switch {
	case c.Interval <= 0:
		return errors.New("interval must be positive")
	case c.StrobeDelay <= 0 || c.SettleDelay <= 0:
		return errors.New("strobe and settle delays must be positive")
	case c.PulseWidth <= 0:
		return errors.New("pulse width must be positive")
	case c.AckTimeout < 0 || c.EchoTimeout < 0 || c.MaxPulse < 0:
		return errors.New("timeouts must not be negative")
	}
	return nil
}
