// Package hcsr04 reads an HC-SR04 ultrasonic ranging module by timing its
// echo pulse with a 16-bit tick timer.
//
// Datasheet: https://cdn.sparkfun.com/datasheets/Sensors/Proximity/HCSR04.pdf
package hcsr04

import (
	"errors"
	"time"

	"github.com/merliot/sonar/drivers"
	"github.com/merliot/sonar/ranging"
)

var (
	ErrNoEcho   = errors.New("no echo")
	ErrTimeout  = errors.New("sensor timeout")
	ErrOverflow = errors.New("echo timer overflow")
)

// State of a measurement
type State uint8

const (
	Idle State = iota
	AwaitEchoHigh
	Counting
	Measured
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitEchoHigh:
		return "await-echo-high"
	case Counting:
		return "counting"
	case Measured:
		return "measured"
	}
	return "unknown"
}

// Config sets the trigger pulse and the bounds on the two echo waits.  A
// zero EchoTimeout or MaxPulse waits forever.
type Config struct {
	// PulseWidth of the trigger; zero means 10µs
	PulseWidth time.Duration
	// EchoTimeout bounds the wait for the echo line to rise
	EchoTimeout time.Duration
	// MaxPulse bounds the wait for the echo line to fall
	MaxPulse time.Duration
	// Timer counts the echo; nil keeps the current one
	Timer Timer
	// Sleep holds the trigger high; nil means time.Sleep
	Sleep func(time.Duration)
}

const DefaultPulseWidth = 10 * time.Microsecond

// DefaultConfig bounds both waits a little past the timer's 71ms range
func DefaultConfig() Config {
	return Config{
		PulseWidth:  DefaultPulseWidth,
		EchoTimeout: 100 * time.Millisecond,
		MaxPulse:    100 * time.Millisecond,
	}
}

type Device struct {
	trigger drivers.Pin
	echo    drivers.Pin
	timer   Timer
	state   State
	cfg     Config
}

// New returns a sensor on the trigger output and echo input pins, timed
// with a SoftTimer.
func New(trigger, echo drivers.Pin) Device {
	return Device{
		trigger: trigger,
		echo:    echo,
		timer:   NewSoftTimer(),
		cfg:     DefaultConfig(),
	}
}

// Configure applies cfg and drives the trigger low
func (d *Device) Configure(cfg Config) {
	if cfg.PulseWidth == 0 {
		cfg.PulseWidth = DefaultPulseWidth
	}
	if cfg.Sleep == nil {
		cfg.Sleep = time.Sleep
	}
	if cfg.Timer != nil {
		d.timer = cfg.Timer
	}
	d.cfg = cfg
	d.trigger.Low()
	d.state = Idle
}

func (d *Device) State() State {
	return d.state
}

// SendTriggerPulse holds the trigger high for the pulse width
func (d *Device) SendTriggerPulse() {
	d.trigger.High()
	d.cfg.Sleep(d.cfg.PulseWidth)
	d.trigger.Low()
}

// Measure times one echo pulse.  The trigger must already have been sent.
// An echo longer than the timer's range returns 0xFFFF with ErrOverflow.
func (d *Device) Measure() (uint16, error) {
	d.state = AwaitEchoHigh
	if err := drivers.WaitFor(d.echo.Get, d.cfg.EchoTimeout, 0); err != nil {
		d.state = Idle
		return 0, ErrNoEcho
	}

	d.timer.Reset()
	d.timer.Start()
	d.state = Counting

	done := func() bool { return !d.echo.Get() || d.timer.Overflow() }
	err := drivers.WaitFor(done, d.cfg.MaxPulse, 0)
	d.timer.Stop()
	d.state = Measured

	switch {
	case err != nil:
		return 0, ErrTimeout
	case d.timer.Overflow():
		return 0xffff, ErrOverflow
	}
	return d.timer.Count(), nil
}

// ReadTicks triggers the sensor and times the echo
func (d *Device) ReadTicks() (uint16, error) {
	d.SendTriggerPulse()
	return d.Measure()
}

// ReadDistance returns the distance to the obstacle in centimeters
func (d *Device) ReadDistance() (float64, error) {
	ticks, err := d.ReadTicks()
	if err != nil {
		return 0, err
	}
	return ranging.Centimeters(ticks), nil
}
