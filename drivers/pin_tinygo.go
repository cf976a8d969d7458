//go:build tinygo

package drivers

import "machine"

// OpenDrain wraps a machine.Pin so that High releases the line to its
// pull-up and Low drives it.  Use it for a shared data line (SDA).
type OpenDrain struct {
	machine.Pin
}

func NewOpenDrain(p machine.Pin) OpenDrain {
	p.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	return OpenDrain{p}
}

func (o OpenDrain) High() {
	o.Pin.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
}

func (o OpenDrain) Low() {
	o.Pin.Configure(machine.PinConfig{Mode: machine.PinOutput})
	o.Pin.Low()
}

// Output configures p as a push-pull output driven low
func Output(p machine.Pin) machine.Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	p.Low()
	return p
}

// Input configures p as an input with a pull-down
func Input(p machine.Pin) machine.Pin {
	p.Configure(machine.PinConfig{Mode: machine.PinInputPulldown})
	return p
}
