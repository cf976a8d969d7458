// Package drivers holds what the bit-banged drivers share: a minimal pin
// interface and a bounded wait.
package drivers

import (
	"errors"
	"time"
)

// Pin is a single digital line.  machine.Pin satisfies it for push-pull
// outputs and plain inputs.
type Pin interface {
	High()
	Low()
	Get() bool
}

// Set drives p to level
func Set(p Pin, level bool) {
	if level {
		p.High()
	} else {
		p.Low()
	}
}

// ErrTimeout is returned by WaitFor when the condition never became true
var ErrTimeout = errors.New("timed out")

// WaitFor polls cond until it returns true.  A zero interval spins.  A zero
// timeout waits forever.
func WaitFor(cond func() bool, timeout, interval time.Duration) error {
	if cond() {
		return nil
	}
	var deadline time.Time
	if timeout > 0 {
		deadline = time.Now().Add(timeout)
	}
	for {
		if interval > 0 {
			time.Sleep(interval)
		}
		if cond() {
			return nil
		}
		if timeout > 0 && time.Now().After(deadline) {
			return ErrTimeout
		}
	}
}
