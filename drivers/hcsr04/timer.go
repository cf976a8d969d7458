package hcsr04

import "time"

// Timer is a free-running 16-bit tick counter with an overflow flag, the
// shape of a microcontroller's timer register pair.
type Timer interface {
	// Reset clears the count and the overflow flag
	Reset()
	Start()
	Stop()
	Count() uint16
	// Overflow reports whether the count wrapped past 0xFFFF
	Overflow() bool
}

// DefaultTick is one timer tick: 12 clocks of an 11.0592 MHz crystal
const DefaultTick = 1085 * time.Nanosecond

// SoftTimer counts ticks of the monotonic clock
type SoftTimer struct {
	Tick time.Duration
	// Now is the clock; nil means time.Now
	Now func() time.Time

	running bool
	started time.Time
	elapsed time.Duration
}

func NewSoftTimer() *SoftTimer {
	return &SoftTimer{Tick: DefaultTick}
}

func (t *SoftTimer) now() time.Time {
	if t.Now == nil {
		return time.Now()
	}
	return t.Now()
}

func (t *SoftTimer) Reset() {
	t.elapsed = 0
	if t.running {
		t.started = t.now()
	}
}

func (t *SoftTimer) Start() {
	if !t.running {
		t.running = true
		t.started = t.now()
	}
}

func (t *SoftTimer) Stop() {
	if t.running {
		t.elapsed += t.now().Sub(t.started)
		t.running = false
	}
}

func (t *SoftTimer) ticks() int64 {
	d := t.elapsed
	if t.running {
		d += t.now().Sub(t.started)
	}
	return int64(d / t.Tick)
}

// Count wraps at 65536 like the hardware register
func (t *SoftTimer) Count() uint16 {
	return uint16(t.ticks())
}

func (t *SoftTimer) Overflow() bool {
	return t.ticks() > 0xffff
}
