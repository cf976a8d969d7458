// Package sim models the distance meter's hardware on the host: the
// two-wire bus with its LCD backpack, and the ultrasonic sensor.  It exists
// for running and testing without real hardware, avoiding edit-flash-test
// cycles.
package sim

import (
	"sync"

	"github.com/merliot/sonar/drivers"
)

// Target is a write-only device on the wire
type Target interface {
	// Address is the 7-bit bus address the target answers to
	Address() uint16
	// Receive is called for every data byte after a matching address
	Receive(b byte)
}

type phase int

const (
	phaseIdle phase = iota
	phaseAddress
	phaseData
	phaseAck
	phaseIgnore
)

// Wire is an open-drain two-wire bus between the master's pins and one
// target.  Each line reads as the wired-AND of what the master and the
// target drive.
type Wire struct {
	mu        sync.Mutex
	target    Target
	scl       bool
	sdaMaster bool
	sdaTarget bool
	phase     phase
	next      phase // phase after the ack clock
	bits      int
	shift     byte
	starts    int
	stops     int
}

func NewWire(target Target) *Wire {
	return &Wire{target: target, scl: true, sdaMaster: true, sdaTarget: true}
}

// SetTarget swaps the device on the wire; nil leaves nothing to answer
func (w *Wire) SetTarget(t Target) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.target = t
}

// SCL returns the master's clock pin
func (w *Wire) SCL() drivers.Pin { return wirePin{w, true} }

// SDA returns the master's data pin
func (w *Wire) SDA() drivers.Pin { return wirePin{w, false} }

// Starts returns how many start conditions were seen
func (w *Wire) Starts() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.starts
}

// Stops returns how many stop conditions were seen
func (w *Wire) Stops() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stops
}

func (w *Wire) sda() bool {
	return w.sdaMaster && w.sdaTarget
}

func (w *Wire) setSCL(level bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if level == w.scl {
		return
	}
	w.scl = level
	if level {
		w.rising()
	} else {
		w.falling()
	}
}

func (w *Wire) setSDA(level bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	before := w.sda()
	w.sdaMaster = level
	after := w.sda()
	if !w.scl || before == after {
		return
	}
	if !after {
		// start (or repeated start)
		w.starts++
		w.phase = phaseAddress
		w.bits, w.shift = 0, 0
		w.sdaTarget = true
		return
	}
	w.stops++
	w.phase = phaseIdle
	w.sdaTarget = true
}

func (w *Wire) rising() {
	switch w.phase {
	case phaseAddress, phaseData:
		w.shift <<= 1
		if w.sda() {
			w.shift |= 1
		}
		w.bits++
	}
}

func (w *Wire) falling() {
	switch w.phase {
	case phaseAddress, phaseData:
		if w.bits < 8 {
			return
		}
		b := w.shift
		w.bits, w.shift = 0, 0
		if w.phase == phaseAddress {
			// write transactions only: R/W bit must be clear
			if w.target == nil || uint16(b>>1) != w.target.Address() || b&1 != 0 {
				w.phase = phaseIgnore
				return
			}
		} else {
			w.target.Receive(b)
		}
		w.sdaTarget = false
		w.phase = phaseAck
		w.next = phaseData
	case phaseAck:
		w.sdaTarget = true
		w.phase = w.next
	}
}

type wirePin struct {
	w     *Wire
	clock bool
}

func (p wirePin) set(level bool) {
	if p.clock {
		p.w.setSCL(level)
	} else {
		p.w.setSDA(level)
	}
}

func (p wirePin) High() { p.set(true) }
func (p wirePin) Low()  { p.set(false) }

func (p wirePin) Get() bool {
	p.w.mu.Lock()
	defer p.w.mu.Unlock()
	if p.clock {
		return p.w.scl
	}
	return p.w.sda()
}
