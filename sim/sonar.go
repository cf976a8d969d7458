package sim

import (
	"math"
	"sync"
	"time"

	"github.com/merliot/sonar/drivers"
)

// speed of sound used by the model, cm/s
const soundSpeed = 34300.0

// EchoLead is how long after the trigger falls the echo line rises
const EchoLead = 200 * time.Microsecond

// Sonar models an HC-SR04: a trigger pulse arms it, and the echo line is
// then high for the round trip time to an obstacle Distance cm away.
type Sonar struct {
	mu       sync.Mutex
	distance float64
	trig     bool
	fired    time.Time
	armed    bool
	pulses   int
	now      func() time.Time
}

// NewSonar returns a sensor looking at an obstacle cm centimeters away.  A
// negative distance never echoes, like a sensor with its echo wire cut.
func NewSonar(cm float64) *Sonar {
	return &Sonar{distance: cm, now: time.Now}
}

// SetClock replaces the model's time source
func (s *Sonar) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Sonar) SetDistance(cm float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.distance = cm
}

func (s *Sonar) Distance() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.distance
}

// Pulses returns how many trigger pulses were seen
func (s *Sonar) Pulses() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pulses
}

// Trigger returns the sensor's trigger input
func (s *Sonar) Trigger() drivers.Pin { return triggerPin{s} }

// Echo returns the sensor's echo output
func (s *Sonar) Echo() drivers.Pin { return echoPin{s} }

// Width is the echo pulse width for the current distance
func (s *Sonar) Width() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.width()
}

func (s *Sonar) width() time.Duration {
	return time.Duration(math.Round(2 * s.distance / soundSpeed * float64(time.Second)))
}

func (s *Sonar) setTrigger(level bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.trig && !level {
		s.pulses++
		s.fired = s.now()
		s.armed = s.distance >= 0
	}
	s.trig = level
}

func (s *Sonar) echo() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.armed {
		return false
	}
	t := s.now().Sub(s.fired)
	if t < EchoLead {
		return false
	}
	if t < EchoLead+s.width() {
		return true
	}
	s.armed = false
	return false
}

type triggerPin struct{ s *Sonar }

func (p triggerPin) High() { p.s.setTrigger(true) }
func (p triggerPin) Low()  { p.s.setTrigger(false) }

func (p triggerPin) Get() bool {
	p.s.mu.Lock()
	defer p.s.mu.Unlock()
	return p.s.trig
}

// the echo line is an output of the sensor; driving it does nothing
type echoPin struct{ s *Sonar }

func (p echoPin) High()     {}
func (p echoPin) Low()      {}
func (p echoPin) Get() bool { return p.s.echo() }
