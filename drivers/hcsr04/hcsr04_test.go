package hcsr04

import (
	"math"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"

	"github.com/merliot/sonar/sim"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

// echoPin is high between rise and fall; every read takes one tick
type echoPin struct {
	clk        *clock
	rise, fall time.Duration
	start      time.Time
}

func (p *echoPin) High() {}
func (p *echoPin) Low()  {}

func (p *echoPin) Get() bool {
	p.clk.t = p.clk.t.Add(DefaultTick)
	at := p.clk.t.Sub(p.start)
	return at >= p.rise && at < p.fall
}

type triggerPin struct {
	levels []bool
}

func (p *triggerPin) High()     { p.levels = append(p.levels, true) }
func (p *triggerPin) Low()      { p.levels = append(p.levels, false) }
func (p *triggerPin) Get() bool { return len(p.levels) > 0 && p.levels[len(p.levels)-1] }

func newScripted(rise, fall int) (*Device, *triggerPin, *clock) {
	clk := &clock{t: time.Unix(0, 0)}
	echo := &echoPin{
		clk:   clk,
		rise:  time.Duration(rise) * DefaultTick,
		fall:  time.Duration(fall) * DefaultTick,
		start: clk.t,
	}
	trig := &triggerPin{}
	d := New(trig, echo)
	timer := NewSoftTimer()
	timer.Now = clk.now
	cfg := DefaultConfig()
	cfg.Timer = timer
	cfg.Sleep = func(time.Duration) {}
	d.Configure(cfg)
	return &d, trig, clk
}

func TestTriggerPulse(t *testing.T) {
	c := qt.New(t)
	trig := &triggerPin{}
	d := New(trig, &triggerPin{})
	var slept []time.Duration
	d.Configure(Config{Sleep: func(d time.Duration) { slept = append(slept, d) }})
	c.Assert(trig.levels, qt.DeepEquals, []bool{false})
	d.SendTriggerPulse()
	c.Assert(trig.levels, qt.DeepEquals, []bool{false, true, false})
	c.Assert(slept, qt.DeepEquals, []time.Duration{10 * time.Microsecond})
}

func TestMeasure(t *testing.T) {
	c := qt.New(t)
	d, _, _ := newScripted(10, 1010)
	c.Assert(d.State(), qt.Equals, Idle)
	ticks, err := d.Measure()
	c.Assert(err, qt.IsNil)
	c.Assert(ticks, qt.Equals, uint16(1000))
	c.Assert(d.State(), qt.Equals, Measured)
}

func TestReadDistance(t *testing.T) {
	c := qt.New(t)
	d, trig, _ := newScripted(10, 1010)
	cm, err := d.ReadDistance()
	c.Assert(err, qt.IsNil)
	c.Assert(math.Abs(cm-18.60775) < 1e-9, qt.IsTrue, qt.Commentf("%v", cm))
	c.Assert(trig.levels, qt.DeepEquals, []bool{false, true, false})
}

func TestMeasureOverflow(t *testing.T) {
	c := qt.New(t)
	d, _, _ := newScripted(1, 70000)
	d.cfg.MaxPulse = 0
	ticks, err := d.Measure()
	c.Assert(err, qt.ErrorIs, ErrOverflow)
	c.Assert(ticks, qt.Equals, uint16(0xffff))
	c.Assert(d.State(), qt.Equals, Measured)
}

func TestMeasureNoEcho(t *testing.T) {
	c := qt.New(t)
	d, _, _ := newScripted(math.MaxInt32, math.MaxInt32)
	d.cfg.EchoTimeout = 2 * time.Millisecond
	_, err := d.Measure()
	c.Assert(err, qt.ErrorIs, ErrNoEcho)
	c.Assert(err, qt.ErrorMatches, "no echo")
	c.Assert(d.State(), qt.Equals, Idle)
}

// stuckTimer never counts
type stuckTimer struct{ resets, starts, stops int }

func (s *stuckTimer) Reset()         { s.resets++ }
func (s *stuckTimer) Start()         { s.starts++ }
func (s *stuckTimer) Stop()          { s.stops++ }
func (s *stuckTimer) Count() uint16  { return 0 }
func (s *stuckTimer) Overflow() bool { return false }

func TestMeasureStuckHigh(t *testing.T) {
	c := qt.New(t)
	d, _, _ := newScripted(0, math.MaxInt32)
	timer := &stuckTimer{}
	d.timer = timer
	d.cfg.MaxPulse = 2 * time.Millisecond
	_, err := d.Measure()
	c.Assert(err, qt.ErrorIs, ErrTimeout)
	c.Assert(err, qt.ErrorMatches, "sensor timeout")
	c.Assert(*timer, qt.Equals, stuckTimer{1, 1, 1})
}

func TestSoftTimer(t *testing.T) {
	c := qt.New(t)
	clk := &clock{t: time.Unix(0, 0)}
	tm := NewSoftTimer()
	tm.Now = clk.now

	tm.Reset()
	tm.Start()
	clk.t = clk.t.Add(100 * DefaultTick)
	c.Assert(tm.Count(), qt.Equals, uint16(100))
	tm.Stop()
	clk.t = clk.t.Add(100 * DefaultTick)
	c.Assert(tm.Count(), qt.Equals, uint16(100))

	tm.Start()
	clk.t = clk.t.Add(0xffff * DefaultTick)
	c.Assert(tm.Overflow(), qt.IsTrue)
	c.Assert(tm.Count(), qt.Equals, uint16(99))

	tm.Reset()
	c.Assert(tm.Overflow(), qt.IsFalse)
	c.Assert(tm.Count(), qt.Equals, uint16(0))
}

// ticking advances on every read, so the sensor model sees time pass while
// the driver polls
type ticking struct{ t time.Time }

func (k *ticking) now() time.Time {
	k.t = k.t.Add(time.Microsecond)
	return k.t
}

func TestWithSimulatedSensor(t *testing.T) {
	c := qt.New(t)
	clk := &ticking{t: time.Unix(0, 0)}
	sensor := sim.NewSonar(34.3)
	sensor.SetClock(clk.now)

	timer := NewSoftTimer()
	timer.Now = clk.now
	d := New(sensor.Trigger(), sensor.Echo())
	cfg := DefaultConfig()
	cfg.Timer = timer
	cfg.Sleep = func(time.Duration) {}
	cfg.EchoTimeout, cfg.MaxPulse = 0, 0
	d.Configure(cfg)

	cm, err := d.ReadDistance()
	c.Assert(err, qt.IsNil)
	c.Assert(math.Abs(cm-34.3) < 0.5, qt.IsTrue, qt.Commentf("%v", cm))
	c.Assert(sensor.Pulses(), qt.Equals, 1)

	sensor.SetDistance(100)
	cm, err = d.ReadDistance()
	c.Assert(err, qt.IsNil)
	c.Assert(math.Abs(cm-100) < 0.5, qt.IsTrue, qt.Commentf("%v", cm))
}
