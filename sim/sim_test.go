package sim

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

// nibbles feeds b to l the way the backpack driver strobes it
func nibbles(l *LCD, b byte, ctl byte) {
	for _, n := range []byte{b & 0xf0, (b << 4) & 0xf0} {
		l.Receive(n | ctl | portEnable)
		l.Receive(n | ctl)
	}
}

func TestLCDInitSequence(t *testing.T) {
	c := qt.New(t)
	l := NewLCD(0x27)
	for _, cmd := range []byte{0x02, 0x28, 0x0c, 0x06, 0x01} {
		nibbles(l, cmd, portBacklight)
	}
	c.Assert(l.FourBit(), qt.IsTrue)
	c.Assert(l.Backlight(), qt.IsTrue)
	// the first strobe of 0x02 lands while still in 8-bit mode
	c.Assert(l.Commands(), qt.DeepEquals, []byte{0x00, 0x20, 0x28, 0x0c, 0x06, 0x01})
}

func TestLCDWrite(t *testing.T) {
	c := qt.New(t)
	l := NewLCD(0x27)
	for _, cmd := range []byte{0x02, 0x28, 0x0c, 0x06, 0x01} {
		nibbles(l, cmd, portBacklight)
	}
	for _, ch := range []byte("Hi") {
		nibbles(l, ch, portBacklight|portRS)
	}
	nibbles(l, 0xc8, portBacklight)
	for _, ch := range []byte("cm") {
		nibbles(l, ch, portBacklight|portRS)
	}
	c.Assert(l.Lines(), qt.DeepEquals, []string{
		"Hi              ",
		"        cm      ",
	})
}

func TestLCDOffIsBlank(t *testing.T) {
	c := qt.New(t)
	l := NewLCD(0x27)
	for _, ch := range []byte("x") {
		nibbles(l, ch, portRS)
	}
	c.Assert(l.Lines()[0], qt.Equals, "                ")
}

func TestLCDWrapsToSecondLine(t *testing.T) {
	c := qt.New(t)
	l := NewLCD(0x27)
	for _, cmd := range []byte{0x02, 0x28, 0x0c, 0x06, 0x01} {
		nibbles(l, cmd, 0)
	}
	nibbles(l, 0x80|(lineLen-1), 0)
	nibbles(l, 'a', portRS)
	nibbles(l, 'b', portRS)
	c.Assert(l.Lines()[1][0], qt.Equals, byte('b'))
}

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time { return f.t }

func TestSonarEcho(t *testing.T) {
	c := qt.New(t)
	clk := &fakeClock{t: time.Unix(0, 0)}
	s := NewSonar(34.3)
	s.SetClock(clk.now)
	c.Assert(s.Width(), qt.Equals, 2*time.Millisecond)

	echo := s.Echo()
	c.Assert(echo.Get(), qt.IsFalse)

	s.Trigger().High()
	s.Trigger().Low()
	c.Assert(s.Pulses(), qt.Equals, 1)
	c.Assert(echo.Get(), qt.IsFalse)

	clk.t = clk.t.Add(EchoLead)
	c.Assert(echo.Get(), qt.IsTrue)
	clk.t = clk.t.Add(time.Millisecond)
	c.Assert(echo.Get(), qt.IsTrue)
	clk.t = clk.t.Add(time.Millisecond)
	c.Assert(echo.Get(), qt.IsFalse)
	// disarmed until the next trigger
	clk.t = clk.t.Add(-time.Millisecond)
	c.Assert(echo.Get(), qt.IsFalse)
}

func TestSonarNoEcho(t *testing.T) {
	c := qt.New(t)
	clk := &fakeClock{t: time.Unix(0, 0)}
	s := NewSonar(-1)
	s.SetClock(clk.now)
	s.Trigger().High()
	s.Trigger().Low()
	clk.t = clk.t.Add(EchoLead)
	c.Assert(s.Echo().Get(), qt.IsFalse)
}

type recorder struct{ got []byte }

func (r *recorder) Address() uint16 { return 0x27 }
func (r *recorder) Receive(b byte)  { r.got = append(r.got, b) }

// drive is a minimal master, in the same line order as the bus driver
func drive(w *Wire, bytes ...byte) (acks []bool) {
	scl, sda := w.SCL(), w.SDA()
	sda.High()
	scl.High()
	sda.Low()
	scl.Low()
	for _, b := range bytes {
		for bit := 0; bit < 8; bit++ {
			scl.Low()
			if b&(0x80>>bit) != 0 {
				sda.High()
			} else {
				sda.Low()
			}
			scl.High()
		}
		scl.Low()
		sda.High()
		scl.High()
		acks = append(acks, !sda.Get())
	}
	scl.Low()
	sda.Low()
	scl.High()
	sda.High()
	return
}

func TestWireAck(t *testing.T) {
	c := qt.New(t)
	r := &recorder{}
	w := NewWire(r)
	acks := drive(w, 0x4e, 0x2c, 0x28)
	c.Assert(acks, qt.DeepEquals, []bool{true, true, true})
	c.Assert(r.got, qt.DeepEquals, []byte{0x2c, 0x28})
	c.Assert(w.Starts(), qt.Equals, 1)
	c.Assert(w.Stops(), qt.Equals, 1)
}

func TestWireWrongAddress(t *testing.T) {
	c := qt.New(t)
	r := &recorder{}
	w := NewWire(r)
	acks := drive(w, 0x40, 0x2c)
	c.Assert(acks, qt.DeepEquals, []bool{false, false})
	c.Assert(r.got, qt.HasLen, 0)
}

func TestWireNoTarget(t *testing.T) {
	c := qt.New(t)
	r := &recorder{}
	w := NewWire(r)
	w.SetTarget(nil)
	c.Assert(drive(w, 0x4e), qt.DeepEquals, []bool{false})
	w.SetTarget(r)
	c.Assert(drive(w, 0x4e, 0x01), qt.DeepEquals, []bool{true, true})
	c.Assert(r.got, qt.DeepEquals, []byte{0x01})
}
