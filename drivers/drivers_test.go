package drivers

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

type levelPin struct {
	level bool
	sets  int
}

func (p *levelPin) High()     { p.level = true; p.sets++ }
func (p *levelPin) Low()      { p.level = false; p.sets++ }
func (p *levelPin) Get() bool { return p.level }

func TestSet(t *testing.T) {
	c := qt.New(t)
	p := &levelPin{}
	Set(p, true)
	c.Assert(p.level, qt.IsTrue)
	Set(p, false)
	c.Assert(p.level, qt.IsFalse)
	c.Assert(p.sets, qt.Equals, 2)
}

func TestWaitForImmediate(t *testing.T) {
	c := qt.New(t)
	calls := 0
	err := WaitFor(func() bool { calls++; return true }, time.Millisecond, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(calls, qt.Equals, 1)
}

func TestWaitForEventually(t *testing.T) {
	c := qt.New(t)
	calls := 0
	err := WaitFor(func() bool { calls++; return calls == 5 }, time.Second, 0)
	c.Assert(err, qt.IsNil)
	c.Assert(calls, qt.Equals, 5)
}

func TestWaitForTimeout(t *testing.T) {
	c := qt.New(t)
	start := time.Now()
	err := WaitFor(func() bool { return false }, 5*time.Millisecond, 100*time.Microsecond)
	c.Assert(err, qt.ErrorIs, ErrTimeout)
	c.Assert(time.Since(start) >= 5*time.Millisecond, qt.IsTrue)
}
