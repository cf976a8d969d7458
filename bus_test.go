package sonar

import (
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
)

func nop(*Msg) {}

func TestNilConnect(t *testing.T) {
	bus := NewBus("test bus", nop, nil, nil)
	sock := &socket{"test socket", "foo", 0, bus}
	bus.plugin(sock)
	bus.unplug(sock)
}

func TestConnect(t *testing.T) {
	c := qt.New(t)
	i := 0
	connect := func(s Socketer) { i++ }
	disconnect := func(s Socketer) { i++ }
	bus := NewBus("test bus", nop, connect, disconnect)
	sock := &socket{"test socket", "foo", 0, bus}
	bus.plugin(sock)
	c.Assert(bus.Sockets(), qt.Equals, 1)
	i++
	bus.unplug(sock)
	c.Assert(i, qt.Equals, 3)
	c.Assert(bus.Sockets(), qt.Equals, 0)
}

func TestNilHandler(t *testing.T) {
	c := qt.New(t)
	c.Assert(func() { NewBus("test bus", nil, nil, nil) }, qt.PanicMatches, "handler is nil")
}

func TestReceive(t *testing.T) {
	c := qt.New(t)
	var got []string
	bus := NewBus("test bus", func(msg *Msg) { got = append(got, msg.String()) }, nil, nil)
	i := NewInjector("test injector", bus)
	i.Inject(NewMsg([]byte("one")))
	i.Inject(NewMsg([]byte("two")))
	c.Assert(got, qt.DeepEquals, []string{"one", "two"})
}

func TestMaxSocket(t *testing.T) {
	c := qt.New(t)
	bus := NewBus("test bus", nop, nil, nil)
	bus.MaxSockets(1)
	sock1 := &socket{"test socket 1", "foo", 0, bus}
	sock2 := &socket{"test socket 2", "foo", 0, bus}
	go func() { time.Sleep(100 * time.Millisecond); bus.unplug(sock1) }()
	bus.plugin(sock1)
	// blocks until sock1 is unplugged
	bus.plugin(sock2)
	c.Assert(bus.Sockets(), qt.Equals, 1)
}

type testSocket struct {
	socket
	sent []string
}

func (s *testSocket) Send(msg *Msg) error {
	s.sent = append(s.sent, msg.String())
	return nil
}

func TestBroadcast(t *testing.T) {
	c := qt.New(t)
	bus := NewBus("test bus", nop, nil, nil)
	sock1 := &testSocket{socket: socket{"test socket 1", "foo", SocketFlagBcast, bus}}
	sock2 := &testSocket{socket: socket{"test socket 2", "foo", SocketFlagBcast, bus}}
	sock3 := &testSocket{socket: socket{"test socket 3", "foo", 0, bus}}
	sock4 := &testSocket{socket: socket{"test socket 4", "foo", SocketFlagBcast, bus}}
	sock5 := &testSocket{socket: socket{"test socket 5", "bar", SocketFlagBcast, bus}}
	for _, s := range []Socketer{sock1, sock2, sock3, sock4, sock5} {
		bus.plugin(s)
	}
	msg := &Msg{bus, sock1, []byte("hello")}
	msg.Broadcast()
	c.Assert(sock1.sent, qt.HasLen, 0)
	c.Assert(sock2.sent, qt.DeepEquals, []string{"hello"})
	c.Assert(sock3.sent, qt.HasLen, 0)
	c.Assert(sock4.sent, qt.DeepEquals, []string{"hello"})
	c.Assert(sock5.sent, qt.HasLen, 0)
}

type counter struct {
	Thing
	ThingMsg
	Count int
	got   []string
}

func (t *counter) inc(msg *Msg) {
	t.got = append(t.got, "inc")
	t.Count++
	t.Path = "update"
	msg.Marshal(t).Broadcast()
}

func (t *counter) Subscribers() Subscribers {
	return Subscribers{"inc": t.inc}
}

func TestRoute(t *testing.T) {
	c := qt.New(t)
	thing := &counter{Thing: NewThing("id", "counter", "name")}
	bus := NewBus("test bus", route(thing), nil, nil)
	watcher := &testSocket{socket: socket{"watcher", "", SocketFlagBcast, bus}}
	bus.plugin(watcher)
	i := NewInjector("test injector", bus)

	i.Inject(NewMsg([]byte(`{"Path":"inc"}`)))
	i.Inject(NewMsg([]byte(`{"Path":"nope"}`)))
	i.Inject(NewMsg([]byte(`not json`)))

	c.Assert(thing.got, qt.DeepEquals, []string{"inc"})
	c.Assert(watcher.sent, qt.DeepEquals, []string{`{"Path":"update","Count":1}`})
}

func TestRunnerRoutes(t *testing.T) {
	c := qt.New(t)
	thing := &counter{Thing: NewThing("id", "counter", "name")}
	r := NewRunner(thing)
	watcher := &testSocket{socket: socket{"watcher", "", SocketFlagBcast, r.Bus}}
	r.plugin(watcher)
	r.injector.Inject(NewMsg([]byte(`{"Path":"inc"}`)))
	c.Assert(thing.Count, qt.Equals, 1)
	c.Assert(watcher.sent, qt.HasLen, 1)
	c.Assert(r.Sockets(), qt.Equals, 2)
}
