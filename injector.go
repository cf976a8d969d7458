package sonar

// Injector is the thing's own socket on the bus.  Injected msgs are handled
// as if they arrived from outside, so a Broadcast from the handler reaches
// every other socket.
type Injector struct {
	socket
}

func NewInjector(name string, bus *Bus) *Injector {
	i := &Injector{socket{name: name, bus: bus}}
	bus.plugin(i)
	return i
}

func (i *Injector) Inject(msg *Msg) {
	msg.bus, msg.src = i.bus, i
	i.bus.receive(msg)
}
