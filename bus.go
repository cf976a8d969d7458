package sonar

var defaultMaxSockets = 200

// Bus is a logical msg broadcast bus.  Msgs arrive on sockets connected to
// the bus and are passed to the bus handler.  A received msg can be
// broadcast to the other sockets, or replied back to sender.  A socket has a
// tag, and the bus segregates the sockets by tag.  Msgs arriving on a tagged
// socket will be broadcast only to other sockets with same tag.  Think of a
// tag as a VLAN.  The empty tag "" is the default tag on the bus.
type Bus struct {
	name       string
	socketsMu  rwMutex
	sockets    map[Socketer]bool
	socketQ    chan bool
	handler    func(*Msg)
	connect    func(Socketer)
	disconnect func(Socketer)
}

// NewBus returns a new bus with a msg handler and connect and disconnect
// callbacks.  Only handler is required.
func NewBus(name string, handler func(*Msg), connect, disconnect func(Socketer)) *Bus {
	if handler == nil {
		panic("handler is nil")
	}
	if connect == nil {
		connect = func(Socketer) { /* don't notify */ }
	}
	if disconnect == nil {
		disconnect = func(Socketer) { /* don't notify */ }
	}
	return &Bus{
		name:       name,
		sockets:    make(map[Socketer]bool),
		socketQ:    make(chan bool, defaultMaxSockets),
		handler:    handler,
		connect:    connect,
		disconnect: disconnect,
	}
}

func (b *Bus) Name() string {
	return b.name
}

// MaxSockets sets the maximum number of socket connections that can be made to
// the bus.  Any socket connection attempts past the maximum will block until
// other sockets drop.
func (b *Bus) MaxSockets(maxSockets int) {
	b.socketQ = make(chan bool, maxSockets)
}

// Sockets is the number of sockets plugged in
func (b *Bus) Sockets() int {
	b.socketsMu.RLock()
	defer b.socketsMu.RUnlock()
	return len(b.sockets)
}

// plugin the socket to the bus
func (b *Bus) plugin(s Socketer) {
	Debugf("Plugin %s", s)

	// block here when socketQ is full
	b.socketQ <- true

	b.socketsMu.Lock()
	b.sockets[s] = true
	b.socketsMu.Unlock()

	b.connect(s)
}

// unplug the socket from the bus
func (b *Bus) unplug(s Socketer) {
	Debugf("Unplug %s", s)

	b.socketsMu.Lock()
	delete(b.sockets, s)
	b.socketsMu.Unlock()

	b.disconnect(s)

	// release one from the socketQ
	<-b.socketQ
}

// broadcast msg to all sockets with matching tag, skipping the source
// socket
func (b *Bus) broadcast(msg *Msg) {
	b.socketsMu.RLock()
	defer b.socketsMu.RUnlock()
	for sock := range b.sockets {
		if msg.src != sock &&
			msg.src.Tag() == sock.Tag() &&
			sock.TestFlag(SocketFlagBcast) {
			Debugf("Bcast src %s dst %s msg %s", msg.src, sock, msg)
			if err := sock.Send(msg); err != nil {
				Warnf("Bcast to %s failed: %s", sock, err)
			}
		}
	}
}

func (b *Bus) receive(msg *Msg) {
	Debugf("Recv %s", msg)
	b.handler(msg)
}

// route returns a bus handler dispatching on the msg Path to the thing's
// subscribers
func route(thinger Thinger) func(*Msg) {
	subs := thinger.Subscribers()
	return func(msg *Msg) {
		var tmsg ThingMsg
		msg.Unmarshal(&tmsg)
		if f, ok := subs[tmsg.Path]; ok {
			f(msg)
			return
		}
		Debugf("No subscriber for path %q", tmsg.Path)
	}
}
