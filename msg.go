package sonar

import (
	"encoding/json"
)

// Msg is sent and received on a bus via a socket
type Msg struct {
	bus     *Bus
	src     Socketer
	payload []byte
}

// NewMsg returns a msg carrying payload, not yet on any bus
func NewMsg(payload []byte) *Msg {
	return &Msg{payload: payload}
}

// Bytes returns the msg payload
func (m *Msg) Bytes() []byte {
	return m.payload
}

func (m *Msg) String() string {
	return string(m.payload)
}

// Src is the socket the msg arrived on
func (m *Msg) Src() Socketer {
	return m.src
}

// Reply sends the msg back to sender.  The msg can be modified before calling
// Reply.
func (m *Msg) Reply() *Msg {
	if m.src == nil {
		Warnf("Can't reply to message: source is nil")
		return m
	}
	Debugf("Reply: src %s msg %s", m.src, m)
	if err := m.src.Send(m); err != nil {
		Warnf("Reply to %s failed: %s", m.src, err)
	}
	return m
}

// Broadcast the msg to all other matching-tagged sockets on the bus.  The
// source socket is excluded.
func (m *Msg) Broadcast() *Msg {
	if m.bus == nil || m.src == nil {
		Warnf("Can't broadcast message: not on a bus")
		return m
	}
	Debugf("Broadcast: tag %q %s", m.src.Tag(), m)
	m.bus.broadcast(m)
	return m
}

// Unmarshal the msg payload as JSON into v
func (m *Msg) Unmarshal(v any) *Msg {
	if err := json.Unmarshal(m.payload, v); err != nil {
		Warnf("JSON unmarshal error %s", err)
	}
	return m
}

// Marshal the msg payload as JSON from v
func (m *Msg) Marshal(v any) *Msg {
	var err error
	m.payload, err = json.Marshal(v)
	if err != nil {
		Warnf("JSON marshal error %s", err)
	}
	return m
}
