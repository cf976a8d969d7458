package sonar

import (
	"bytes"
	"errors"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/net/websocket"
)

// webSocket wraps a websocket.Conn and implements the Socketer interface
type webSocket struct {
	socket
	mu           mutex
	url          *url.URL
	conn         *websocket.Conn
	closing      bool
	dialed       bool
	pingPeriod   time.Duration
	pingSent     time.Time
	pongReceived bool
}

const pingPeriodMin = time.Second

var errNoConn = errors.New("send on nil connection")

func newWebSocket(url *url.URL, remoteAddr string, bus *Bus) *webSocket {
	w := &webSocket{}

	var name string
	if remoteAddr == "" {
		name = "ws:localhost::" + url.String()
	} else {
		name = "ws:" + url.String() + "::" + remoteAddr
	}

	w.socket = socket{name, "", SocketFlagBcast, bus}
	w.url = url

	/* param ping-period */
	period, _ := strconv.Atoi(url.Query().Get("ping-period"))
	w.pingPeriod = time.Duration(period) * time.Second
	if w.pingPeriod < pingPeriodMin {
		w.pingPeriod = pingPeriodMin
	}

	return w
}

func (w *webSocket) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closing = true
}

func (w *webSocket) isClosing() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closing
}

func (w *webSocket) Send(msg *Msg) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return errNoConn
	}
	Debugf("Sending %s: %s", w, msg)
	return websocket.Message.Send(w.conn, string(msg.payload))
}

func (w *webSocket) sendRaw(b []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.conn == nil {
		return errNoConn
	}
	return websocket.Message.Send(w.conn, string(b))
}

func (w *webSocket) newConfig(user, passwd string) (*websocket.Config, error) {
	url := w.url.String()
	origin := "http://localhost/"

	config, err := websocket.NewConfig(url, origin)
	if err != nil {
		return nil, err
	}

	if user != "" {
		// Set the basic auth header for the request
		req, err := http.NewRequest("GET", url, nil)
		if err != nil {
			return nil, err
		}
		req.SetBasicAuth(user, passwd)
		config.Header = req.Header
	}

	return config, nil
}

func (w *webSocket) announced(announce *Msg) bool {

	var msg = &Msg{bus: w.bus, src: w}

	if err := w.Send(announce); err != nil {
		Warnf("Error sending announcement: %s", err)
		return false
	}

	// Any msg received is an ack of the announcement
	w.conn.SetReadDeadline(time.Now().Add(time.Second))
	err := websocket.Message.Receive(w.conn, &msg.payload)
	if err == nil {
		w.bus.receive(msg)
		return true
	}

	Warnf("Announcement not acked by %s: %s", w, err)
	return false
}

// Dial connects to a hub at w.url, announces the thing, and serves the
// connection.  It redials a second after any disconnect, until closed.
func (w *webSocket) Dial(user, passwd string, announce *Msg) {

	cfg, err := w.newConfig(user, passwd)
	if err != nil {
		Warnf("Error configuring websocket: %s", err)
		return
	}

	for !w.isClosing() {
		conn, err := websocket.DialConfig(cfg)
		if err == nil {
			w.connect(conn)
			if w.announced(announce) {
				// Serve websocket until EOF or error
				w.serveClient()
			}
			w.disconnect()
			conn.Close()
		} else {
			Warnf("Dial error %s: %s", w, err)
		}

		// try again in a second
		time.Sleep(time.Second)
	}
}

func (w *webSocket) connect(conn *websocket.Conn) {
	Infof("Connecting %s", w)
	w.mu.Lock()
	w.conn = conn
	w.mu.Unlock()
	w.bus.plugin(w)
}

func (w *webSocket) disconnect() {
	Infof("Disconnecting %s", w)
	w.bus.unplug(w)
	w.mu.Lock()
	w.conn = nil
	w.mu.Unlock()
}

var pingMsg = []byte("ping")
var pongMsg = []byte("pong")

func (w *webSocket) serve(conn *websocket.Conn) {
	w.connect(conn)
	w.serveServer()
	w.disconnect()
}

func (w *webSocket) ping() {
	w.pongReceived = false
	w.pingSent = time.Now()
	w.sendRaw(pingMsg)
}

func isTimeout(err error) bool {
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (w *webSocket) serveClient() {

	w.ping()

	for {
		var msg = &Msg{bus: w.bus, src: w}

		if w.isClosing() {
			Infof("Closing %s", w)
			break
		}

		w.conn.SetReadDeadline(time.Now().Add(time.Second))
		err := websocket.Message.Receive(w.conn, &msg.payload)
		if err == nil {
			if bytes.Equal(msg.payload, pongMsg) {
				w.pongReceived = true
			} else {
				w.bus.receive(msg)
			}
		} else if !isTimeout(err) {
			Warnf("Disconnecting %s: %s", w, err)
			break
		}

		if time.Now().After(w.pingSent.Add(w.pingPeriod)) {
			if !w.pongReceived {
				Warnf("No pong; disconnecting %s", w)
				break
			}
			w.ping()
		}
	}
}

func (w *webSocket) serveServer() {

	pingCheck := w.pingPeriod + (4 * time.Second)
	lastRecv := time.Now()

	for {
		var msg = &Msg{bus: w.bus, src: w}

		if w.isClosing() {
			Infof("Closing %s", w)
			break
		}

		w.conn.SetReadDeadline(time.Now().Add(time.Second))
		err := websocket.Message.Receive(w.conn, &msg.payload)
		if err == nil {
			lastRecv = time.Now()
			if bytes.Equal(msg.payload, pingMsg) {
				if err := w.sendRaw(pongMsg); err != nil {
					Warnf("Error sending pong, disconnecting %s: %s", w, err)
					break
				}
			} else {
				w.bus.receive(msg)
			}
			continue
		}

		if isTimeout(err) {
			if time.Since(lastRecv) > pingCheck {
				Warnf("Timeout, disconnecting %s %s", w, time.Since(lastRecv))
				break
			}
			continue
		}

		Infof("Disconnecting %s: %s", w, err)
		break
	}
}
