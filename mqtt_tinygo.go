//go:build tinygo

package sonar

import (
	"context"
	"errors"
	"io"
	"net"
	"strings"

	mqtt "github.com/soypat/natiu-mqtt"
)

var errClosed = errors.New("mqtt: socket closed")

// mqttSocket publishes broadcasts; it never receives
type mqttSocket struct {
	socket
	client *mqtt.Client
	conn   net.Conn
	topic  []byte
	flags  mqtt.PacketFlags
}

// ConnectMQTT connects to the broker and plugs a publishing socket into bus
func ConnectMQTT(bus *Bus, cfg MQTTConfig) (Socketer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	addr := strings.TrimPrefix(cfg.Broker, "tcp://")
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, err
	}

	client := mqtt.NewClient(mqtt.ClientConfig{
		Decoder: mqtt.DecoderNoAlloc{UserBuffer: make([]byte, 1500)},
		OnPub: func(_ mqtt.Header, _ mqtt.VariablesPublish, _ io.Reader) error {
			return nil
		},
	})

	var varconn mqtt.VariablesConnect
	varconn.SetDefaultMQTT([]byte(cfg.ClientID))
	if cfg.User != "" {
		varconn.Username = []byte(cfg.User)
		varconn.Password = []byte(cfg.Passwd)
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.timeout())
	defer cancel()
	if err := client.Connect(ctx, conn, &varconn); err != nil {
		conn.Close()
		return nil, err
	}

	flags, err := mqtt.NewPublishFlags(mqtt.QoS0, false, false)
	if err != nil {
		conn.Close()
		return nil, err
	}

	m := &mqttSocket{
		socket: socket{"mqtt:" + cfg.Broker + "/" + cfg.Topic, "", SocketFlagBcast, bus},
		client: client,
		conn:   conn,
		topic:  []byte(cfg.Topic),
		flags:  flags,
	}
	bus.plugin(m)
	Infof("Publishing to %s", m)
	return m, nil
}

func (m *mqttSocket) Send(msg *Msg) error {
	vp := mqtt.VariablesPublish{TopicName: m.topic}
	return m.client.PublishPayload(m.flags, vp, msg.payload)
}

func (m *mqttSocket) Close() {
	m.bus.unplug(m)
	m.client.Disconnect(errClosed)
	m.conn.Close()
}
