//go:build !tinygo

package sonar

import (
	paho "github.com/eclipse/paho.mqtt.golang"
)

// mqttSocket publishes broadcasts; it never receives
type mqttSocket struct {
	socket
	client paho.Client
	topic  string
}

// ConnectMQTT connects to the broker and plugs a publishing socket into bus
func ConnectMQTT(bus *Bus, cfg MQTTConfig) (Socketer, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	opts := paho.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.timeout()).
		SetAutoReconnect(true)
	if cfg.User != "" {
		opts.SetUsername(cfg.User).SetPassword(cfg.Passwd)
	}

	client := paho.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.timeout()) {
		return nil, errMQTTTimeout
	}
	if err := token.Error(); err != nil {
		return nil, err
	}

	m := &mqttSocket{
		socket: socket{"mqtt:" + cfg.Broker + "/" + cfg.Topic, "", SocketFlagBcast, bus},
		client: client,
		topic:  cfg.Topic,
	}
	bus.plugin(m)
	Infof("Publishing to %s", m)
	return m, nil
}

func (m *mqttSocket) Send(msg *Msg) error {
	token := m.client.Publish(m.topic, 0, false, msg.payload)
	token.Wait()
	return token.Error()
}

func (m *mqttSocket) Close() {
	m.bus.unplug(m)
	m.client.Disconnect(250)
}
