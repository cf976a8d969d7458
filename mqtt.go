package sonar

import (
	"errors"
	"time"
)

// MQTTConfig is an MQTT uplink.  Every msg broadcast on the bus is
// published to Topic.
type MQTTConfig struct {
	// Broker is the broker URL, e.g. tcp://localhost:1883
	Broker   string
	ClientID string
	Topic    string
	User     string
	Passwd   string
	// Timeout bounds the connect; zero means DefaultMQTTTimeout
	Timeout time.Duration
}

const DefaultMQTTTimeout = 5 * time.Second

var errMQTTTimeout = errors.New("mqtt: connect timed out")

func (c MQTTConfig) timeout() time.Duration {
	if c.Timeout == 0 {
		return DefaultMQTTTimeout
	}
	return c.Timeout
}

func (c MQTTConfig) validate() error {
	switch {
	case c.Broker == "":
		return errors.New("mqtt: no broker")
	case c.Topic == "":
		return errors.New("mqtt: no topic")
	case c.ClientID == "":
		return errors.New("mqtt: no client id")
	}
	return nil
}
