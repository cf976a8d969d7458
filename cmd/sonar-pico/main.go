//go:build tinygo && rp2040

// Command sonar-pico runs the distance meter on an rp2040 board: the LCD
// backpack on GPIO0 (SCL) and GPIO1 (SDA), the sensor trigger on GPIO2 and
// echo on GPIO3.
package main

import (
	"time"

	"github.com/merliot/sonar"
	"github.com/merliot/sonar/meter"
)

// Set with -ldflags "-X main.broker=tcp://host:1883" on boards with a
// network stack
var broker string

func main() {
	cfg := meter.DefaultConfig()

	hw, err := meter.NewBoardHardware(cfg)
	for err != nil {
		sonar.Warnf("LCD: %s, retrying", err)
		time.Sleep(time.Second)
		hw, err = meter.NewBoardHardware(cfg)
	}

	m := meter.New("sonar_pico", "sonar", "pico", cfg, hw)
	runner := sonar.NewRunner(m)

	if broker != "" {
		_, err := sonar.ConnectMQTT(runner.Bus, sonar.MQTTConfig{
			Broker:   broker,
			ClientID: m.Id(),
			Topic:    "sonar/" + m.Id(),
		})
		if err != nil {
			sonar.Warnf("MQTT: %s", err)
		}
	}

	runner.Run()
}
