//go:build tinygo && rp2040

package main

import (
	"machine"
	"time"

	"github.com/merliot/sonar/drivers"
	"github.com/merliot/sonar/drivers/hcsr04"
	"github.com/merliot/sonar/ranging"
)

func main() {
	sensor := hcsr04.New(drivers.Output(machine.GPIO2), drivers.Input(machine.GPIO3))
	sensor.Configure(hcsr04.DefaultConfig())

	println("Ultrasonic starts")
	for {
		cm, err := sensor.ReadDistance()
		if err != nil {
			println("Distance:", err.Error())
		} else {
			text, _ := ranging.Format(cm)
			println("Distance:", text, "cm")
		}

		time.Sleep(100 * time.Millisecond)
	}
}
