//go:build tinygo && rp2040

package main

import (
	"fmt"
	"machine"
	"time"

	"github.com/merliot/sonar/drivers"
	"github.com/merliot/sonar/drivers/hd44780i2c"
	"github.com/merliot/sonar/drivers/i2csoft"
)

func main() {
	i2c := i2csoft.New(drivers.NewOpenDrain(machine.GPIO0), drivers.NewOpenDrain(machine.GPIO1))
	i2c.Configure(i2csoft.I2CConfig{
		Frequency:  100e3,
		AckTimeout: i2csoft.DefaultAckTimeout,
	})

	lcd := hd44780i2c.New(i2c)
	for {
		if err := lcd.Configure(hd44780i2c.Config{}); err != nil {
			fmt.Printf("lcd: %s\r\n", err)
			time.Sleep(time.Second)
			continue
		}
		break
	}

	for n := 0; ; n++ {
		lcd.SetCursor(0, 0)
		lcd.SendString("Hello, world!")
		lcd.SetCursor(1, 0)
		fmt.Fprintf(&lcd, "%d", n)
		time.Sleep(time.Second)
	}
}
