//go:build tinygo && rp2040

package meter

import (
	"machine"

	"github.com/merliot/sonar/drivers"
	"github.com/merliot/sonar/drivers/hcsr04"
	"github.com/merliot/sonar/drivers/hd44780i2c"
	"github.com/merliot/sonar/drivers/i2csoft"
)

// Board pins
const (
	pinSCL     = machine.GPIO0
	pinSDA     = machine.GPIO1
	pinTrigger = machine.GPIO2
	pinEcho    = machine.GPIO3
)

// NewBoardHardware wires the drivers to the board's pins.  The bus lines are
// open drain and need pull-ups; the LCD backpack usually has them.
func NewBoardHardware(cfg Config) (Hardware, error) {
	bus := i2csoft.New(drivers.NewOpenDrain(pinSCL), drivers.NewOpenDrain(pinSDA))
	bus.Configure(i2csoft.I2CConfig{
		Frequency:  cfg.BusFrequency,
		AckTimeout: cfg.AckTimeout,
	})

	display := hd44780i2c.New(bus)
	err := display.Configure(hd44780i2c.Config{
		StrobeDelay: cfg.StrobeDelay,
		SettleDelay: cfg.SettleDelay,
	})
	if err != nil {
		return Hardware{}, err
	}

	sensor := hcsr04.New(drivers.Output(pinTrigger), drivers.Input(pinEcho))
	sensor.Configure(hcsr04.Config{
		PulseWidth:  cfg.PulseWidth,
		EchoTimeout: cfg.EchoTimeout,
		MaxPulse:    cfg.MaxPulse,
	})

	return Hardware{Sensor: &sensor, Display: &display}, nil
}
