//go:build !tinygo

package meter

import (
	"embed"
	"image/png"
	"net/http"
	"strconv"

	"github.com/merliot/sonar"
	"github.com/merliot/sonar/drivers/hcsr04"
	"github.com/merliot/sonar/drivers/hd44780i2c"
	"github.com/merliot/sonar/drivers/i2csoft"
	"github.com/merliot/sonar/lcdimage"
	"github.com/merliot/sonar/sim"
)

//go:embed index.html
var fs embed.FS

// Rig is the simulated hardware behind NewSimHardware
type Rig struct {
	Wire  *sim.Wire
	LCD   *sim.LCD
	Sonar *sim.Sonar
}

// NewSimHardware wires the drivers to simulated parts: an LCD backpack on a
// simulated two-wire bus, and a sensor looking at an obstacle cm away.
func NewSimHardware(cfg Config, cm float64) (Hardware, *Rig, error) {
	rig := &Rig{
		LCD:   sim.NewLCD(hd44780i2c.Address),
		Sonar: sim.NewSonar(cm),
	}
	rig.Wire = sim.NewWire(rig.LCD)

	bus := i2csoft.New(rig.Wire.SCL(), rig.Wire.SDA())
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
		return Hardware{}, nil, err
	}

	sensor := hcsr04.New(rig.Sonar.Trigger(), rig.Sonar.Echo())
	sensor.Configure(hcsr04.Config{
		PulseWidth:  cfg.PulseWidth,
		EchoTimeout: cfg.EchoTimeout,
		MaxPulse:    cfg.MaxPulse,
	})

	hw := Hardware{
		Sensor:  &sensor,
		Display: &display,
		Mirror:  rig.LCD,
	}
	return hw, rig, nil
}

func (m *Meter) serveLCD(w http.ResponseWriter, r *http.Request) {
	scale, _ := strconv.Atoi(r.URL.Query().Get("scale"))
	if scale < 1 || scale > 16 {
		scale = 4
	}
	img := lcdimage.Render(m.Lines(), m.backlight(), scale)
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	if err := png.Encode(w, img); err != nil {
		sonar.Warnf("Encoding LCD image: %s", err)
	}
}

func (m *Meter) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/lcd.png":
		m.serveLCD(w, r)
	default:
		http.FileServer(http.FS(fs)).ServeHTTP(w, r)
	}
}
