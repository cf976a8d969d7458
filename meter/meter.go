// Package meter is the distance meter: it times the sensor's echo, shows the
// distance on the LCD, and publishes each reading on the bus.
package meter

import (
	"errors"
	"time"

	"github.com/merliot/sonar"
	"github.com/merliot/sonar/drivers/hcsr04"
	"github.com/merliot/sonar/drivers/i2csoft"
	"github.com/merliot/sonar/ranging"
)

// Display layout
const (
	Label = "Distance: "
	Unit  = "cm"
	// the value field runs from column 0 up to the unit
	ValueWidth = 8
	UnitColumn = 8
)

// Status values
const (
	StatusOK      = "ok"
	StatusNoEcho  = "no echo"
	StatusTimeout = "sensor timeout"
	StatusRange   = "out of range"
	StatusLCD     = "lcd not acknowledging"
)

// Sensor is an echo ranging sensor.  *hcsr04.Device implements it.
type Sensor interface {
	ReadTicks() (uint16, error)
}

// Display is a two line character display.  *hd44780i2c.Device implements
// it.
type Display interface {
	SetCursor(row, col int) error
	SendString(s string) error
	Write(p []byte) (int, error)
}

// Mirror reads back what the display shows
type Mirror interface {
	Lines() []string
	Backlight() bool
}

type Hardware struct {
	Sensor  Sensor
	Display Display
	// Mirror is optional
	Mirror Mirror
}

type Meter struct {
	sonar.Thing
	sonar.ThingMsg
	Distance float64
	Text     string
	Ticks    uint16
	Status   string
	Readings uint64
	hw       Hardware
	cfg      Config
	buf      [16]byte
}

func New(id, model, name string, cfg Config, hw Hardware) *Meter {
	return &Meter{
		Thing:  sonar.NewThing(id, model, name),
		Status: "starting",
		hw:     hw,
		cfg:    cfg,
	}
}

func (m *Meter) getState(msg *sonar.Msg) {
	m.Lock()
	defer m.Unlock()
	m.Path = "state"
	msg.Marshal(m).Reply()
}

func (m *Meter) update(msg *sonar.Msg) {
	msg.Broadcast()
}

func (m *Meter) Subscribers() sonar.Subscribers {
	return sonar.Subscribers{
		"get/state": m.getState,
		"attached":  m.getState,
		"update":    m.update,
	}
}

// value maps a reading to the text for the value field and a status
func (m *Meter) value(ticks uint16, err error) ([]byte, string) {
	switch {
	case errors.Is(err, hcsr04.ErrNoEcho):
		return append(m.buf[:0], "No echo"...), StatusNoEcho
	case errors.Is(err, hcsr04.ErrTimeout):
		return append(m.buf[:0], "Timeout"...), StatusTimeout
	case err != nil:
		return append(m.buf[:0], "Range!"...), StatusRange
	}
	b, err := ranging.AppendFixed2(m.buf[:0], ranging.Centimeters(ticks))
	if err != nil {
		return append(m.buf[:0], "Range!"...), StatusRange
	}
	return b, StatusOK
}

// Measure takes one reading and shows it
func (m *Meter) Measure() error {
	ticks, err := m.hw.Sensor.ReadTicks()

	m.Lock()
	m.Readings++
	m.Ticks = ticks
	text, status := m.value(ticks, err)
	m.Status = status
	m.Text = string(text)
	m.Distance = 0
	if status == StatusOK {
		m.Distance = ranging.Centimeters(ticks)
	}
	for len(text) < ValueWidth {
		text = append(text, ' ')
	}
	m.Unlock()

	if derr := m.show(text); derr != nil {
		sonar.Warnf("Display: %s", derr)
		m.Lock()
		m.Status = StatusLCD
		if !errors.Is(derr, i2csoft.ErrNoAck) {
			m.Status = derr.Error()
		}
		m.Unlock()
		return derr
	}
	return err
}

func (m *Meter) show(value []byte) error {
	d := m.hw.Display
	if err := d.SetCursor(0, 0); err != nil {
		return err
	}
	if err := d.SendString(Label); err != nil {
		return err
	}
	if err := d.SetCursor(1, 0); err != nil {
		return err
	}
	if _, err := d.Write(value); err != nil {
		return err
	}
	if err := d.SetCursor(1, UnitColumn); err != nil {
		return err
	}
	return d.SendString(Unit)
}

// Lines is what the display shows: the mirror's contents if there is one,
// otherwise the lines rebuilt from the last reading
func (m *Meter) Lines() []string {
	if m.hw.Mirror != nil {
		return m.hw.Mirror.Lines()
	}
	m.Lock()
	defer m.Unlock()
	value := m.Text
	for len(value) < UnitColumn {
		value += " "
	}
	return []string{Label, value + Unit}
}

func (m *Meter) backlight() bool {
	if m.hw.Mirror != nil {
		return m.hw.Mirror.Backlight()
	}
	return true
}

// Update measures and injects the reading as an update msg
func (m *Meter) Update(i *sonar.Injector) error {
	err := m.Measure()
	if err != nil {
		sonar.Debugf("Measure: %s", err)
	}
	var msg sonar.Msg
	m.Lock()
	m.Path = "update"
	msg.Marshal(m)
	m.Unlock()
	i.Inject(&msg)
	return err
}

func (m *Meter) Run(i *sonar.Injector) {
	for {
		m.Update(i)
		time.Sleep(m.cfg.Interval)
	}
}
