// Package i2csoft is a write-only, bit-banged two-wire (I2C) master on two
// GPIO lines.
package i2csoft

import (
	"errors"
	"time"

	"github.com/merliot/sonar/drivers"
	tinydrivers "tinygo.org/x/drivers"
)

var (
	// ErrNoAck means the target never pulled SDA low for the ack bit
	ErrNoAck = errors.New("i2csoft: bus not acknowledging")
	// ErrReadUnsupported is returned by Tx when asked to read
	ErrReadUnsupported = errors.New("i2csoft: read transactions not supported")
)

// I2CConfig configures the bus.  A zero Frequency toggles the lines as fast
// as the pins allow.  A zero AckTimeout waits for an ack forever.
type I2CConfig struct {
	Frequency  uint32
	AckTimeout time.Duration
}

// DefaultAckTimeout bounds WaitAck when the config leaves it unset
const DefaultAckTimeout = 10 * time.Millisecond

type I2C struct {
	scl, sda drivers.Pin
	half     time.Duration
	ackWait  time.Duration
}

// New returns a bus on the scl and sda lines.  sda must release to a pull-up
// on High so that the target can pull it low.
func New(scl, sda drivers.Pin) *I2C {
	return &I2C{scl: scl, sda: sda, ackWait: DefaultAckTimeout}
}

// Configure applies cfg and leaves both lines released (bus idle)
func (i *I2C) Configure(cfg I2CConfig) error {
	i.half = 0
	if cfg.Frequency > 0 {
		i.half = time.Second / time.Duration(2*cfg.Frequency)
	}
	i.ackWait = cfg.AckTimeout
	i.scl.High()
	i.sda.High()
	return nil
}

func (i *I2C) delay() {
	if i.half > 0 {
		time.Sleep(i.half)
	}
}

// Start signals a start condition: SDA falls while SCL is high
func (i *I2C) Start() {
	i.sda.High()
	i.scl.High()
	i.delay()
	i.sda.Low()
	i.delay()
	i.scl.Low()
}

// Stop signals a stop condition: SDA rises while SCL is high
func (i *I2C) Stop() {
	i.scl.Low()
	i.sda.Low()
	i.delay()
	i.scl.High()
	i.delay()
	i.sda.High()
}

// SendByte shifts value out MSB first.  SDA changes only while SCL is low.
func (i *I2C) SendByte(value byte) {
	for bit := 0; bit < 8; bit++ {
		i.scl.Low()
		drivers.Set(i.sda, value&(0x80>>bit) != 0)
		i.delay()
		i.scl.High()
		i.delay()
	}
}

// WaitAck releases SDA, raises SCL and waits for the target to pull SDA low
func (i *I2C) WaitAck() error {
	i.scl.Low()
	i.sda.High()
	i.delay()
	i.scl.High()
	acked := func() bool { return !i.sda.Get() }
	if err := drivers.WaitFor(acked, i.ackWait, 0); err != nil {
		return ErrNoAck
	}
	return nil
}

// WriteByte sends c and waits for its ack
func (i *I2C) WriteByte(c byte) error {
	i.SendByte(c)
	return i.WaitAck()
}

// Tx writes w to the 7-bit address addr.  Reading is not implemented; the
// bus is write-only.
func (i *I2C) Tx(addr uint16, w, r []byte) error {
	if len(r) != 0 {
		return ErrReadUnsupported
	}
	i.Start()
	defer i.Stop()
	if err := i.WriteByte(byte(addr << 1)); err != nil {
		return err
	}
	for _, c := range w {
		if err := i.WriteByte(c); err != nil {
			return err
		}
	}
	return nil
}

// WriteRegister writes buf to register r of the target at addr
func (i *I2C) WriteRegister(addr uint8, r uint8, buf []byte) error {
	return i.Tx(uint16(addr), append([]byte{r}, buf...), nil)
}

// ReadRegister always fails with ErrReadUnsupported
func (i *I2C) ReadRegister(addr uint8, r uint8, buf []byte) error {
	return ErrReadUnsupported
}

var _ tinydrivers.I2C = (*I2C)(nil)
