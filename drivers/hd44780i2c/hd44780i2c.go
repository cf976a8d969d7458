// Package hd44780i2c drives an HD44780 character LCD in 4-bit mode through a
// PCF8574 I2C backpack.
//
// Each byte is sent as two nibbles on D7..D4 of the backpack's port, and
// each nibble is strobed twice: once with E high, once with E low.  The
// backpack's low nibble carries the control lines:
//
//	P0 RS  register select (0 command, 1 data)
//	P1 RW  always 0, the display is never read
//	P2 E   enable strobe
//	P3 BL  backlight
package hd44780i2c

import (
	"time"
)

// Address is the backpack's 7-bit bus address, 0x4E on the wire
const Address = 0x27

// Control bits in the low nibble of every port write
const (
	ctlCommand       = 0x08 // backlight on, RS=0
	ctlData          = 0x09 // backlight on, RS=1
	ctlEnable        = 0x04
	strobeCommandOn  = ctlCommand | ctlEnable // 0x0C
	strobeCommandOff = ctlCommand             // 0x08
	strobeDataOn     = ctlData | ctlEnable    // 0x0D
	strobeDataOff    = ctlData                // 0x09
)

// Instructions used by the driver
const (
	CmdClear       = 0x01
	CmdReturnHome  = 0x02
	CmdEntryMode   = 0x06 // increment cursor, no shift
	CmdDisplayOn   = 0x0C // display on, cursor off, blink off
	CmdFunctionSet = 0x28 // 4-bit bus, 2 lines, 5x8 font
	CmdSetDDRAM    = 0x80
)

// Row start addresses in display RAM
const (
	Line1 = 0x00
	Line2 = 0x40
)

// Transport is the bus the backpack hangs off.  *i2csoft.I2C implements it.
type Transport interface {
	Start()
	Stop()
	WriteByte(c byte) error
}

// Config holds the controller timing.  Zero fields take the defaults.
type Config struct {
	// Address is the 7-bit backpack address; zero means Address
	Address uint16
	// StrobeDelay is the wait after raising E
	StrobeDelay time.Duration
	// SettleDelay is the wait after dropping E
	SettleDelay time.Duration
	// Sleep waits; nil means time.Sleep
	Sleep func(time.Duration)
}

const (
	DefaultStrobeDelay = time.Millisecond
	DefaultSettleDelay = 10 * time.Millisecond
)

type Device struct {
	bus    Transport
	addr   byte
	strobe time.Duration
	settle time.Duration
	sleep  func(time.Duration)
}

// New returns a Device on bus with the default timing.  Call Configure
// before use.
func New(bus Transport) Device {
	return Device{
		bus:    bus,
		addr:   Address << 1,
		strobe: DefaultStrobeDelay,
		settle: DefaultSettleDelay,
		sleep:  time.Sleep,
	}
}

// Configure applies cfg and runs the init sequence
func (d *Device) Configure(cfg Config) error {
	if cfg.Address != 0 {
		d.addr = byte(cfg.Address << 1)
	}
	if cfg.StrobeDelay != 0 {
		d.strobe = cfg.StrobeDelay
	}
	if cfg.SettleDelay != 0 {
		d.settle = cfg.SettleDelay
	}
	if cfg.Sleep != nil {
		d.sleep = cfg.Sleep
	}
	return d.Init()
}

// Init sends return-home, 4-bit/2-line, display on, entry mode and clear.
// Nothing is read back; the controller is assumed to have taken them.
func (d *Device) Init() error {
	for _, cmd := range []byte{
		CmdReturnHome,
		CmdFunctionSet,
		CmdDisplayOn,
		CmdEntryMode,
		CmdClear,
	} {
		if err := d.SendCommand(cmd); err != nil {
			return err
		}
	}
	return nil
}

// SendCommand sends an instruction byte
func (d *Device) SendCommand(cmd byte) error {
	return d.send(cmd, strobeCommandOn, strobeCommandOff)
}

// SendData sends a byte to display RAM at the cursor
func (d *Device) SendData(b byte) error {
	return d.send(b, strobeDataOn, strobeDataOff)
}

// SendString sends s one byte at a time, stopping at a NUL
func (d *Device) SendString(s string) error {
	for i := 0; i < len(s) && s[i] != 0; i++ {
		if err := d.SendData(s[i]); err != nil {
			return err
		}
	}
	return nil
}

// Write sends p to display RAM, so the display can take fmt.Fprintf
func (d *Device) Write(p []byte) (n int, err error) {
	for _, b := range p {
		if err = d.SendData(b); err != nil {
			return
		}
		n++
	}
	return
}

// SetCursor moves the cursor to col on row 0 or 1
func (d *Device) SetCursor(row, col int) error {
	addr := byte(Line1)
	if row > 0 {
		addr = Line2
	}
	return d.SendCommand(CmdSetDDRAM | (addr + byte(col)))
}

func (d *Device) Clear() error {
	return d.SendCommand(CmdClear)
}

func (d *Device) Home() error {
	return d.SendCommand(CmdReturnHome)
}

// send frames b as one bus transaction: the address, then each nibble with
// E raised and dropped.
func (d *Device) send(b, on, off byte) (err error) {
	hi := b & 0xf0
	lo := (b << 4) & 0xf0

	d.bus.Start()
	defer d.bus.Stop()

	if err = d.bus.WriteByte(d.addr); err != nil {
		return
	}
	for _, nibble := range []byte{hi, lo} {
		if err = d.bus.WriteByte(nibble | on); err != nil {
			return
		}
		d.sleep(d.strobe)
		if err = d.bus.WriteByte(nibble | off); err != nil {
			return
		}
		d.sleep(d.settle)
	}
	return
}
