package sim

import (
	"strings"
	"sync"
)

// PCF8574 port bits as wired on the common HD44780 backpack
const (
	portRS        = 0x01
	portRW        = 0x02
	portEnable    = 0x04
	portBacklight = 0x08
)

const (
	ddramSize = 0x80
	line2     = 0x40
	lineLen   = 0x28
)

// LCD models a PCF8574 backpack driving an HD44780 character controller.
// It powers up in 8-bit mode, as the controller does, so the first nibble
// pair of a 4-bit init sequence is interpreted the way real hardware would.
type LCD struct {
	mu        sync.Mutex
	addr      uint16
	cols      int
	port      byte
	eightBit  bool
	twoLine   bool
	pending   bool
	hi        byte
	ddram     [ddramSize]byte
	ac        byte
	increment bool
	on        bool
	cursor    bool
	blink     bool
	commands  []byte
}

// NewLCD returns a 16x2 display answering at the 7-bit address addr
func NewLCD(addr uint16) *LCD {
	l := &LCD{addr: addr, cols: 16, eightBit: true, increment: true}
	for i := range l.ddram {
		l.ddram[i] = ' '
	}
	return l
}

func (l *LCD) Address() uint16 { return l.addr }

// Receive takes a byte written to the backpack's port.  The controller
// latches D7..D4 on the falling edge of E.
func (l *LCD) Receive(port byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fell := l.port&portEnable != 0 && port&portEnable == 0
	l.port = port
	if !fell || port&portRW != 0 {
		return
	}
	nibble := port >> 4
	rs := port&portRS != 0
	if l.eightBit {
		l.exec(nibble<<4, rs)
		return
	}
	if !l.pending {
		l.hi, l.pending = nibble, true
		return
	}
	l.pending = false
	l.exec(l.hi<<4|nibble, rs)
}

func (l *LCD) exec(b byte, data bool) {
	if data {
		l.ddram[l.ac] = b
		l.advance()
		return
	}
	l.commands = append(l.commands, b)
	switch {
	case b&0x80 != 0:
		l.ac = b & 0x7f
	case b&0x40 != 0:
		// CGRAM address: custom glyphs are not modelled
	case b&0x20 != 0:
		l.eightBit = b&0x10 != 0
		l.twoLine = b&0x08 != 0
		l.pending = false
	case b&0x10 != 0:
		if b&0x08 == 0 {
			if b&0x04 != 0 {
				l.ac = next(l.ac)
			} else {
				l.ac = prev(l.ac)
			}
		}
	case b&0x08 != 0:
		l.on = b&0x04 != 0
		l.cursor = b&0x02 != 0
		l.blink = b&0x01 != 0
	case b&0x04 != 0:
		l.increment = b&0x02 != 0
	case b&0x02 != 0:
		l.ac = 0
	case b&0x01 != 0:
		for i := range l.ddram {
			l.ddram[i] = ' '
		}
		l.ac = 0
		l.increment = true
	}
}

func (l *LCD) advance() {
	if l.increment {
		l.ac = next(l.ac)
	} else {
		l.ac = prev(l.ac)
	}
}

func next(ac byte) byte {
	switch ac {
	case lineLen - 1:
		return line2
	case line2 + lineLen - 1:
		return 0
	}
	return (ac + 1) % ddramSize
}

func prev(ac byte) byte {
	switch ac {
	case 0:
		return line2 + lineLen - 1
	case line2:
		return lineLen - 1
	}
	return ac - 1
}

// Lines returns the visible text of both rows.  A display that is switched
// off shows blank rows.
func (l *LCD) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	rows := []string{
		string(l.ddram[0:l.cols]),
		string(l.ddram[line2 : line2+l.cols]),
	}
	if !l.on {
		blank := strings.Repeat(" ", l.cols)
		rows[0], rows[1] = blank, blank
	}
	return rows
}

// Backlight reports the backlight bit of the last port write
func (l *LCD) Backlight() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.port&portBacklight != 0
}

// FourBit reports whether the controller has been switched to 4-bit mode
// with two display lines
func (l *LCD) FourBit() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return !l.eightBit && l.twoLine
}

// Commands returns every instruction the controller executed, in order
func (l *LCD) Commands() []byte {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]byte(nil), l.commands...)
}
