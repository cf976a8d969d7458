// Package ranging turns echo timer ticks into centimeters and renders
// distances as fixed two-decimal text.
package ranging

import (
	"errors"
	"math"
)

const (
	// SpeedOfSound in air, cm/s
	SpeedOfSound = 34300.0
	// TickPeriod is one echo timer tick, in seconds (12 clocks of an
	// 11.0592 MHz crystal)
	TickPeriod = 1.085e-6
)

// Centimeters is the distance to the obstacle for an echo that lasted ticks
// timer ticks.  The sound covers the distance twice.
func Centimeters(ticks uint16) float64 {
	return float64(ticks) * TickPeriod * SpeedOfSound / 2
}

const (
	// MaxIntDigits is the most digits the integer part may have
	MaxIntDigits = 5
	// MaxValue is the smallest value that no longer fits
	MaxValue = 100000
)

var (
	ErrOverflow = errors.New("value out of range")
	ErrInvalid  = errors.New("value not a non-negative number")
)

// AppendFixed2 appends v to dst as decimal digits, a '.', and exactly two
// fraction digits.  The fraction is truncated, not rounded: 1.239 is "1.23".
// The integer part has no leading zeros; zero is "0".
func AppendFixed2(dst []byte, v float64) ([]byte, error) {
	switch {
	case math.IsNaN(v), math.IsInf(v, 0), v < 0:
		return dst, ErrInvalid
	case v >= MaxValue:
		return dst, ErrOverflow
	}

	whole := uint32(v)
	frac := uint32((v - float64(whole)) * 100)
	if frac > 99 {
		frac = 99
	}

	if whole == 0 {
		dst = append(dst, '0')
	} else {
		// least significant digit first, then reversed out
		var digits [MaxIntDigits]byte
		n := 0
		for ; whole > 0; whole /= 10 {
			digits[n] = byte(whole%10) + '0'
			n++
		}
		for n > 0 {
			n--
			dst = append(dst, digits[n])
		}
	}

	return append(dst, '.', byte(frac/10)+'0', byte(frac%10)+'0'), nil
}

// Format returns v as AppendFixed2 renders it
func Format(v float64) (string, error) {
	var buf [MaxIntDigits + 3]byte
	b, err := AppendFixed2(buf[:0], v)
	return string(b), err
}
