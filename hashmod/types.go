// =======================
// hashmod/types.go
// =======================

package hashmod

import (
	"errors"
	"fmt"
)

// ErrInvalidArgument is returned when a strategy is handed components it
// cannot hash, such as an empty word.
var ErrInvalidArgument = errors.New("invalid argument")

const (
	// DefaultBase is the polynomial base shared by the built-in strategies.
	DefaultBase uint64 = 31

	// fibonacciMultiplier is 2^64 divided by the golden ratio.
	fibonacciMultiplier uint64 = 0x9E3779B97F4A7C15
)

// Components holds a representation of an input word broken into digits.
// The digits are copied on construction and never exposed for mutation.
type Components struct {
	digits []uint64
}

// NewComponents copies digits into a new Components value.
func NewComponents(digits ...uint64) Components {
	c := Components{digits: make([]uint64, len(digits))}
	copy(c.digits, digits)
	return c
}

// ComponentsFromBytes converts each byte of b into one digit.
func ComponentsFromBytes(b []byte) Components {
	c := Components{digits: make([]uint64, len(b))}
	for i, v := range b {
		c.digits[i] = uint64(v)
	}
	return c
}

// ComponentsFromString converts each byte of s into one digit.
func ComponentsFromString(s string) Components {
	return ComponentsFromBytes([]byte(s))
}

// ComponentsFromNumber converts n into its decimal digits, most significant
// first. Zero becomes a single zero digit.
func ComponentsFromNumber(n uint64) Components {
	if n == 0 {
		return Components{digits: []uint64{0}}
	}

	var buf [20]uint64
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = n % 10
		n /= 10
	}
	return NewComponents(buf[i:]...)
}

// Len returns the number of digits.
func (c Components) Len() int { return len(c.digits) }

// Digit returns the digit at position i.
func (c Components) Digit(i int) uint64 { return c.digits[i] }

// Digits returns a copy of the digits.
func (c Components) Digits() []uint64 {
	out := make([]uint64, len(c.digits))
	copy(out, c.digits)
	return out
}

// String renders the digits as text. Components built from printable ASCII
// bytes come back as the original word, decimal digits as the number.
func (c Components) String() string {
	if len(c.digits) == 0 {
		return ""
	}

	word, number := true, true
	for _, d := range c.digits {
		if d < 0x20 || d > 0x7e {
			word = false
		}
		if d > 9 {
			number = false
		}
	}

	b := make([]byte, len(c.digits))
	switch {
	case word:
		for i, d := range c.digits {
			b[i] = byte(d)
		}
	case number:
		for i, d := range c.digits {
			b[i] = byte('0' + d)
		}
	default:
		return fmt.Sprint(c.digits)
	}
	return string(b)
}

// Result is a single hashed input.
type Result struct {
	Hash   uint64
	Bucket uint64
	Source Components
}
