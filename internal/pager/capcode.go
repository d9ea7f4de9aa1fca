// Package pager implements the hardware pager transport: cap code
// addressing, the durable delivery queue and the wire transmitter.
package pager

import (
	"fmt"
	"strconv"
)

const (
	capCodeMin = 1
	capCodeMax = 9999
)

// CapCode is a hardware pager address. Valid codes are 1 to 9999; a
// CapCode is only obtainable through NewCapCode, out of bounds values
// are rejected rather than clamped.
type CapCode struct {
	code int
}

func NewCapCode(code int) (CapCode, error) {
	if code < capCodeMin || code > capCodeMax {
		return CapCode{}, fmt.Errorf("cap code %d out of bounds [%d, %d]", code, capCodeMin, capCodeMax)
	}
	return CapCode{code: code}, nil
}

// MustCapCode panics on an invalid code. For tests and literals only.
func MustCapCode(code int) CapCode {
	c, err := NewCapCode(code)
	if err != nil {
		panic(err)
	}
	return c
}

func (c CapCode) Int() int { return c.code }

func (c CapCode) String() string { return strconv.Itoa(c.code) }
