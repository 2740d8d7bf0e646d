//go:build linux

package control

import (
	"fmt"

	"github.com/warthog618/go-gpiocdev"

	"github.com/openavionics/flightcore/config"
)

// Default BCM pin assignment for the flight board.
const (
	DefaultPinPyro1  = 17
	DefaultPinPyro2  = 27
	DefaultPinPyro3  = 22
	DefaultPinBeacon = 23
)

// A GPIOLine is an Effector backed by one output line of a Linux GPIO
// character device. Driving it true sets the line active.
type GPIOLine struct {
	line *gpiocdev.Line
}

// RequestGPIOLine requests the given pin as an output, initially inactive.
// Pyro channels must come up inactive: a pin floating high at boot would
// fire an igniter.
func RequestGPIOLine(chip string, pin int) (*GPIOLine, error) {
	line, err := gpiocdev.RequestLine(chip, pin, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, fmt.Errorf("request output pin %d: %w", pin, err)
	}

	return &GPIOLine{line: line}, nil
}

// Set drives the line. The value must be a bool.
func (l *GPIOLine) Set(v config.Value) {
	val := 0
	if v.Bool() {
		val = 1
	}

	// SetValue only fails if the line was closed underneath us, which the
	// single-owner discipline rules out.
	_ = l.line.SetValue(val)
}

// Close drives the line inactive and releases it.
func (l *GPIOLine) Close() error {
	if err := l.line.SetValue(0); err != nil {
		return fmt.Errorf("clear output line: %w", err)
	}

	return l.line.Close()
}

// A ContinuityLine reads an igniter continuity sense pin. The sampling loop
// polls it and feeds the result into the data-acquisition workspace.
type ContinuityLine struct {
	line *gpiocdev.Line
}

// RequestContinuityLine requests the given pin as a pulled-down input.
func RequestContinuityLine(chip string, pin int) (*ContinuityLine, error) {
	line, err := gpiocdev.RequestLine(chip, pin,
		gpiocdev.AsInput, gpiocdev.WithPullDown)
	if err != nil {
		return nil, fmt.Errorf("request continuity pin %d: %w", pin, err)
	}

	return &ContinuityLine{line: line}, nil
}

// Read returns whether the igniter circuit is closed.
func (l *ContinuityLine) Read() (bool, error) {
	v, err := l.line.Value()
	if err != nil {
		return false, fmt.Errorf("read continuity line: %w", err)
	}

	return v == 1, nil
}

// Close releases the line.
func (l *ContinuityLine) Close() error {
	return l.line.Close()
}
