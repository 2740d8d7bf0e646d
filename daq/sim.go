package daq

import (
	"log"

	"github.com/openavionics/flightcore/config"
	"github.com/openavionics/flightcore/timing"
)

// A SimValue flips from one value to another at a fixed point in time. It
// simulates a sensor-derived condition changing mid-flight.
type SimValue struct {
	Initial  config.Value
	Eventual config.Value

	// At is when the value flips, on the simulation clock.
	At timing.Seconds
}

// Read returns the value as of now.
func (v SimValue) Read(now timing.Seconds) config.Value {
	if now.AtLeast(v.At) {
		return v.Eventual
	}

	return v.Initial
}

// A SimSource is a Source producing scripted, time-based values. It drives
// the simulator CLI and tests without any hardware.
type SimSource struct {
	time    timing.TimeTeller
	objects map[config.CheckKind]SimValue
}

// NewSimSource creates a SimSource reading its clock from tt.
func NewSimSource(tt timing.TimeTeller) *SimSource {
	return &SimSource{
		time:    tt,
		objects: map[config.CheckKind]SimValue{},
	}
}

// Script sets the behavior for one check kind. Both values must share the
// shape the kind demands.
func (s *SimSource) Script(kind config.CheckKind, v SimValue) {
	if v.Initial.Kind() != kind.ValueKind() || v.Eventual.Kind() != kind.ValueKind() {
		log.Panicf("%s scripted with wrong value shape", kind)
	}

	s.objects[kind] = v
}

// Get returns the scripted value for the kind as of the current simulation
// time. Unscripted kinds read as the zero value of their shape.
func (s *SimSource) Get(kind config.CheckKind) config.Value {
	v, ok := s.objects[kind]
	if !ok {
		if kind.ValueKind() == config.ValueF32 {
			return config.F32Value(0)
		}

		return config.BoolValue(false)
	}

	return v.Read(s.time.CurrentTime())
}
