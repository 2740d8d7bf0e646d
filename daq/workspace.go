// Package daq holds the data-acquisition side of the flight loop: a
// workspace of the most recent engineering-unit samples, exposed to the
// state machine through the Source contract. The sampling loop stores new
// values as sensors are read; the machine transparently sees them on its
// next tick. Reads never block and never touch hardware.
package daq

import (
	"log"

	"github.com/openavionics/flightcore/config"
)

// DefaultApogeeMargin is how far, in meters, the altitude must drop below
// the running peak before the workspace declares apogee passed. The margin
// absorbs barometer noise near the top of the arc.
const DefaultApogeeMargin = 5.0

// A Workspace caches the latest sample for every check kind. A single
// goroutine owns it: the main loop interleaves Store calls with engine
// ticks, so no locking is needed or wanted here.
type Workspace struct {
	altitude     float32
	peakAltitude float32
	haveAltitude bool

	apogeeMargin float32
	pastApogee   bool

	continuity [3]bool
}

// NewWorkspace creates a Workspace with the given apogee margin in meters.
func NewWorkspace(apogeeMargin float32) *Workspace {
	if apogeeMargin <= 0 {
		log.Panic("apogee margin must be positive")
	}

	return &Workspace{apogeeMargin: apogeeMargin}
}

// StoreAltitude records a new altitude sample in meters above ground and
// updates the apogee flag. The peak is seeded from the first sample, so a
// pad sitting below the zero datum cannot latch apogee before liftoff. The
// flag latches: once set it never clears, even if a noisy sample later
// climbs back above the peak.
func (w *Workspace) StoreAltitude(meters float32) {
	w.altitude = meters

	if !w.haveAltitude || meters > w.peakAltitude {
		w.peakAltitude = meters
	}
	w.haveAltitude = true

	if !w.pastApogee && w.peakAltitude-meters >= w.apogeeMargin {
		w.pastApogee = true
	}
}

// StorePyroContinuity records the continuity of igniter channel 1, 2, or 3.
func (w *Workspace) StorePyroContinuity(channel int, closed bool) {
	if channel < 1 || channel > 3 {
		log.Panicf("pyro channel %d out of range", channel)
	}

	w.continuity[channel-1] = closed
}

// Altitude returns the latest altitude sample in meters.
func (w *Workspace) Altitude() float32 {
	return w.altitude
}

// PastApogee reports whether the vehicle has passed apogee.
func (w *Workspace) PastApogee() bool {
	return w.pastApogee
}

// Get returns the current best-known value for a check kind. It implements
// the machine's Source contract: the shape returned for a kind never
// varies.
func (w *Workspace) Get(kind config.CheckKind) config.Value {
	switch kind {
	case config.CheckAltitude:
		return config.F32Value(w.altitude)
	case config.CheckApogee:
		return config.BoolValue(w.pastApogee)
	case config.CheckPyro1Continuity:
		return config.BoolValue(w.continuity[0])
	case config.CheckPyro2Continuity:
		return config.BoolValue(w.continuity[1])
	case config.CheckPyro3Continuity:
		return config.BoolValue(w.continuity[2])
	default:
		log.Panicf("read of unknown check kind %d", kind)
		return config.Value{}
	}
}
