// Package control routes commands coming out of the state machine to the
// physical effectors: pyro channels, the recovery beacon, and the telemetry
// data-rate selector. The real implementations drive Linux GPIO character
// devices; fakes allow running the full flight loop without hardware.
package control

import (
	"log"

	"github.com/openavionics/flightcore/config"
)

// An Effector is one controllable output. Set drives it to the given value;
// the side effect is external and there is no readback at this layer.
type Effector interface {
	Set(config.Value)
}

// Controls is the command sink: it owns one effector per command kind and
// dispatches on the command's target tag. It is safe to call Set several
// times within one engine tick.
type Controls struct {
	pyro1    Effector
	pyro2    Effector
	pyro3    Effector
	beacon   Effector
	dataRate Effector
}

// New creates a Controls with the given effectors. Every effector must be
// non-nil; a flight computer with an unwired effector must not start.
func New(pyro1, pyro2, pyro3, beacon, dataRate Effector) *Controls {
	for _, e := range []Effector{pyro1, pyro2, pyro3, beacon, dataRate} {
		if e == nil {
			log.Panic("all effectors must be wired")
		}
	}

	return &Controls{
		pyro1:    pyro1,
		pyro2:    pyro2,
		pyro3:    pyro3,
		beacon:   beacon,
		dataRate: dataRate,
	}
}

// NewLogged creates a Controls whose effectors only write to the logger.
// This is the ground-test configuration.
func NewLogged(logger *log.Logger) *Controls {
	return New(
		NewLoggedEffector("Pyro1", logger),
		NewLoggedEffector("Pyro2", logger),
		NewLoggedEffector("Pyro3", logger),
		NewLoggedEffector("Beacon", logger),
		NewLoggedEffector("DataRate", logger),
	)
}

// Set routes the command to the one effector matching its target.
func (c *Controls) Set(cv config.CommandValue) {
	switch cv.Kind {
	case config.CommandPyro1:
		c.pyro1.Set(cv.Value)
	case config.CommandPyro2:
		c.pyro2.Set(cv.Value)
	case config.CommandPyro3:
		c.pyro3.Set(cv.Value)
	case config.CommandBeacon:
		c.beacon.Set(cv.Value)
	case config.CommandDataRate:
		c.dataRate.Set(cv.Value)
	default:
		log.Panicf("command for unknown target %s", cv.Kind)
	}
}

// A LoggedEffector prints every value it is driven to. Debugging only.
type LoggedEffector struct {
	name   string
	logger *log.Logger
}

// NewLoggedEffector creates a LoggedEffector with the given name.
func NewLoggedEffector(name string, logger *log.Logger) *LoggedEffector {
	return &LoggedEffector{name: name, logger: logger}
}

// Set logs the value.
func (e *LoggedEffector) Set(v config.Value) {
	e.logger.Printf("%s was set to value: %s", e.name, v)
}

// A RateEffector forwards the 16-bit data-rate selector to a callback,
// normally wired to the radio driver.
type RateEffector struct {
	apply func(uint16)
}

// NewRateEffector creates a RateEffector calling apply on every change.
func NewRateEffector(apply func(uint16)) *RateEffector {
	return &RateEffector{apply: apply}
}

// Set applies the rate. The value must be a u16.
func (e *RateEffector) Set(v config.Value) {
	e.apply(v.U16())
}
