package config

import (
	"fmt"
	"log"

	"github.com/openavionics/flightcore/timing"
)

// CommandKind identifies a physical effector that a command can act upon.
type CommandKind uint8

// The closed set of actuatable targets.
const (
	CommandPyro1 CommandKind = iota
	CommandPyro2
	CommandPyro3
	CommandBeacon
	CommandDataRate
	numCommandKinds
)

func (k CommandKind) String() string {
	switch k {
	case CommandPyro1:
		return "Pyro1"
	case CommandPyro2:
		return "Pyro2"
	case CommandPyro3:
		return "Pyro3"
	case CommandBeacon:
		return "Beacon"
	case CommandDataRate:
		return "DataRate"
	default:
		return fmt.Sprintf("CommandKind(%d)", uint8(k))
	}
}

// ValueKind returns the shape of value this target accepts. Pyro channels and
// the beacon are switched with a bool; the data rate is a 16-bit selector.
func (k CommandKind) ValueKind() ValueKind {
	if k == CommandDataRate {
		return ValueU16
	}

	return ValueBool
}

// WithValue pairs the kind with a concrete value. Pairing a kind with a value
// of the wrong shape is a contract violation and panics.
func (k CommandKind) WithValue(v Value) CommandValue {
	if v.Kind() != k.ValueKind() {
		log.Panicf("%s value paired with %s command", v.Kind(), k)
	}

	return CommandValue{Kind: k, Value: v}
}

// A CommandValue is a tagged target plus the value to drive it to.
type CommandValue struct {
	Kind  CommandKind
	Value Value
}

func (cv CommandValue) String() string {
	return fmt.Sprintf("%s(%s)", cv.Kind, cv.Value)
}

// A Command is a one-shot, delay-gated action: delay seconds after its state
// activates, the target is driven to the value. The one-shot bookkeeping
// lives on the executable form only; this portable form is pure data.
type Command struct {
	Value CommandValue
	Delay timing.Seconds
}
