package config

import (
	"fmt"
	"log"
)

// CheckKind identifies an observable condition that the data source can
// report a live value for.
type CheckKind uint8

// The closed set of observable conditions.
const (
	CheckAltitude CheckKind = iota
	CheckApogee
	CheckPyro1Continuity
	CheckPyro2Continuity
	CheckPyro3Continuity
	numCheckKinds
)

func (k CheckKind) String() string {
	switch k {
	case CheckAltitude:
		return "Altitude"
	case CheckApogee:
		return "ApogeeFlag"
	case CheckPyro1Continuity:
		return "Pyro1Continuity"
	case CheckPyro2Continuity:
		return "Pyro2Continuity"
	case CheckPyro3Continuity:
		return "Pyro3Continuity"
	default:
		return fmt.Sprintf("CheckKind(%d)", uint8(k))
	}
}

// ValueKind returns the shape the data source must report for this kind.
func (k CheckKind) ValueKind() ValueKind {
	if k == CheckAltitude {
		return ValueF32
	}

	return ValueBool
}

// FloatConditionKind identifies the comparison applied by a FloatCondition.
type FloatConditionKind uint8

// The supported float comparisons.
const (
	CondGreaterThan FloatConditionKind = iota
	CondLessThan
	CondBetween
)

// A FloatCondition compares a live float value against fixed bounds.
type FloatCondition struct {
	Kind FloatConditionKind

	// Bound is the threshold for GreaterThan and LessThan.
	Bound float32

	// Lower and Upper delimit the Between interval, closed on both ends.
	Lower float32
	Upper float32
}

// GreaterThan builds a condition satisfied when the value is strictly above
// bound.
func GreaterThan(bound float32) FloatCondition {
	return FloatCondition{Kind: CondGreaterThan, Bound: bound}
}

// LessThan builds a condition satisfied when the value is strictly below
// bound.
func LessThan(bound float32) FloatCondition {
	return FloatCondition{Kind: CondLessThan, Bound: bound}
}

// Between builds a condition satisfied when lower <= value <= upper. Both
// ends are inclusive.
func Between(lower, upper float32) FloatCondition {
	return FloatCondition{Kind: CondBetween, Lower: lower, Upper: upper}
}

// Satisfied evaluates the condition against a live value.
func (c FloatCondition) Satisfied(v float32) bool {
	switch c.Kind {
	case CondGreaterThan:
		return v > c.Bound
	case CondLessThan:
		return v < c.Bound
	case CondBetween:
		return v >= c.Lower && v <= c.Upper
	default:
		log.Panicf("unknown float condition kind %d", c.Kind)
		return false
	}
}

func (c FloatCondition) String() string {
	switch c.Kind {
	case CondGreaterThan:
		return fmt.Sprintf("> %g", c.Bound)
	case CondLessThan:
		return fmt.Sprintf("< %g", c.Bound)
	case CondBetween:
		return fmt.Sprintf("in [%g, %g]", c.Lower, c.Upper)
	default:
		return "invalid"
	}
}

// CheckData describes what a check tests and against what target. Altitude
// checks carry a float condition; all other kinds carry the expected flag
// value.
type CheckData struct {
	Kind CheckKind

	// Float is the comparison for Altitude checks.
	Float FloatCondition

	// Flag is the expected value for ApogeeFlag and pyro continuity checks.
	Flag bool
}

// AltitudeCheck builds the data for an altitude check.
func AltitudeCheck(cond FloatCondition) CheckData {
	return CheckData{Kind: CheckAltitude, Float: cond}
}

// ApogeeCheck builds the data for a passed-apogee flag check.
func ApogeeCheck(expected bool) CheckData {
	return CheckData{Kind: CheckApogee, Flag: expected}
}

// PyroContinuityCheck builds the data for an igniter continuity check on
// channel 1, 2, or 3.
func PyroContinuityCheck(channel int, expected bool) CheckData {
	var kind CheckKind

	switch channel {
	case 1:
		kind = CheckPyro1Continuity
	case 2:
		kind = CheckPyro2Continuity
	case 3:
		kind = CheckPyro3Continuity
	default:
		log.Panicf("pyro channel %d out of range", channel)
	}

	return CheckData{Kind: kind, Flag: expected}
}

// Satisfied evaluates the check against a live value. The value's shape must
// match what the check kind demands; a mismatch is an internal contract
// violation and panics.
func (d CheckData) Satisfied(v Value) bool {
	if v.Kind() != d.Kind.ValueKind() {
		log.Panicf("%s value provided to a %s check", v.Kind(), d.Kind)
	}

	if d.Kind == CheckAltitude {
		return d.Float.Satisfied(v.F32())
	}

	return v.Bool() == d.Flag
}

func (d CheckData) String() string {
	if d.Kind == CheckAltitude {
		return fmt.Sprintf("%s %s", d.Kind, d.Float)
	}

	return fmt.Sprintf("%s == %t", d.Kind, d.Flag)
}
