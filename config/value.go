// Package config defines the portable representation of the flight state
// graph: pure value types that reference each other through small integer
// indices. This form is what gets exchanged with offline tooling and stored
// in flash; the machine package converts it into the executable,
// pointer-linked form at startup.
package config

import (
	"fmt"
	"log"
)

// ValueKind identifies the shape of a Value.
type ValueKind uint8

// The three primitive shapes that flow through checks and commands.
const (
	ValueBool ValueKind = iota
	ValueF32
	ValueU16
)

func (k ValueKind) String() string {
	switch k {
	case ValueBool:
		return "bool"
	case ValueF32:
		return "f32"
	case ValueU16:
		return "u16"
	default:
		return fmt.Sprintf("ValueKind(%d)", uint8(k))
	}
}

// A Value is a tagged union of the primitive shapes. Reading it with the
// wrong accessor is a contract violation and panics; the data source for a
// given check kind must always report the same shape.
type Value struct {
	kind ValueKind
	b    bool
	f    float32
	u    uint16
}

// BoolValue creates a boolean Value.
func BoolValue(b bool) Value {
	return Value{kind: ValueBool, b: b}
}

// F32Value creates a floating-point Value.
func F32Value(f float32) Value {
	return Value{kind: ValueF32, f: f}
}

// U16Value creates a 16-bit unsigned Value.
func U16Value(u uint16) Value {
	return Value{kind: ValueU16, u: u}
}

// Kind returns the shape tag of the value.
func (v Value) Kind() ValueKind {
	return v.kind
}

// Bool returns the boolean payload. It panics if the value is not a bool.
func (v Value) Bool() bool {
	if v.kind != ValueBool {
		log.Panicf("%s value read as bool", v.kind)
	}

	return v.b
}

// F32 returns the float payload. It panics if the value is not an f32.
func (v Value) F32() float32 {
	if v.kind != ValueF32 {
		log.Panicf("%s value read as f32", v.kind)
	}

	return v.f
}

// U16 returns the 16-bit payload. It panics if the value is not a u16.
func (v Value) U16() uint16 {
	if v.kind != ValueU16 {
		log.Panicf("%s value read as u16", v.kind)
	}

	return v.u
}

func (v Value) String() string {
	switch v.kind {
	case ValueBool:
		return fmt.Sprintf("%t", v.b)
	case ValueF32:
		return fmt.Sprintf("%g", v.f)
	case ValueU16:
		return fmt.Sprintf("%d", v.u)
	default:
		return "invalid"
	}
}
