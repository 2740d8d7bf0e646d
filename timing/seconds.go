// Package timing provides the clock abstraction that the flight state machine
// runs on. All durations are expressed as Seconds, and time sources implement
// the TimeTeller interface so that the same engine can run on a deterministic
// tick counter in tests and on the wall clock on target hardware.
package timing

import (
	"fmt"
	"log"
	"math"
)

// Seconds is a duration or a point in time, in seconds. NaN is not a valid
// Seconds value; NewSeconds rejects it at construction.
type Seconds float32

// NewSeconds creates a Seconds value from a raw float.
func NewSeconds(v float32) Seconds {
	if math.IsNaN(float64(v)) {
		log.Panic("seconds cannot be NaN")
	}

	return Seconds(v)
}

// Sub returns the duration from o to s.
func (s Seconds) Sub(o Seconds) Seconds {
	return s - o
}

// AtLeast reports whether s is greater than or equal to o.
func (s Seconds) AtLeast(o Seconds) bool {
	return s >= o
}

func (s Seconds) String() string {
	return fmt.Sprintf("%gs", float32(s))
}

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() Seconds
}
