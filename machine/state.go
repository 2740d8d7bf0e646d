// Package machine holds the executable form of the flight state graph and
// the per-tick engine that drives it. Executable nodes reference each other
// directly through pointers; they are carved out of an Arena once at startup
// by Build and live, logically immutable, for the rest of the process. The
// only mutable execution-time fields are the per-command one-shot flag and
// the machine's activation time.
package machine

import (
	"log"

	"github.com/openavionics/flightcore/config"
	"github.com/openavionics/flightcore/frozen"
	"github.com/openavionics/flightcore/timing"
)

// A Transition names the state the machine moves to, already resolved to a
// direct reference.
type Transition struct {
	Kind   config.TransitionKind
	Target *State
}

// A Check is a per-tick condition. A nil Transition makes the check inert:
// it is evaluated but never causes a state change.
type Check struct {
	Data       config.CheckData
	Transition *Transition
}

// A Command is a one-shot, delay-gated action. Each Command instance belongs
// to exactly one State and is never shared across states. The executed flag
// is owned by the execution goroutine; it is cleared when the owning state is
// re-entered, so a command fires at most once per state activation.
type Command struct {
	Value    config.CommandValue
	Delay    timing.Seconds
	executed bool
}

// Executed reports whether the command already fired in the current
// activation of its state.
func (c *Command) Executed() bool {
	return c.executed
}

// A Timeout forces a transition after its state has been active for
// Duration.
type Timeout struct {
	Duration   timing.Seconds
	Transition Transition
}

// A State is one flight phase in executable form. Checks and Commands are
// append-only collections filled during the second build pass; the timeout
// is a set-once cell, also written during that pass and read-only afterward.
type State struct {
	ID       uint8
	Checks   *frozen.Vec[*Check]
	Commands *frozen.Vec[*Command]

	timeout    *Timeout
	timeoutSet bool
}

// Timeout returns the state's timeout, or nil if the state has none.
func (s *State) Timeout() *Timeout {
	return s.timeout
}

// setTimeout writes the set-once timeout cell. Writing it twice is a
// construction bug.
func (s *State) setTimeout(t *Timeout) {
	if s.timeoutSet {
		log.Panicf("state %d: timeout set twice", s.ID)
	}

	s.timeout = t
	s.timeoutSet = true
}
