package config

import (
	"fmt"
	"math"

	"github.com/openavionics/flightcore/timing"
)

// Capacity limits of the state graph. The executable form reserves exactly
// these capacities; the two sets of constants must never drift apart.
const (
	MaxStates           = 16
	MaxChecksPerState   = 3
	MaxCommandsPerState = 3
)

// A StateIndex references a state by its position in ConfigFile.States.
type StateIndex uint8

// Index returns the position as a plain int.
func (i StateIndex) Index() int {
	return int(i)
}

// TransitionKind distinguishes a normal phase advance from a safety
// fallback. Both move the machine identically; the distinction exists for
// diagnostics and telemetry.
type TransitionKind uint8

// The two transition kinds.
const (
	TransitionNormal TransitionKind = iota
	TransitionAbort
)

func (k TransitionKind) String() string {
	if k == TransitionAbort {
		return "Abort"
	}

	return "Transition"
}

// A StateTransition names the state to move to and how the move is reported.
type StateTransition struct {
	Kind   TransitionKind
	Target StateIndex
}

// A Check pairs check data with an optional transition. A nil transition
// means the check is present but inert: it is evaluated, yet never causes a
// state change.
type Check struct {
	Data       CheckData
	Transition *StateTransition
}

// A Timeout forces a transition after the state has been active for the
// given duration without an earlier check-triggered transition.
type Timeout struct {
	Duration   timing.Seconds
	Transition StateTransition
}

// A State is one flight phase: an id for diagnostics, up to
// MaxChecksPerState checks, up to MaxCommandsPerState commands, and an
// optional timeout.
type State struct {
	ID       uint8
	Checks   []Check
	Commands []Command
	Timeout  *Timeout
}

// A ConfigFile is the unit exchanged with outside tooling: the full state
// list plus which state the machine starts in.
type ConfigFile struct {
	// DefaultState is the initial state. It always denotes a valid member of
	// States.
	DefaultState StateIndex
	States       []State
}

// Validate checks the structural invariants of the portable form: state and
// per-state capacities, default-state membership, and transition index
// validity. A ConfigFile that fails validation must never be executed.
func (c *ConfigFile) Validate() error {
	if len(c.States) == 0 {
		return fmt.Errorf("config has no states")
	}

	if len(c.States) > MaxStates {
		return fmt.Errorf("config has %d states, limit is %d",
			len(c.States), MaxStates)
	}

	if c.DefaultState.Index() >= len(c.States) {
		return fmt.Errorf("default state %d out of range [0, %d)",
			c.DefaultState, len(c.States))
	}

	for i, s := range c.States {
		if err := c.validateState(i, s); err != nil {
			return err
		}
	}

	return nil
}

func (c *ConfigFile) validateState(i int, s State) error {
	if len(s.Checks) > MaxChecksPerState {
		return fmt.Errorf("state %d has %d checks, limit is %d",
			i, len(s.Checks), MaxChecksPerState)
	}

	if len(s.Commands) > MaxCommandsPerState {
		return fmt.Errorf("state %d has %d commands, limit is %d",
			i, len(s.Commands), MaxCommandsPerState)
	}

	for j, chk := range s.Checks {
		if err := validateCondition(chk.Data); err != nil {
			return fmt.Errorf("state %d check %d: %w", i, j, err)
		}

		if chk.Transition != nil {
			if err := c.validateTransition(*chk.Transition); err != nil {
				return fmt.Errorf("state %d check %d: %w", i, j, err)
			}
		}
	}

	for j, cmd := range s.Commands {
		if err := validateSeconds("delay", cmd.Delay); err != nil {
			return fmt.Errorf("state %d command %d: %w", i, j, err)
		}
	}

	if s.Timeout != nil {
		if err := validateSeconds("duration", s.Timeout.Duration); err != nil {
			return fmt.Errorf("state %d timeout: %w", i, err)
		}

		if err := c.validateTransition(s.Timeout.Transition); err != nil {
			return fmt.Errorf("state %d timeout: %w", i, err)
		}
	}

	return nil
}

// validateSeconds guards the time fields against values the engine's
// comparisons cannot act on. A NaN delay compares false against every
// elapsed time and the command would never fire.
func validateSeconds(what string, v timing.Seconds) error {
	if math.IsNaN(float64(v)) {
		return fmt.Errorf("%s is NaN", what)
	}

	if v < 0 {
		return fmt.Errorf("negative %s %s", what, v)
	}

	return nil
}

func validateCondition(d CheckData) error {
	if d.Kind != CheckAltitude {
		return nil
	}

	f := d.Float
	if math.IsNaN(float64(f.Bound)) ||
		math.IsNaN(float64(f.Lower)) ||
		math.IsNaN(float64(f.Upper)) {
		return fmt.Errorf("condition bound is NaN")
	}

	return nil
}

func (c *ConfigFile) validateTransition(t StateTransition) error {
	if t.Target.Index() >= len(c.States) {
		return fmt.Errorf("transition target %d out of range [0, %d)",
			t.Target, len(c.States))
	}

	return nil
}
