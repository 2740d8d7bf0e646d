package machine

import (
	"errors"
	"fmt"

	"github.com/openavionics/flightcore/config"
)

// ErrArenaExhausted is reported when the arena cannot hold the graph being
// built. Construction must fail outright; a partial graph is never usable.
var ErrArenaExhausted = errors.New("machine: arena exhausted")

// An Arena is a bump allocator for executable graph nodes. All node slabs
// are allocated up front; handing out a node is a counter increment, and
// nothing is ever freed before the arena itself is dropped. Pointers into
// the slabs stay valid for the arena's whole lifetime because the slabs are
// never reallocated.
type Arena struct {
	states   []State
	checks   []Check
	commands []Command
	timeouts []Timeout

	nStates   int
	nChecks   int
	nCommands int
	nTimeouts int
}

// NewArena creates an arena that can hold up to maxStates states,
// maxChecks checks, maxCommands commands, and one timeout per state.
func NewArena(maxStates, maxChecks, maxCommands int) *Arena {
	return &Arena{
		states:   make([]State, maxStates),
		checks:   make([]Check, maxChecks),
		commands: make([]Command, maxCommands),
		timeouts: make([]Timeout, maxStates),
	}
}

// NewFlightArena creates an arena sized for the largest graph the portable
// form allows.
func NewFlightArena() *Arena {
	return NewArena(
		config.MaxStates,
		config.MaxStates*config.MaxChecksPerState,
		config.MaxStates*config.MaxCommandsPerState,
	)
}

func (a *Arena) allocState() (*State, error) {
	if a.nStates >= len(a.states) {
		return nil, fmt.Errorf("%w: %d states", ErrArenaExhausted, len(a.states))
	}

	s := &a.states[a.nStates]
	a.nStates++

	return s, nil
}

func (a *Arena) allocCheck() (*Check, error) {
	if a.nChecks >= len(a.checks) {
		return nil, fmt.Errorf("%w: %d checks", ErrArenaExhausted, len(a.checks))
	}

	c := &a.checks[a.nChecks]
	a.nChecks++

	return c, nil
}

func (a *Arena) allocCommand() (*Command, error) {
	if a.nCommands >= len(a.commands) {
		return nil, fmt.Errorf("%w: %d commands", ErrArenaExhausted, len(a.commands))
	}

	c := &a.commands[a.nCommands]
	a.nCommands++

	return c, nil
}

func (a *Arena) allocTimeout() (*Timeout, error) {
	if a.nTimeouts >= len(a.timeouts) {
		return nil, fmt.Errorf("%w: %d timeouts", ErrArenaExhausted, len(a.timeouts))
	}

	t := &a.timeouts[a.nTimeouts]
	a.nTimeouts++

	return t, nil
}
