package machine

import (
	"fmt"
	"log"

	"github.com/openavionics/flightcore/config"
	"github.com/openavionics/flightcore/frozen"
)

// A Graph is the executable form of a config file: the states in their
// original order plus the resolved default state.
type Graph struct {
	States  []*State
	Default *State
}

// Build converts the portable form into the executable form, allocating
// every node from the arena. The conversion runs in two passes: the first
// allocates every state so that all state addresses are known, the second
// resolves transition indices into direct references and fills in checks,
// commands, and timeouts. Forward references and self-loops need no special
// handling because pass one fixed every address already.
//
// Arena exhaustion and malformed input surface as errors; construction must
// fail outright rather than hand back a partial graph. Overflowing a
// per-state collection panics instead: the portable and executable capacity
// constants can only disagree through a build bug.
func Build(cfg *config.ConfigFile, arena *Arena) (*Graph, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("build graph: %w", err)
	}

	states := make([]*State, len(cfg.States))

	// Pass 1: fix every state's address before any cross-linking.
	for i, src := range cfg.States {
		s, err := arena.allocState()
		if err != nil {
			return nil, fmt.Errorf("build graph: state %d: %w", i, err)
		}

		s.ID = src.ID
		s.Checks = frozen.NewVec[*Check](config.MaxChecksPerState)
		s.Commands = frozen.NewVec[*Command](config.MaxCommandsPerState)

		states[i] = s
	}

	// Pass 2: translate nodes and resolve transitions by position.
	for i, src := range cfg.States {
		dst := states[i]

		for _, chk := range src.Checks {
			if err := buildCheck(dst, chk, states, arena); err != nil {
				return nil, fmt.Errorf("build graph: state %d: %w", i, err)
			}
		}

		for _, cmd := range src.Commands {
			if err := buildCommand(dst, cmd, arena); err != nil {
				return nil, fmt.Errorf("build graph: state %d: %w", i, err)
			}
		}

		if src.Timeout != nil {
			to, err := arena.allocTimeout()
			if err != nil {
				return nil, fmt.Errorf("build graph: state %d: %w", i, err)
			}

			to.Duration = src.Timeout.Duration
			to.Transition = resolveTransition(src.Timeout.Transition, states)
			dst.setTimeout(to)
		}
	}

	return &Graph{
		States:  states,
		Default: states[cfg.DefaultState.Index()],
	}, nil
}

func buildCheck(
	dst *State,
	src config.Check,
	states []*State,
	arena *Arena,
) error {
	chk, err := arena.allocCheck()
	if err != nil {
		return err
	}

	chk.Data = src.Data
	if src.Transition != nil {
		t := resolveTransition(*src.Transition, states)
		chk.Transition = &t
	}

	if err := dst.Checks.Push(chk); err != nil {
		log.Panicf("state %d: check capacity constants out of sync", dst.ID)
	}

	return nil
}

func buildCommand(dst *State, src config.Command, arena *Arena) error {
	cmd, err := arena.allocCommand()
	if err != nil {
		return err
	}

	cmd.Value = src.Value
	cmd.Delay = src.Delay
	cmd.executed = false

	if err := dst.Commands.Push(cmd); err != nil {
		log.Panicf("state %d: command capacity constants out of sync", dst.ID)
	}

	return nil
}

func resolveTransition(t config.StateTransition, states []*State) Transition {
	return Transition{
		Kind:   t.Kind,
		Target: states[t.Target.Index()],
	}
}
