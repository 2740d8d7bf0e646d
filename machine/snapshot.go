package machine

import (
	"log"

	"github.com/openavionics/flightcore/config"
)

// Snapshot walks an executable graph back into the portable form. Every
// transition target is mapped to the position of the state it points at, so
// Build followed by Snapshot reproduces the original config exactly. The
// one-shot command flags belong to the executable form only and are not
// carried over.
func Snapshot(g *Graph) *config.ConfigFile {
	cfg := &config.ConfigFile{
		DefaultState: stateIndexOf(g, g.Default),
		States:       make([]config.State, len(g.States)),
	}

	for i, s := range g.States {
		cfg.States[i] = snapshotState(g, s)
	}

	return cfg
}

func snapshotState(g *Graph, s *State) config.State {
	out := config.State{ID: s.ID}

	s.Checks.Each(func(p **Check) {
		chk := config.Check{Data: (*p).Data}
		if (*p).Transition != nil {
			t := indexTransition(g, *(*p).Transition)
			chk.Transition = &t
		}

		out.Checks = append(out.Checks, chk)
	})

	s.Commands.Each(func(p **Command) {
		out.Commands = append(out.Commands, config.Command{
			Value: (*p).Value,
			Delay: (*p).Delay,
		})
	})

	if to := s.Timeout(); to != nil {
		out.Timeout = &config.Timeout{
			Duration:   to.Duration,
			Transition: indexTransition(g, to.Transition),
		}
	}

	return out
}

func indexTransition(g *Graph, t Transition) config.StateTransition {
	return config.StateTransition{
		Kind:   t.Kind,
		Target: stateIndexOf(g, t.Target),
	}
}

// stateIndexOf returns the position of the state within the graph. A target
// outside the graph cannot be produced by Build; hitting one means the graph
// was assembled by hand incorrectly.
func stateIndexOf(g *Graph, target *State) config.StateIndex {
	for i, s := range g.States {
		if s == target {
			return config.StateIndex(i)
		}
	}

	log.Panicf("state %d is not a member of the graph", target.ID)

	return 0
}
