package monitoring

import (
	"fmt"
	"sync"

	"github.com/openavionics/flightcore/config"
	"github.com/openavionics/flightcore/machine"
	"github.com/openavionics/flightcore/timing"
)

// maxRecentEvents bounds the event log served over HTTP. Older events are
// evicted; the full record lives in the flight recorder.
const maxRecentEvents = 64

// An Event is one observed transition or command, rendered for reporting.
type Event struct {
	Kind   string  `json:"kind"`
	Detail string  `json:"detail"`
	TimeS  float64 `json:"time_s"`
}

// A Tracker is a hook that mirrors the machine's progress into a snapshot
// that can be read from another goroutine. The machine invokes hooks on its
// own goroutine, so all fields are guarded.
type Tracker struct {
	lock sync.Mutex

	currentState uint8
	activatedAt  timing.Seconds
	transitions  uint64
	aborts       uint64
	commands     uint64
	recent       []Event
}

// NewTracker creates a Tracker positioned at the machine's initial state.
func NewTracker(m *machine.Machine) *Tracker {
	return &Tracker{
		currentState: m.Current().ID,
		activatedAt:  m.ActivatedAt(),
	}
}

// Func records transition and command hook invocations.
func (t *Tracker) Func(ctx machine.HookCtx) {
	t.lock.Lock()
	defer t.lock.Unlock()

	switch ctx.Pos {
	case machine.HookPosTransition, machine.HookPosAbort:
		info := ctx.Item.(machine.TransitionInfo)

		t.currentState = info.To.ID
		t.activatedAt = info.At
		t.transitions++

		kind := "transition"
		if info.Kind == config.TransitionAbort {
			kind = "abort"
			t.aborts++
		}

		t.append(Event{
			Kind:   kind,
			Detail: fmt.Sprintf("state %d -> state %d", info.From.ID, info.To.ID),
			TimeS:  float64(info.At),
		})
	case machine.HookPosCommand:
		info := ctx.Item.(machine.CommandInfo)

		t.commands++
		t.append(Event{
			Kind:   "command",
			Detail: info.Command.Value.String(),
			TimeS:  float64(info.At),
		})
	}
}

func (t *Tracker) append(e Event) {
	t.recent = append(t.recent, e)
	if len(t.recent) > maxRecentEvents {
		t.recent = t.recent[1:]
	}
}

// A Status is a point-in-time view of the machine's progress.
type Status struct {
	CurrentState uint8   `json:"current_state"`
	ActivatedAtS float64 `json:"activated_at_s"`
	Transitions  uint64  `json:"transitions"`
	Aborts       uint64  `json:"aborts"`
	Commands     uint64  `json:"commands"`
	Recent       []Event `json:"recent"`
}

// Status returns a copy of the tracked state.
func (t *Tracker) Status() Status {
	t.lock.Lock()
	defer t.lock.Unlock()

	recent := make([]Event, len(t.recent))
	copy(recent, t.recent)

	return Status{
		CurrentState: t.currentState,
		ActivatedAtS: float64(t.activatedAt),
		Transitions:  t.transitions,
		Aborts:       t.aborts,
		Commands:     t.commands,
		Recent:       recent,
	}
}
