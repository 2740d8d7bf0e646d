package machine

import (
	"github.com/openavionics/flightcore/config"
	"github.com/openavionics/flightcore/timing"
)

// A Sink routes a command's tagged target and value to the matching physical
// effector. It must tolerate being called several times within one tick,
// once per eligible command.
type Sink interface {
	Set(config.CommandValue)
}

// A Source reports the current best-known sampled value for a check kind.
// It must always report the same value shape for a given kind, and must not
// block; the engine reads it on every tick.
type Source interface {
	Get(config.CheckKind) config.Value
}

// CommandInfo describes one fired command for hooks and diagnostics.
type CommandInfo struct {
	Command *Command
	State   *State
	At      timing.Seconds
}

// TransitionInfo describes one state change for hooks and diagnostics.
type TransitionInfo struct {
	From *State
	To   *State
	Kind config.TransitionKind
	At   timing.Seconds
}

// A Machine drives the flight state graph one tick at a time. It has no
// internal states of its own beyond which graph node is current; the flight
// phases are data. A single goroutine owns the machine and calls Execute in
// its main loop.
type Machine struct {
	HookableBase

	current     *State
	activatedAt timing.Seconds

	time   timing.TimeTeller
	sink   Sink
	source Source
}

// New creates a Machine positioned at the configured initial state, with the
// construction instant as the state's activation time.
func New(initial *State, tt timing.TimeTeller, sink Sink, source Source) *Machine {
	return &Machine{
		current:     initial,
		activatedAt: tt.CurrentTime(),
		time:        tt,
		sink:        sink,
		source:      source,
	}
}

// Current returns the state the machine is in.
func (m *Machine) Current() *State {
	return m.current
}

// ActivatedAt returns when the current state was entered.
func (m *Machine) ActivatedAt() timing.Seconds {
	return m.activatedAt
}

// TimeInState returns how long the current state has been active.
func (m *Machine) TimeInState() timing.Seconds {
	return m.time.CurrentTime().Sub(m.activatedAt)
}

// Execute runs one tick: fire eligible commands, evaluate checks, apply the
// timeout, and perform at most one state transition.
func (m *Machine) Execute() {
	if t := m.executeState(); t != nil {
		m.transition(t)
	}
}

func (m *Machine) executeState() *Transition {
	elapsed := m.TimeInState()

	m.runCommands(elapsed)

	if t, satisfied := m.runChecks(); satisfied {
		return t
	}

	if to := m.current.Timeout(); to != nil && elapsed.AtLeast(to.Duration) {
		return &to.Transition
	}

	return nil
}

// runCommands fires, in declaration order, every not-yet-executed command
// whose delay has elapsed. All eligible commands fire within the same tick.
func (m *Machine) runCommands(elapsed timing.Seconds) {
	for i := 0; i < m.current.Commands.Len(); i++ {
		cmd := *m.current.Commands.At(i)

		if cmd.executed || !elapsed.AtLeast(cmd.Delay) {
			continue
		}

		m.sink.Set(cmd.Value)
		cmd.executed = true

		if m.NumHooks() > 0 {
			m.InvokeHook(HookCtx{
				Domain: m,
				Pos:    HookPosCommand,
				Item: CommandInfo{
					Command: cmd,
					State:   m.current,
					At:      m.activatedAt + elapsed,
				},
			})
		}
	}
}

// runChecks evaluates the current state's checks in declaration order. The
// first satisfied check ends evaluation for this tick, whether or not it
// carries a transition; a satisfied inert check therefore masks the checks
// after it and the timeout.
func (m *Machine) runChecks() (*Transition, bool) {
	for i := 0; i < m.current.Checks.Len(); i++ {
		chk := *m.current.Checks.At(i)

		value := m.source.Get(chk.Data.Kind)
		if chk.Data.Satisfied(value) {
			return chk.Transition, true
		}
	}

	return nil, false
}

func (m *Machine) transition(t *Transition) {
	now := m.time.CurrentTime()

	pos := HookPosTransition
	if t.Kind == config.TransitionAbort {
		pos = HookPosAbort
	}

	if m.NumHooks() > 0 {
		m.InvokeHook(HookCtx{
			Domain: m,
			Pos:    pos,
			Item: TransitionInfo{
				From: m.current,
				To:   t.Target,
				Kind: t.Kind,
				At:   now,
			},
		})
	}

	m.current = t.Target
	m.activatedAt = now

	// Entering a state starts a fresh activation: its commands become
	// eligible to fire again.
	m.current.Commands.Each(func(p **Command) {
		(*p).executed = false
	})
}
