package plan

import (
	"fmt"

	"github.com/openavionics/flightcore/config"
	"github.com/openavionics/flightcore/timing"
)

// Compile turns raw plan bytes into a validated portable config. It is the
// offline counterpart of the flight computer's config loader: everything a
// plan can get wrong is caught here, so the vehicle only ever sees
// well-formed configs.
func Compile(data []byte, filename string) (*config.ConfigFile, error) {
	f, err := Parse(data, filename)
	if err != nil {
		return nil, err
	}

	return f.Compile()
}

// Compile resolves state names into indices and produces the portable form.
func (f *File) Compile() (*config.ConfigFile, error) {
	if len(f.States) == 0 {
		return nil, fmt.Errorf("plan has no states")
	}

	if len(f.States) > config.MaxStates {
		return nil, fmt.Errorf("plan has %d states, limit is %d",
			len(f.States), config.MaxStates)
	}

	indexByName := map[string]config.StateIndex{}
	for i, s := range f.States {
		if s.Name == "" {
			return nil, fmt.Errorf("state %d has an empty name", i)
		}

		if _, dup := indexByName[s.Name]; dup {
			return nil, fmt.Errorf("duplicate state name %q", s.Name)
		}

		indexByName[s.Name] = config.StateIndex(i)
	}

	defaultState, ok := indexByName[f.Default]
	if !ok {
		return nil, fmt.Errorf("default state %q is not defined", f.Default)
	}

	cfg := &config.ConfigFile{
		DefaultState: defaultState,
		States:       make([]config.State, len(f.States)),
	}

	for i, s := range f.States {
		compiled, err := compileState(i, s, indexByName)
		if err != nil {
			return nil, err
		}

		cfg.States[i] = compiled
	}

	// Everything above should leave nothing for Validate to find; run it
	// anyway so the compiler and the loader agree on what well-formed means.
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("compiled plan is invalid: %w", err)
	}

	return cfg, nil
}

func compileState(
	i int,
	s State,
	indexByName map[string]config.StateIndex,
) (config.State, error) {
	out := config.State{ID: uint8(i)}

	if len(s.Checks) > config.MaxChecksPerState {
		return out, fmt.Errorf("state %q has %d checks, limit is %d",
			s.Name, len(s.Checks), config.MaxChecksPerState)
	}

	if len(s.Commands) > config.MaxCommandsPerState {
		return out, fmt.Errorf("state %q has %d commands, limit is %d",
			s.Name, len(s.Commands), config.MaxCommandsPerState)
	}

	for j, chk := range s.Checks {
		compiled, err := compileCheck(chk, indexByName)
		if err != nil {
			return out, fmt.Errorf("state %q check %d: %w", s.Name, j, err)
		}

		out.Checks = append(out.Checks, compiled)
	}

	for j, cmd := range s.Commands {
		compiled, err := compileCommand(cmd)
		if err != nil {
			return out, fmt.Errorf("state %q command %d: %w", s.Name, j, err)
		}

		out.Commands = append(out.Commands, compiled)
	}

	if s.Timeout != nil {
		t, err := compileTransition(s.Timeout.Transition, s.Timeout.Abort, indexByName)
		if err != nil {
			return out, fmt.Errorf("state %q timeout: %w", s.Name, err)
		}

		if t == nil {
			return out, fmt.Errorf(
				"state %q timeout needs a transition or abort target", s.Name)
		}

		out.Timeout = &config.Timeout{
			Duration:   timing.NewSeconds(float32(s.Timeout.After)),
			Transition: *t,
		}
	}

	return out, nil
}

func compileCheck(
	chk Check,
	indexByName map[string]config.StateIndex,
) (config.Check, error) {
	data, err := compileCheckData(chk)
	if err != nil {
		return config.Check{}, err
	}

	t, err := compileTransition(chk.Transition, chk.Abort, indexByName)
	if err != nil {
		return config.Check{}, err
	}

	return config.Check{Data: data, Transition: t}, nil
}

func compileCheckData(chk Check) (config.CheckData, error) {
	if chk.Check == "altitude" {
		if chk.Expect != nil {
			return config.CheckData{}, fmt.Errorf(
				"altitude checks take a comparison, not expect")
		}

		cond, err := compileFloatCondition(chk)
		if err != nil {
			return config.CheckData{}, err
		}

		return config.AltitudeCheck(cond), nil
	}

	if chk.GreaterThan != nil || chk.LessThan != nil || chk.Between != nil {
		return config.CheckData{}, fmt.Errorf(
			"%s checks take expect, not a comparison", chk.Check)
	}

	expected := true
	if chk.Expect != nil {
		expected = *chk.Expect
	}

	switch chk.Check {
	case "apogee":
		return config.ApogeeCheck(expected), nil
	case "pyro1_continuity":
		return config.PyroContinuityCheck(1, expected), nil
	case "pyro2_continuity":
		return config.PyroContinuityCheck(2, expected), nil
	case "pyro3_continuity":
		return config.PyroContinuityCheck(3, expected), nil
	default:
		return config.CheckData{}, fmt.Errorf("unknown check kind %q", chk.Check)
	}
}

func compileFloatCondition(chk Check) (config.FloatCondition, error) {
	set := 0
	for _, present := range []bool{
		chk.GreaterThan != nil, chk.LessThan != nil, chk.Between != nil,
	} {
		if present {
			set++
		}
	}

	if set != 1 {
		return config.FloatCondition{}, fmt.Errorf(
			"altitude checks need exactly one of greater_than, less_than, between")
	}

	switch {
	case chk.GreaterThan != nil:
		return config.GreaterThan(float32(*chk.GreaterThan)), nil
	case chk.LessThan != nil:
		return config.LessThan(float32(*chk.LessThan)), nil
	default:
		if chk.Between.Lower > chk.Between.Upper {
			return config.FloatCondition{}, fmt.Errorf(
				"between bounds are reversed: %g > %g",
				chk.Between.Lower, chk.Between.Upper)
		}

		return config.Between(
			float32(chk.Between.Lower), float32(chk.Between.Upper)), nil
	}
}

func compileCommand(cmd Command) (config.Command, error) {
	var kind config.CommandKind

	switch cmd.Command {
	case "pyro1":
		kind = config.CommandPyro1
	case "pyro2":
		kind = config.CommandPyro2
	case "pyro3":
		kind = config.CommandPyro3
	case "beacon":
		kind = config.CommandBeacon
	case "data_rate":
		kind = config.CommandDataRate
	default:
		return config.Command{}, fmt.Errorf("unknown command target %q", cmd.Command)
	}

	value, err := compileValue(kind, cmd.Value)
	if err != nil {
		return config.Command{}, err
	}

	if cmd.Delay < 0 {
		return config.Command{}, fmt.Errorf("negative delay %g", cmd.Delay)
	}

	return config.Command{
		Value: kind.WithValue(value),
		Delay: timing.NewSeconds(float32(cmd.Delay)),
	}, nil
}

func compileValue(kind config.CommandKind, raw any) (config.Value, error) {
	switch kind.ValueKind() {
	case config.ValueBool:
		b, ok := raw.(bool)
		if !ok {
			return config.Value{}, fmt.Errorf(
				"%s takes a bool value, got %T", kind, raw)
		}

		return config.BoolValue(b), nil
	case config.ValueU16:
		n, ok := asUint16(raw)
		if !ok {
			return config.Value{}, fmt.Errorf(
				"%s takes an integer value in [0, 65535], got %v", kind, raw)
		}

		return config.U16Value(n), nil
	default:
		return config.Value{}, fmt.Errorf("%s has no plan value form", kind)
	}
}

func asUint16(raw any) (uint16, bool) {
	var n int64

	switch v := raw.(type) {
	case int:
		n = int64(v)
	case int64:
		n = v
	case uint64:
		if v > 65535 {
			return 0, false
		}
		n = int64(v)
	case float64:
		if v != float64(int64(v)) {
			return 0, false
		}
		n = int64(v)
	default:
		return 0, false
	}

	if n < 0 || n > 65535 {
		return 0, false
	}

	return uint16(n), true
}

func compileTransition(
	transition, abort string,
	indexByName map[string]config.StateIndex,
) (*config.StateTransition, error) {
	if transition != "" && abort != "" {
		return nil, fmt.Errorf("transition and abort are mutually exclusive")
	}

	name := transition
	kind := config.TransitionNormal

	if abort != "" {
		name = abort
		kind = config.TransitionAbort
	}

	if name == "" {
		return nil, nil
	}

	target, ok := indexByName[name]
	if !ok {
		return nil, fmt.Errorf("target state %q is not defined", name)
	}

	return &config.StateTransition{Kind: kind, Target: target}, nil
}
