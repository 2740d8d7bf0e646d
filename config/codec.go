package config

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/openavionics/flightcore/timing"
)

// The on-wire layout is fixed little-endian and intentionally unstable; the
// version byte is bumped on any layout change and decoders reject versions
// they do not know.
var codecMagic = [4]byte{'F', 'C', 'F', 'G'}

const codecVersion = 1

const (
	tagNoTransition  = 0
	tagHasTransition = 1
	tagNoTimeout     = 0
	tagHasTimeout    = 1
)

// EncodeTo writes the config file in its binary form. The config is
// validated first; an invalid config is never emitted.
func (c *ConfigFile) EncodeTo(w io.Writer) error {
	if err := c.Validate(); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}

	ew := &errWriter{w: w}

	ew.bytes(codecMagic[:])
	ew.u8(codecVersion)
	ew.u8(uint8(c.DefaultState))
	ew.u8(uint8(len(c.States)))

	for _, s := range c.States {
		encodeState(ew, s)
	}

	if ew.err != nil {
		return fmt.Errorf("encode config: %w", ew.err)
	}

	return nil
}

// DecodeConfig reads a binary config file and validates it. Any structural
// fault is an error; partial configs are never returned.
func DecodeConfig(r io.Reader) (*ConfigFile, error) {
	er := &errReader{r: r}

	var magic [4]byte
	er.bytes(magic[:])

	if er.err == nil && magic != codecMagic {
		return nil, fmt.Errorf("decode config: bad magic %q", magic)
	}

	version := er.u8()
	if er.err == nil && version != codecVersion {
		return nil, fmt.Errorf("decode config: unsupported version %d", version)
	}

	cfg := &ConfigFile{
		DefaultState: StateIndex(er.u8()),
	}

	stateCount := er.u8()
	if er.err == nil && int(stateCount) > MaxStates {
		return nil, fmt.Errorf("decode config: %d states, limit is %d",
			stateCount, MaxStates)
	}

	for i := 0; i < int(stateCount) && er.err == nil; i++ {
		cfg.States = append(cfg.States, decodeState(er))
	}

	if er.err != nil {
		return nil, fmt.Errorf("decode config: %w", er.err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return cfg, nil
}

func encodeState(ew *errWriter, s State) {
	ew.u8(s.ID)

	ew.u8(uint8(len(s.Checks)))
	for _, chk := range s.Checks {
		encodeCheck(ew, chk)
	}

	ew.u8(uint8(len(s.Commands)))
	for _, cmd := range s.Commands {
		encodeCommand(ew, cmd)
	}

	if s.Timeout == nil {
		ew.u8(tagNoTimeout)
	} else {
		ew.u8(tagHasTimeout)
		ew.f32(float32(s.Timeout.Duration))
		encodeTransition(ew, s.Timeout.Transition)
	}
}

func decodeState(er *errReader) State {
	s := State{ID: er.u8()}

	checkCount := er.u8()
	if er.err == nil && int(checkCount) > MaxChecksPerState {
		er.fail(fmt.Errorf("%d checks, limit is %d", checkCount, MaxChecksPerState))
		return s
	}

	for i := 0; i < int(checkCount) && er.err == nil; i++ {
		s.Checks = append(s.Checks, decodeCheck(er))
	}

	commandCount := er.u8()
	if er.err == nil && int(commandCount) > MaxCommandsPerState {
		er.fail(fmt.Errorf("%d commands, limit is %d", commandCount, MaxCommandsPerState))
		return s
	}

	for i := 0; i < int(commandCount) && er.err == nil; i++ {
		s.Commands = append(s.Commands, decodeCommand(er))
	}

	switch tag := er.u8(); tag {
	case tagNoTimeout:
	case tagHasTimeout:
		to := Timeout{
			Duration:   timing.Seconds(er.f32()),
			Transition: decodeTransition(er),
		}
		s.Timeout = &to
	default:
		er.fail(fmt.Errorf("unknown timeout tag %d", tag))
	}

	return s
}

func encodeCheck(ew *errWriter, chk Check) {
	ew.u8(uint8(chk.Data.Kind))

	if chk.Data.Kind == CheckAltitude {
		ew.u8(uint8(chk.Data.Float.Kind))
		ew.f32(chk.Data.Float.Bound)
		ew.f32(chk.Data.Float.Lower)
		ew.f32(chk.Data.Float.Upper)
	} else {
		ew.boolean(chk.Data.Flag)
	}

	if chk.Transition == nil {
		ew.u8(tagNoTransition)
	} else {
		ew.u8(tagHasTransition)
		encodeTransition(ew, *chk.Transition)
	}
}

func decodeCheck(er *errReader) Check {
	kind := CheckKind(er.u8())
	if er.err == nil && kind >= numCheckKinds {
		er.fail(fmt.Errorf("unknown check kind %d", kind))
		return Check{}
	}

	chk := Check{Data: CheckData{Kind: kind}}

	if kind == CheckAltitude {
		condKind := FloatConditionKind(er.u8())
		if er.err == nil && condKind > CondBetween {
			er.fail(fmt.Errorf("unknown float condition kind %d", condKind))
			return Check{}
		}

		chk.Data.Float = FloatCondition{
			Kind:  condKind,
			Bound: er.f32(),
			Lower: er.f32(),
			Upper: er.f32(),
		}
	} else {
		chk.Data.Flag = er.boolean()
	}

	switch tag := er.u8(); tag {
	case tagNoTransition:
	case tagHasTransition:
		t := decodeTransition(er)
		chk.Transition = &t
	default:
		er.fail(fmt.Errorf("unknown transition tag %d", tag))
	}

	return chk
}

func encodeCommand(ew *errWriter, cmd Command) {
	ew.u8(uint8(cmd.Value.Kind))

	switch cmd.Value.Value.Kind() {
	case ValueBool:
		ew.boolean(cmd.Value.Value.Bool())
	case ValueU16:
		ew.u16(cmd.Value.Value.U16())
	case ValueF32:
		ew.f32(cmd.Value.Value.F32())
	}

	ew.f32(float32(cmd.Delay))
}

func decodeCommand(er *errReader) Command {
	kind := CommandKind(er.u8())
	if er.err == nil && kind >= numCommandKinds {
		er.fail(fmt.Errorf("unknown command kind %d", kind))
		return Command{}
	}

	var value Value

	switch kind.ValueKind() {
	case ValueBool:
		value = BoolValue(er.boolean())
	case ValueU16:
		value = U16Value(er.u16())
	case ValueF32:
		value = F32Value(er.f32())
	}

	cmd := Command{Delay: timing.Seconds(er.f32())}
	if er.err == nil {
		cmd.Value = kind.WithValue(value)
	}

	return cmd
}

func encodeTransition(ew *errWriter, t StateTransition) {
	ew.u8(uint8(t.Kind))
	ew.u8(uint8(t.Target))
}

func decodeTransition(er *errReader) StateTransition {
	kind := TransitionKind(er.u8())
	if er.err == nil && kind > TransitionAbort {
		er.fail(fmt.Errorf("unknown transition kind %d", kind))
		return StateTransition{}
	}

	return StateTransition{Kind: kind, Target: StateIndex(er.u8())}
}

// errWriter keeps the first write error and turns later writes into no-ops.
type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) bytes(b []byte) {
	if ew.err != nil {
		return
	}

	_, ew.err = ew.w.Write(b)
}

func (ew *errWriter) u8(v uint8) {
	ew.bytes([]byte{v})
}

func (ew *errWriter) boolean(v bool) {
	if v {
		ew.u8(1)
	} else {
		ew.u8(0)
	}
}

func (ew *errWriter) u16(v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	ew.bytes(b[:])
}

func (ew *errWriter) f32(v float32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], math.Float32bits(v))
	ew.bytes(b[:])
}

// errReader keeps the first read error and turns later reads into no-ops.
type errReader struct {
	r   io.Reader
	err error
}

func (er *errReader) fail(err error) {
	if er.err == nil {
		er.err = err
	}
}

func (er *errReader) bytes(b []byte) {
	if er.err != nil {
		return
	}

	_, er.err = io.ReadFull(er.r, b)
}

func (er *errReader) u8() uint8 {
	var b [1]byte
	er.bytes(b[:])

	return b[0]
}

func (er *errReader) boolean() bool {
	return er.u8() != 0
}

func (er *errReader) u16() uint16 {
	var b [2]byte
	er.bytes(b[:])

	return binary.LittleEndian.Uint16(b[:])
}

func (er *errReader) f32() float32 {
	var b [4]byte
	er.bytes(b[:])

	return math.Float32frombits(binary.LittleEndian.Uint32(b[:]))
}
