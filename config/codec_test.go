package config

import (
	"bytes"
	"encoding/binary"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/openavionics/flightcore/timing"
)

// testConfig exercises every node flavor: a bare state, a state with checks
// of both shapes plus a timeout, and a state with delayed commands. State 1
// has a self-loop to cover that edge too.
func testConfig() *ConfigFile {
	launch := &StateTransition{Kind: TransitionNormal, Target: 2}
	hold := &StateTransition{Kind: TransitionNormal, Target: 1}

	return &ConfigFile{
		DefaultState: 1,
		States: []State{
			{ID: 0},
			{
				ID: 1,
				Checks: []Check{
					{Data: PyroContinuityCheck(1, true), Transition: launch},
					{Data: AltitudeCheck(Between(-50, 50)), Transition: hold},
					{Data: ApogeeCheck(false)},
				},
				Timeout: &Timeout{
					Duration:   timing.NewSeconds(3),
					Transition: StateTransition{Kind: TransitionAbort, Target: 0},
				},
			},
			{
				ID: 2,
				Commands: []Command{
					{
						Value: CommandDataRate.WithValue(U16Value(16)),
						Delay: timing.NewSeconds(4),
					},
					{
						Value: CommandBeacon.WithValue(BoolValue(true)),
						Delay: timing.NewSeconds(0.5),
					},
				},
			},
		},
	}
}

func TestCodecRoundTrip(t *testing.T) {
	cfg := testConfig()

	var buf bytes.Buffer
	require.NoError(t, cfg.EncodeTo(&buf))

	got, err := DecodeConfig(&buf)
	require.NoError(t, err)

	assert.Equal(t, cfg, got)
}

func TestEncodeRejectsInvalidConfig(t *testing.T) {
	cfg := &ConfigFile{
		DefaultState: 5,
		States:       []State{{ID: 0}},
	}

	var buf bytes.Buffer
	assert.Error(t, cfg.EncodeTo(&buf))
	assert.Zero(t, buf.Len())
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	_, err := DecodeConfig(bytes.NewReader([]byte("XXXX\x01\x00\x01")))
	assert.ErrorContains(t, err, "bad magic")
}

func TestDecodeRejectsUnknownVersion(t *testing.T) {
	_, err := DecodeConfig(bytes.NewReader([]byte("FCFG\x09\x00\x01")))
	assert.ErrorContains(t, err, "unsupported version")
}

func TestDecodeRejectsTruncatedInput(t *testing.T) {
	cfg := testConfig()

	var buf bytes.Buffer
	require.NoError(t, cfg.EncodeTo(&buf))

	raw := buf.Bytes()
	_, err := DecodeConfig(bytes.NewReader(raw[:len(raw)-3]))
	assert.Error(t, err)
}

func TestDecodeRejectsOutOfRangeTransition(t *testing.T) {
	cfg := &ConfigFile{
		DefaultState: 0,
		States: []State{
			{
				ID: 0,
				Checks: []Check{{
					Data:       ApogeeCheck(true),
					Transition: &StateTransition{Target: 1},
				}},
			},
			{ID: 1},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, cfg.EncodeTo(&buf))

	// Drop the second state from the encoded stream: the state count byte
	// sits right after magic, version, and default state.
	raw := buf.Bytes()
	raw[6] = 1

	// The stream now ends mid-way or leaves trailing bytes; either way the
	// dangling index must be caught, never executed.
	_, err := DecodeConfig(bytes.NewReader(raw))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.Error(t, (&ConfigFile{}).Validate())

	tooMany := &ConfigFile{States: make([]State, MaxStates+1)}
	assert.ErrorContains(t, tooMany.Validate(), "limit")

	overfull := &ConfigFile{
		States: []State{{
			Checks: make([]Check, MaxChecksPerState+1),
		}},
	}
	assert.ErrorContains(t, overfull.Validate(), "checks")

	assert.NoError(t, testConfig().Validate())
}

// Time fields reach Validate through both the codec and the plan compiler,
// so the shared checks must catch values the engine cannot compare against.
func TestValidateRejectsUnusableTimes(t *testing.T) {
	nan := timing.Seconds(math.NaN())

	nanDelay := &ConfigFile{States: []State{{
		Commands: []Command{{
			Value: CommandBeacon.WithValue(BoolValue(true)),
			Delay: nan,
		}},
	}}}
	assert.ErrorContains(t, nanDelay.Validate(), "delay is NaN")

	negativeDelay := &ConfigFile{States: []State{{
		Commands: []Command{{
			Value: CommandBeacon.WithValue(BoolValue(true)),
			Delay: -1,
		}},
	}}}
	assert.ErrorContains(t, negativeDelay.Validate(), "negative delay")

	nanDuration := &ConfigFile{States: []State{{
		Timeout: &Timeout{Duration: nan},
	}}}
	assert.ErrorContains(t, nanDuration.Validate(), "duration is NaN")

	nanBound := &ConfigFile{States: []State{{
		Checks: []Check{{
			Data: CheckData{
				Kind:  CheckAltitude,
				Float: FloatCondition{Kind: CondGreaterThan, Bound: float32(math.NaN())},
			},
		}},
	}}}
	assert.ErrorContains(t, nanBound.Validate(), "NaN")
}

// encodedSingleCommand returns the wire form of a one-state config holding
// a single boolean command. The last five bytes are the delay float
// followed by the timeout presence tag.
func encodedSingleCommand(t *testing.T) []byte {
	t.Helper()

	cfg := &ConfigFile{
		DefaultState: 0,
		States: []State{{
			ID: 0,
			Commands: []Command{{
				Value: CommandPyro1.WithValue(BoolValue(true)),
				Delay: timing.NewSeconds(0.5),
			}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, cfg.EncodeTo(&buf))

	return buf.Bytes()
}

// A flash-corrupted delay must be refused at decode, not handed to the
// engine where NaN comparisons would silently suppress the command.
func TestDecodeRejectsNaNDelay(t *testing.T) {
	raw := encodedSingleCommand(t)

	binary.LittleEndian.PutUint32(
		raw[len(raw)-5:len(raw)-1],
		math.Float32bits(float32(math.NaN())),
	)

	_, err := DecodeConfig(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "NaN")
}

func TestDecodeRejectsUnknownTimeoutTag(t *testing.T) {
	raw := encodedSingleCommand(t)
	raw[len(raw)-1] = 2

	_, err := DecodeConfig(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "unknown timeout tag")
}

func TestDecodeRejectsUnknownTransitionTag(t *testing.T) {
	cfg := &ConfigFile{
		DefaultState: 0,
		States: []State{{
			ID:     0,
			Checks: []Check{{Data: ApogeeCheck(true)}},
		}},
	}

	var buf bytes.Buffer
	require.NoError(t, cfg.EncodeTo(&buf))

	// The check's transition tag sits right before the command count and
	// the timeout tag.
	raw := buf.Bytes()
	raw[len(raw)-3] = 9

	_, err := DecodeConfig(bytes.NewReader(raw))
	assert.ErrorContains(t, err, "unknown transition tag")
}
