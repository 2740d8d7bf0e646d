package control

import "github.com/openavionics/flightcore/config"

// A FakeSink records every command it receives, in order. It is a test
// double for the whole command sink.
type FakeSink struct {
	Calls []config.CommandValue
}

// NewFakeSink creates an empty FakeSink.
func NewFakeSink() *FakeSink {
	return &FakeSink{}
}

// Set records the command.
func (s *FakeSink) Set(cv config.CommandValue) {
	s.Calls = append(s.Calls, cv)
}

// CallsFor returns the recorded values sent to one target, in order.
func (s *FakeSink) CallsFor(kind config.CommandKind) []config.Value {
	var out []config.Value

	for _, cv := range s.Calls {
		if cv.Kind == kind {
			out = append(out, cv.Value)
		}
	}

	return out
}

// A FakeEffector records the values a single effector was driven to.
type FakeEffector struct {
	Values []config.Value
}

// Set records the value.
func (e *FakeEffector) Set(v config.Value) {
	e.Values = append(e.Values, v)
}
