package machine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/openavionics/flightcore/config"
	"github.com/openavionics/flightcore/timing"
)

// A ground-hold flight profile: power-on waits for igniter continuity,
// aborting to a safe state after 3 seconds without it; launch switches the
// radio to a higher data rate 4 seconds in.
func groundHoldConfig() *config.ConfigFile {
	const (
		safe    = config.StateIndex(0)
		poweron = config.StateIndex(1)
		launch  = config.StateIndex(2)
	)

	return &config.ConfigFile{
		DefaultState: poweron,
		States: []config.State{
			{ID: 0},
			{
				ID: 1,
				Checks: []config.Check{{
					Data: config.PyroContinuityCheck(1, true),
					Transition: &config.StateTransition{
						Kind: config.TransitionNormal, Target: launch,
					},
				}},
				Timeout: &config.Timeout{
					Duration: timing.NewSeconds(3),
					Transition: config.StateTransition{
						Kind: config.TransitionAbort, Target: safe,
					},
				},
			},
			{
				ID: 2,
				Commands: []config.Command{{
					Value: config.CommandDataRate.WithValue(config.U16Value(16)),
					Delay: timing.NewSeconds(4),
				}},
			},
		},
	}
}

var _ = Describe("Machine, flying the ground-hold profile", func() {
	var (
		mockCtrl *gomock.Controller
		sink     *MockSink
		source   *MockSource
		clock    *timing.TickClock
		g        *Graph
		m        *Machine
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sink = NewMockSink(mockCtrl)
		source = NewMockSource(mockCtrl)
		clock = timing.NewTickClock(timing.OneKHz)

		g = mustBuild(groundHoldConfig())
		m = New(g.Default, clock, sink, source)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	tickFor := func(seconds float64) {
		steps := int(seconds * 100)
		for i := 0; i < steps; i++ {
			clock.Advance(10)
			m.Execute()
		}
	}

	It("should abort to Safe after 3 seconds without continuity", func() {
		source.EXPECT().
			Get(config.CheckPyro1Continuity).
			Return(config.BoolValue(false)).
			AnyTimes()

		tickFor(3.1)

		Expect(m.Current().ID).To(Equal(uint8(0)))
	})

	It("should launch on continuity and switch the data rate once", func() {
		source.EXPECT().
			Get(config.CheckPyro1Continuity).
			Return(config.BoolValue(true))

		m.Execute()
		Expect(m.Current().ID).To(Equal(uint8(2)))

		sink.EXPECT().Set(config.CommandDataRate.WithValue(config.U16Value(16)))

		tickFor(5.0)

		Expect(m.Current().ID).To(Equal(uint8(2)))
	})
})
