package machine

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"go.uber.org/mock/gomock"

	"github.com/openavionics/flightcore/config"
	"github.com/openavionics/flightcore/timing"
)

type recordingHook struct {
	ctxs []HookCtx
}

func (h *recordingHook) Func(ctx HookCtx) {
	h.ctxs = append(h.ctxs, ctx)
}

func mustBuild(cfg *config.ConfigFile) *Graph {
	g, err := Build(cfg, NewFlightArena())
	ExpectWithOffset(1, err).ToNot(HaveOccurred())

	return g
}

func transitionTo(i config.StateIndex) *config.StateTransition {
	return &config.StateTransition{Kind: config.TransitionNormal, Target: i}
}

func abortTo(i config.StateIndex) *config.StateTransition {
	return &config.StateTransition{Kind: config.TransitionAbort, Target: i}
}

var _ = Describe("Machine", func() {
	var (
		mockCtrl *gomock.Controller
		sink     *MockSink
		source   *MockSource
		clock    *timing.TickClock
	)

	BeforeEach(func() {
		mockCtrl = gomock.NewController(GinkgoT())
		sink = NewMockSink(mockCtrl)
		source = NewMockSource(mockCtrl)
		clock = timing.NewTickClock(timing.OneKHz)
	})

	AfterEach(func() {
		mockCtrl.Finish()
	})

	It("should take the first satisfied check and skip the rest", func() {
		g := mustBuild(&config.ConfigFile{
			DefaultState: 0,
			States: []config.State{
				{ID: 0, Checks: []config.Check{
					{Data: config.PyroContinuityCheck(1, true), Transition: transitionTo(1)},
					{Data: config.ApogeeCheck(true), Transition: transitionTo(1)},
					{Data: config.PyroContinuityCheck(2, true), Transition: transitionTo(2)},
				}},
				{ID: 1},
				{ID: 2},
			},
		})
		m := New(g.Default, clock, sink, source)

		source.EXPECT().
			Get(config.CheckPyro1Continuity).
			Return(config.BoolValue(false))
		source.EXPECT().
			Get(config.CheckApogee).
			Return(config.BoolValue(true))

		m.Execute()

		Expect(m.Current()).To(BeIdenticalTo(g.States[1]))
	})

	It("should fire the timeout exactly once, resetting the activation time", func() {
		g := mustBuild(&config.ConfigFile{
			DefaultState: 0,
			States: []config.State{
				{ID: 0, Timeout: &config.Timeout{
					Duration:   timing.NewSeconds(2),
					Transition: config.StateTransition{Kind: config.TransitionNormal, Target: 1},
				}},
				{ID: 1},
			},
		})
		m := New(g.Default, clock, sink, source)

		m.Execute()
		Expect(m.Current()).To(BeIdenticalTo(g.States[0]))

		clock.Advance(1999)
		m.Execute()
		Expect(m.Current()).To(BeIdenticalTo(g.States[0]))

		clock.Advance(1)
		m.Execute()
		Expect(m.Current()).To(BeIdenticalTo(g.States[1]))
		Expect(m.ActivatedAt()).To(BeNumerically("~", 2.0, 1e-6))
		Expect(m.TimeInState()).To(BeNumerically("==", 0))

		clock.Advance(5000)
		m.Execute()
		Expect(m.Current()).To(BeIdenticalTo(g.States[1]))
	})

	It("should fire a delayed command exactly once per activation", func() {
		g := mustBuild(&config.ConfigFile{
			DefaultState: 0,
			States: []config.State{
				{ID: 0, Commands: []config.Command{{
					Value: config.CommandBeacon.WithValue(config.BoolValue(true)),
					Delay: timing.NewSeconds(0.5),
				}}},
			},
		})
		m := New(g.Default, clock, sink, source)

		m.Execute()

		clock.Advance(499)
		m.Execute()

		sink.EXPECT().Set(config.CommandBeacon.WithValue(config.BoolValue(true)))

		clock.Advance(1)
		m.Execute()

		for i := 0; i < 500; i++ {
			clock.Advance(10)
			m.Execute()
		}
	})

	It("should fire all eligible commands in declaration order within one tick", func() {
		g := mustBuild(&config.ConfigFile{
			DefaultState: 0,
			States: []config.State{
				{ID: 0, Commands: []config.Command{
					{Value: config.CommandDataRate.WithValue(config.U16Value(16))},
					{Value: config.CommandBeacon.WithValue(config.BoolValue(true))},
				}},
			},
		})
		m := New(g.Default, clock, sink, source)

		gomock.InOrder(
			sink.EXPECT().Set(config.CommandDataRate.WithValue(config.U16Value(16))),
			sink.EXPECT().Set(config.CommandBeacon.WithValue(config.BoolValue(true))),
		)

		m.Execute()
	})

	It("should make commands eligible again when the state is re-entered", func() {
		g := mustBuild(&config.ConfigFile{
			DefaultState: 0,
			States: []config.State{
				{
					ID: 0,
					Checks: []config.Check{{
						Data:       config.ApogeeCheck(true),
						Transition: transitionTo(0),
					}},
					Commands: []config.Command{{
						Value: config.CommandBeacon.WithValue(config.BoolValue(true)),
					}},
				},
			},
		})
		m := New(g.Default, clock, sink, source)

		sink.EXPECT().
			Set(config.CommandBeacon.WithValue(config.BoolValue(true))).
			Times(2)
		source.EXPECT().
			Get(config.CheckApogee).
			Return(config.BoolValue(true)).
			Times(2)

		m.Execute()
		m.Execute()
	})

	It("should let a satisfied inert check mask later checks and the timeout", func() {
		g := mustBuild(&config.ConfigFile{
			DefaultState: 0,
			States: []config.State{
				{
					ID:     0,
					Checks: []config.Check{{Data: config.ApogeeCheck(true)}},
					Timeout: &config.Timeout{
						Duration:   timing.NewSeconds(1),
						Transition: config.StateTransition{Target: 1},
					},
				},
				{ID: 1},
			},
		})
		m := New(g.Default, clock, sink, source)

		source.EXPECT().Get(config.CheckApogee).Return(config.BoolValue(true))
		source.EXPECT().Get(config.CheckApogee).Return(config.BoolValue(false))

		clock.Advance(2000)
		m.Execute()
		Expect(m.Current()).To(BeIdenticalTo(g.States[0]))

		m.Execute()
		Expect(m.Current()).To(BeIdenticalTo(g.States[1]))
	})

	It("should panic when the source reports the wrong value shape", func() {
		g := mustBuild(&config.ConfigFile{
			DefaultState: 0,
			States: []config.State{
				{ID: 0, Checks: []config.Check{
					{Data: config.ApogeeCheck(true), Transition: transitionTo(0)},
				}},
			},
		})
		m := New(g.Default, clock, sink, source)

		source.EXPECT().Get(config.CheckApogee).Return(config.F32Value(1200))

		Expect(func() { m.Execute() }).To(Panic())
	})

	It("should report transitions and aborts through hooks", func() {
		g := mustBuild(&config.ConfigFile{
			DefaultState: 0,
			States: []config.State{
				{ID: 0, Checks: []config.Check{
					{Data: config.ApogeeCheck(true), Transition: abortTo(1)},
				}},
				{ID: 1, Checks: []config.Check{
					{Data: config.ApogeeCheck(true), Transition: transitionTo(0)},
				}},
			},
		})
		m := New(g.Default, clock, sink, source)

		hook := &recordingHook{}
		m.AcceptHook(hook)

		source.EXPECT().
			Get(config.CheckApogee).
			Return(config.BoolValue(true)).
			Times(2)

		m.Execute()
		clock.Advance(250)
		m.Execute()

		Expect(hook.ctxs).To(HaveLen(2))
		Expect(hook.ctxs[0].Pos).To(BeIdenticalTo(HookPosAbort))
		Expect(hook.ctxs[1].Pos).To(BeIdenticalTo(HookPosTransition))

		info := hook.ctxs[1].Item.(TransitionInfo)
		Expect(info.From).To(BeIdenticalTo(g.States[1]))
		Expect(info.To).To(BeIdenticalTo(g.States[0]))
		Expect(info.At).To(BeNumerically("~", 0.25, 1e-6))
	})
})
