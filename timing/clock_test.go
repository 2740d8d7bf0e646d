package timing

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("TickRate", func() {
	It("should get period", func() {
		r := OneKHz
		Expect(r.Period()).To(BeNumerically("~", 0.001, 1e-9))
	})

	It("should convert ticks to seconds", func() {
		r := OneKHz
		Expect(r.SecondsOf(2500)).To(BeNumerically("~", 2.5, 1e-6))
	})

	It("should convert seconds to ticks", func() {
		r := OneKHz
		Expect(r.TicksIn(NewSeconds(2.5))).To(Equal(uint64(2500)))
	})

	It("should panic on zero rate", func() {
		Expect(func() { TickRate(0).Period() }).To(Panic())
	})
})

var _ = Describe("TickClock", func() {
	It("should start at time 0", func() {
		c := NewTickClock(OneKHz)
		Expect(c.CurrentTime()).To(BeNumerically("==", 0))
	})

	It("should advance one tick at a time", func() {
		c := NewTickClock(OneKHz)

		c.Tick()
		c.Tick()

		Expect(c.Ticks()).To(Equal(uint64(2)))
		Expect(c.CurrentTime()).To(BeNumerically("~", 0.002, 1e-9))
	})

	It("should advance many ticks at once", func() {
		c := NewTickClock(OneMHz)

		c.Advance(1500000)

		Expect(c.CurrentTime()).To(BeNumerically("~", 1.5, 1e-6))
	})

	It("should never move backwards", func() {
		c := NewTickClock(OneHz)
		prev := c.CurrentTime()

		for i := 0; i < 100; i++ {
			c.Tick()
			Expect(c.CurrentTime()).To(BeNumerically(">=", prev))
			prev = c.CurrentTime()
		}
	})
})

var _ = Describe("Seconds", func() {
	It("should reject NaN", func() {
		nan := float32(0)
		Expect(func() { NewSeconds(nan / nan) }).To(Panic())
	})

	It("should be totally ordered", func() {
		Expect(NewSeconds(1.5).AtLeast(NewSeconds(1.5))).To(BeTrue())
		Expect(NewSeconds(1.5).AtLeast(NewSeconds(1.6))).To(BeFalse())
		Expect(NewSeconds(2.0).Sub(NewSeconds(0.5))).To(BeNumerically("~", 1.5, 1e-6))
	})

	It("should format with a unit suffix", func() {
		Expect(NewSeconds(2.5).String()).To(Equal("2.5s"))
	})
})
