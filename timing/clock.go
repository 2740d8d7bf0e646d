package timing

import (
	"log"
	"time"
)

// TickRate defines the number of ticks in one second.
type TickRate uint32

// Defines common tick rates.
const (
	OneHz  TickRate = 1
	OneKHz TickRate = 1000
	OneMHz TickRate = 1000000
)

// Period returns the time between two consecutive ticks.
func (r TickRate) Period() Seconds {
	if r == 0 {
		log.Panic("tick rate cannot be 0")
	}

	return Seconds(1.0 / float32(r))
}

// SecondsOf converts a tick count to the time passed since tick 0.
func (r TickRate) SecondsOf(ticks uint64) Seconds {
	if r == 0 {
		log.Panic("tick rate cannot be 0")
	}

	return Seconds(float64(ticks) / float64(r))
}

// TicksIn returns the number of whole ticks that fit in the given duration.
func (r TickRate) TicksIn(s Seconds) uint64 {
	if s < 0 {
		log.Panic("duration cannot be negative")
	}

	return uint64(float64(s) * float64(r))
}

// A TickClock is a monotonic tick counter running at a fixed rate. It only
// moves when Advance or Tick is called, which makes every run that uses it
// fully deterministic. A single goroutine owns the counter; CurrentTime
// reads from the same goroutine are always consistent.
type TickClock struct {
	rate  TickRate
	ticks uint64
}

// NewTickClock creates a TickClock running at the given rate, at tick 0.
func NewTickClock(rate TickRate) *TickClock {
	if rate == 0 {
		log.Panic("tick rate cannot be 0")
	}

	return &TickClock{rate: rate}
}

// Tick advances the clock by one tick.
func (c *TickClock) Tick() {
	c.ticks++
}

// Advance advances the clock by n ticks.
func (c *TickClock) Advance(n uint64) {
	c.ticks += n
}

// Ticks returns the number of ticks since the clock was created.
func (c *TickClock) Ticks() uint64 {
	return c.ticks
}

// Rate returns the fixed tick rate of the clock.
func (c *TickClock) Rate() TickRate {
	return c.rate
}

// CurrentTime returns the time represented by the current tick count.
func (c *TickClock) CurrentTime() Seconds {
	return c.rate.SecondsOf(c.ticks)
}

// A WallClock is a TimeTeller backed by the host monotonic clock. Time 0 is
// the moment the clock was created.
type WallClock struct {
	start time.Time
}

// NewWallClock creates a WallClock starting now.
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// CurrentTime returns the time elapsed since the clock was created.
func (c *WallClock) CurrentTime() Seconds {
	return Seconds(time.Since(c.start).Seconds())
}
