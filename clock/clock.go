// Package clock supplies the monotonic logical time (block height) that
// demurrage is measured in.
package clock

import (
	"sync"
	"time"
)

// Clock returns the current tick. Successive calls never go backwards.
type Clock interface {
	Now() uint64
}

// Func adapts a plain function to Clock.
type Func func() uint64

// Now implements Clock.
func (f Func) Now() uint64 { return f() }

// Manual is a Clock advanced explicitly by the host, typically once per
// block. The zero value starts at tick 0.
type Manual struct {
	mu  sync.Mutex
	now uint64
}

// NewManual returns a Manual clock positioned at start.
func NewManual(start uint64) *Manual {
	return &Manual{now: start}
}

// Now implements Clock.
func (m *Manual) Now() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.now
}

// Set moves the clock to tick. Moving backwards is ignored.
func (m *Manual) Set(tick uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if tick > m.now {
		m.now = tick
	}
}

// Advance moves the clock forward by n ticks and returns the new tick.
func (m *Manual) Advance(n uint64) uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now += n
	return m.now
}

// Interval derives ticks from wall-clock time: one tick per period elapsed
// since genesis. Times before genesis map to tick 0.
type Interval struct {
	genesis time.Time
	period  time.Duration
	now     func() time.Time
}

// NewInterval returns an Interval clock. A non-positive period panics.
func NewInterval(genesis time.Time, period time.Duration) *Interval {
	if period <= 0 {
		panic("clock: interval period must be positive")
	}
	return &Interval{genesis: genesis, period: period, now: time.Now}
}

// WithNow replaces the wall-clock source.
func (c *Interval) WithNow(now func() time.Time) *Interval {
	c.now = now
	return c
}

// Now implements Clock.
func (c *Interval) Now() uint64 {
	elapsed := c.now().Sub(c.genesis)
	if elapsed <= 0 {
		return 0
	}
	return uint64(elapsed / c.period)
}
