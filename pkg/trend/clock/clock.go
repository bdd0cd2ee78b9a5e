// Package clock supplies the arrival-time axis for delay samples.
//
// PacketTiming.ArrivalTimeMs is a plain float in milliseconds. An Axis pins
// an origin on a Clock and converts later readings onto that scale, so the
// same producer code runs against the system clock in tools and against a
// Manual clock in tests.
package clock

import "time"

// Clock is a source of monotonic time.
type Clock interface {
	// Now returns the current time. Successive calls must not go backwards.
	Now() time.Time
}

// System reads time.Now, which carries a monotonic reading.
type System struct{}

// Now returns the current system time.
func (System) Now() time.Time {
	return time.Now()
}

// Manual is a Clock that only moves when told to. It is not safe for
// concurrent use.
type Manual struct {
	now time.Time
}

// NewManual returns a Manual clock reading start, or a fixed epoch if start
// is zero.
func NewManual(start time.Time) *Manual {
	if start.IsZero() {
		start = time.Unix(1000000000, 0)
	}
	return &Manual{now: start}
}

// Now returns the clock's current reading.
func (m *Manual) Now() time.Time {
	return m.now
}

// Advance moves the clock forward by d. It panics if d is negative.
func (m *Manual) Advance(d time.Duration) {
	if d < 0 {
		panic("clock: Manual.Advance with negative duration")
	}
	m.now = m.now.Add(d)
}

// Set jumps the clock to t. It panics if t is before the current reading.
func (m *Manual) Set(t time.Time) {
	if t.Before(m.now) {
		panic("clock: Manual.Set would move time backwards")
	}
	m.now = t
}

// Axis maps readings of a Clock to milliseconds since a fixed origin.
type Axis struct {
	clock  Clock
	origin time.Time
}

// NewAxis starts an axis at c's current reading. A nil c uses System.
func NewAxis(c Clock) *Axis {
	if c == nil {
		c = System{}
	}
	return &Axis{clock: c, origin: c.Now()}
}

// Origin returns the reading that maps to 0ms.
func (a *Axis) Origin() time.Time { return a.origin }

// Now reads the clock and returns the reading with its position on the axis.
func (a *Axis) Now() (time.Time, float64) {
	t := a.clock.Now()
	return t, a.Ms(t)
}

// NowMs returns the clock's current position on the axis in milliseconds.
func (a *Axis) NowMs() float64 {
	return a.Ms(a.clock.Now())
}

// Ms converts t to fractional milliseconds since the origin.
func (a *Axis) Ms(t time.Time) float64 {
	return float64(t.Sub(a.origin)) / float64(time.Millisecond)
}

// Elapsed returns the time passed on the clock since the origin.
func (a *Axis) Elapsed() time.Duration {
	return a.clock.Now().Sub(a.origin)
}
