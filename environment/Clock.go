package environment

import "time"

// Clock supplies simulated time to an environment. Environments call
// Now exactly once per Reset and once per Step, so a Clock may advance
// its time on each call. Returned times must never decrease.
type Clock interface {
	Now() time.Duration
}

// StepClock advances by a fixed period on every call to Now, tying
// simulated time to the number of environment transitions. The first
// call returns 0.
type StepClock struct {
	period time.Duration
	calls  int64
}

// NewStepClock returns a StepClock advancing by period per call
func NewStepClock(period time.Duration) *StepClock {
	return &StepClock{period: period}
}

// Now returns the current simulated time and advances the clock
func (s *StepClock) Now() time.Duration {
	now := time.Duration(s.calls) * s.period
	s.calls++
	return now
}

// ManualClock only moves when told to
type ManualClock struct {
	now time.Duration
}

// NewManualClock returns a ManualClock starting at start
func NewManualClock(start time.Duration) *ManualClock {
	return &ManualClock{now: start}
}

// Now returns the current time
func (m *ManualClock) Now() time.Duration {
	return m.now
}

// Advance moves the clock forward by d. Negative durations are
// ignored.
func (m *ManualClock) Advance(d time.Duration) {
	if d > 0 {
		m.now += d
	}
}

// Set moves the clock to t if t is not before the current time
func (m *ManualClock) Set(t time.Duration) {
	if t > m.now {
		m.now = t
	}
}

// WallClock reports the real time elapsed since it was created
type WallClock struct {
	start time.Time
}

// NewWallClock returns a WallClock started now
func NewWallClock() *WallClock {
	return &WallClock{start: time.Now()}
}

// Now returns the time elapsed since the clock was created
func (w *WallClock) Now() time.Duration {
	return time.Since(w.start)
}
