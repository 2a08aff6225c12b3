// internal/quiz/timer.go
//
// Session timing.
// A Stopwatch tracks elapsed wall time for the whole session; the per-round
// countdown is a cancellable handle owned by the engine. Both run against the
// Clock interface so tests can drive time synchronously.

package quiz

import "time"

// TimerHandle is a cancellable scheduled callback. Stop reports whether the
// call prevented the callback from firing.
type TimerHandle interface {
	Stop() bool
}

// Clock abstracts wall time and callback scheduling.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) TimerHandle
}

// systemClock is the production Clock backed by the time package.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) AfterFunc(d time.Duration, f func()) TimerHandle {
	return time.AfterFunc(d, f)
}

// SystemClock returns the real-time Clock used outside of tests.
func SystemClock() Clock { return systemClock{} }

// Stopwatch measures elapsed time between Start and Stop. Purely
// informational; it never triggers callbacks.
type Stopwatch struct {
	clock   Clock
	started time.Time
	stopped time.Time
	running bool
}

// NewStopwatch returns a stopped stopwatch on the given clock.
func NewStopwatch(clock Clock) *Stopwatch {
	return &Stopwatch{clock: clock}
}

// Start (re)starts the stopwatch from zero.
func (s *Stopwatch) Start() {
	s.started = s.clock.Now()
	s.running = true
}

// Stop freezes the elapsed reading. Stopping a stopped watch is a no-op.
func (s *Stopwatch) Stop() {
	if s.running {
		s.stopped = s.clock.Now()
		s.running = false
	}
}

// Elapsed returns time since Start, or the frozen reading after Stop.
// Zero if the stopwatch never started.
func (s *Stopwatch) Elapsed() time.Duration {
	if s.started.IsZero() {
		return 0
	}
	if s.running {
		return s.clock.Now().Sub(s.started)
	}
	return s.stopped.Sub(s.started)
}
