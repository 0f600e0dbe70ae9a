package animation

import "time"

// Clock provides time for animations and scheduled callbacks. The default
// implementation uses system time. Tests inject a fake clock via SetClock
// so transitions advance deterministically.
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// SystemClock is the wall-clock time source.
var SystemClock Clock = realClock{}

// clock is the package-level time source, replaceable for testing.
var clock = SystemClock

// SetClock replaces the animation clock. Returns the previous clock
// so callers can restore it during cleanup. Passing nil restores the
// system clock.
func SetClock(c Clock) Clock {
	prev := clock
	if c == nil {
		c = SystemClock
	}
	clock = c
	return prev
}

// Now returns the current time from the active clock.
func Now() time.Time { return clock.Now() }

// Since returns the time elapsed on the active clock since t.
func Since(t time.Time) time.Duration { return clock.Now().Sub(t) }
