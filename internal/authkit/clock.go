package authkit

import "time"

// Clock provides the current time. Handlers and token helpers take a Clock so
// expiry behavior is testable.
type Clock interface {
	Now() time.Time
}

// SystemClock is the wall-clock implementation of Clock.
type SystemClock struct{}

// NewSystemClock returns a Clock backed by time.Now.
func NewSystemClock() SystemClock {
	return SystemClock{}
}

// Now returns the current UTC timestamp.
func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}

func orSystemClock(clock Clock) Clock {
	if clock == nil {
		return SystemClock{}
	}
	return clock
}
