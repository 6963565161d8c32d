package model

import "time"

// UndefinedTime is the sentinel instant used when a sample carries no time.
// It is the zero time.Time and never equal to a real measurement instant.
var UndefinedTime = time.Time{}

// IsDefined reports whether t is a real instant.
func IsDefined(t time.Time) bool { return !t.IsZero() }

// Clock returns the current instant. Dispatchers and producers take a Clock so
// tests can drive time explicitly.
type Clock func() time.Time

// SystemClock is the wall clock.
func SystemClock() time.Time { return time.Now() }

// FixedClock returns a Clock that always reports t.
func FixedClock(t time.Time) Clock {
	return func() time.Time { return t }
}

// AbsDuration returns the absolute difference between two instants.
func AbsDuration(a, b time.Time) time.Duration {
	d := a.Sub(b)
	if d < 0 {
		return -d
	}
	return d
}
