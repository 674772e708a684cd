package mathutil

import "time"

// AbsDuration returns the absolute value of a duration
func AbsDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// EarliestTime returns the earlier of two instants
func EarliestTime(a, b time.Time) time.Time {
	if b.Before(a) {
		return b
	}
	return a
}
