// Package clock lets tests drive wall time for the audio scheduler,
// account timestamps and the system report.
package clock

import "time"

// Clock is the source of wall time
type Clock interface {
	Now() time.Time
	Since(t time.Time) time.Duration
}

// System reads the host clock, in UTC
type System struct{}

// New returns the host clock
func New() System {
	return System{}
}

func (System) Now() time.Time {
	return time.Now().UTC()
}

func (System) Since(t time.Time) time.Duration {
	return time.Since(t)
}
