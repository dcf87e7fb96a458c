// Package schedule abstracts delayed callbacks so the reconciliation state
// machine can run on real timers in production and on a virtual clock in tests.
package schedule

import "time"

// Timer is a pending callback
type Timer interface {
	// Stop cancels the callback. It reports whether the call prevented it from running.
	Stop() bool
}

// Scheduler runs fn once after d has elapsed. Implementations run callbacks
// one at a time, never concurrently with each other.
type Scheduler interface {
	After(d time.Duration, fn func()) Timer
}
