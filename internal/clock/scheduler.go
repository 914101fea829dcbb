// Package clock abstracts timer scheduling so interaction logic can run on a
// real event loop in production and on virtual time in tests.
package clock

import "time"

// Handle identifies a scheduled callback. The zero Handle is never issued.
type Handle uint64

// Scheduler registers delayed and periodic callbacks.
//
// Implementations run callbacks one at a time. A callback whose handle was
// cancelled before it ran never runs.
type Scheduler interface {
	// After runs fn once, d from now.
	After(d time.Duration, fn func()) Handle
	// Every runs fn every d until the handle is cancelled.
	Every(d time.Duration, fn func()) Handle
	// Cancel stops h. Cancelling an unknown, fired or zero handle is a no-op.
	Cancel(h Handle)
	// Now returns the scheduler's notion of the current time.
	Now() time.Time
}
