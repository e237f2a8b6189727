// clock.go: the time capability every Store operation is parameterized on.
//
// Grounded on agilira/balios's TimeProvider (interfaces.go) and its
// systemTimeProvider (config.go), which wraps github.com/agilira/go-timecache
// for a cached, allocation-free clock read. memline's Clock reports whole
// seconds (spec.md's current_unixtime() contract) rather than nanoseconds,
// since the wire protocol never needs finer resolution.
package memline

import (
	"sync/atomic"

	"github.com/agilira/go-timecache"
)

// Clock reports the current time as whole Unix seconds. It is the sole
// external time capability Store and the protocol engine consume; per
// spec.md §6, an alternative deterministic clock must be substitutable
// without touching either.
type Clock interface {
	Now() int64
}

// systemClock is the production Clock, backed by go-timecache's
// background-refreshed time cache instead of a time.Now() syscall per call.
type systemClock struct{}

// NewSystemClock returns the production Clock used by cmd/memline-server.
func NewSystemClock() Clock {
	return systemClock{}
}

func (systemClock) Now() int64 {
	return timecache.CachedTimeNano() / int64(1e9)
}

// ManualClock is a hand-steppable Clock for deterministic tests: scenario 3
// in spec.md §8 ("At clock=100 send ...; at clock=200 send ...") is exactly
// this pattern.
type ManualClock struct {
	seconds int64
}

// NewManualClock returns a ManualClock starting at the given time.
func NewManualClock(start int64) *ManualClock {
	return &ManualClock{seconds: start}
}

// Now implements Clock.
func (c *ManualClock) Now() int64 {
	return atomic.LoadInt64(&c.seconds)
}

// Set moves the clock to an arbitrary absolute time.
func (c *ManualClock) Set(seconds int64) {
	atomic.StoreInt64(&c.seconds, seconds)
}

// Advance moves the clock forward by delta seconds (delta may be negative
// only if the caller really means to rewind a test clock).
func (c *ManualClock) Advance(delta int64) {
	atomic.AddInt64(&c.seconds, delta)
}
