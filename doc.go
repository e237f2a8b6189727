// Package memline implements the storage core of a memcached-ASCII-compatible
// cache server: the Entry and Store types that back every retrieval,
// mutation, arithmetic, and compare-and-swap command the wire protocol in
// package protocol understands.
//
// # Overview
//
// memline is built around three cooperating pieces:
//
//   - Entry: an individual stored record (key, flags, absolute expiration,
//     payload, and a strictly increasing version tag used for CAS).
//   - Store: a mutex-guarded map of Entry values with the typed operations
//     (Get, Set, Add, Replace, Cas, Append, Prepend, Incr, Decr, Delete,
//     Touch, Gat) a memcached client expects, plus lazy expiry.
//   - Clock: the single "current time in whole seconds" capability every
//     Store operation is parameterized on, so tests can drive time by hand.
//
// The wire protocol itself — framing, command parsing, and the TCP session
// loop — lives in the sibling protocol and server packages; memline only
// knows about keys, bytes, flags, and expiration, never about line endings
// or sockets.
//
// # Quick start
//
//	store := memline.NewStore(memline.NewSystemClock())
//	now := store.Clock().Now()
//	store.Set(now, "greeting", memline.NewEntry([]byte("hello"), 0, now+3600))
//	entries := store.Get(now, []string{"greeting"})
//
// # Errors
//
// Every failed operation returns a *go-errors error carrying one of the
// ErrCode* constants in errors.go (ErrCodeNotFound, ErrCodeExists,
// ErrCodeNotStored, ErrCodeNotANumber, ...). Callers that only care whether
// an operation succeeded can ignore the error; callers translating to the
// wire protocol (package protocol) switch on the code.
package memline

const (
	// Version identifies the memline module.
	Version = "v0.1.0-dev"

	// DefaultListenAddr is the address cmd/memline-server binds when the
	// operator does not supply --addr.
	DefaultListenAddr = ":11311"

	// RelativeExptimeThreshold is the boundary (in seconds) at or below which
	// a wire exptime value is interpreted as relative to "now" rather than
	// as an absolute Unix timestamp. 2592000 is 30 days, matching the
	// classic memcached ASCII protocol.
	RelativeExptimeThreshold = 30 * 24 * 60 * 60
)
