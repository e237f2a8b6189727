// store.go: the cache state machine.
//
// Grounded on agilira/balios's cache.go for the shape of the operations
// (Get/Set/Delete/Has) and its Config/Logger/MetricsCollector wiring, but the
// concurrency strategy is deliberately not the teacher's lock-free
// SeqLock-over-open-addressing scheme: spec.md §5 mandates exactly one
// mutex-guarded map with I/O kept outside the critical section, and §9
// explicitly permits (without requiring) anything beyond that. A plain Go
// map behind a sync.Mutex is the simplest implementation meeting that
// contract; see DESIGN.md for the full reasoning.
package memline

import "sync"

// Store is a mutex-guarded mapping from key to Entry, implementing every
// operation spec.md §4.2 names. All operations take an explicit now
// (absolute seconds, sampled once per command by the caller) rather than
// reading a clock themselves, so a single command observes one consistent
// notion of "now" across its find-then-mutate steps.
type Store struct {
	mu      sync.Mutex
	entries map[string]Entry

	clock   Clock
	metrics MetricsCollector
	logger  Logger
}

// NewStore constructs an empty Store. clock is retained only so callers
// (typically the protocol engine and tests) can ask the Store what time it
// considers authoritative; Store methods are always driven by the now
// argument the caller supplies.
func NewStore(clock Clock) *Store {
	return &Store{
		entries: make(map[string]Entry),
		clock:   clock,
		metrics: NoOpMetricsCollector{},
		logger:  NoOpLogger{},
	}
}

// SetMetricsCollector installs a MetricsCollector. Passing nil restores the
// no-op default.
func (s *Store) SetMetricsCollector(m MetricsCollector) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m == nil {
		m = NoOpMetricsCollector{}
	}
	s.metrics = m
}

// SetLogger installs a Logger. Passing nil restores the no-op default.
func (s *Store) SetLogger(l Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l == nil {
		l = NoOpLogger{}
	}
	s.logger = l
}

// Clock returns the Store's associated Clock.
func (s *Store) Clock() Clock {
	return s.clock
}

// find returns the live entry for key, or ok=false if the key is absent or
// its Exptime has passed. It never mutates s.entries; an expired slot stays
// in the map until Set or Add overwrites it or EvictExpired sweeps it, per
// spec.md §4.2's "Lazy eviction" subsection.
func (s *Store) find(now int64, key string) (Entry, bool) {
	e, ok := s.entries[key]
	if !ok {
		return Entry{}, false
	}
	if now >= e.Exptime {
		return Entry{}, false
	}
	return e, true
}

// Get returns the live entries for keys, in input order, skipping any key
// that is absent or expired.
func (s *Store) Get(now int64, keys []string) []KeyedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]KeyedEntry, 0, len(keys))
	for _, k := range keys {
		if e, ok := s.find(now, k); ok {
			s.metrics.RecordGet(0, true)
			out = append(out, KeyedEntry{Key: k, Entry: e})
		} else {
			s.metrics.RecordGet(0, false)
		}
	}
	return out
}

// Gat is Get, but every hit's Exptime is updated to newExptime before it is
// returned (spec.md §4.2: "touch is performed inside the critical section").
func (s *Store) Gat(now int64, keys []string, newExptime int64) []KeyedEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]KeyedEntry, 0, len(keys))
	for _, k := range keys {
		e, ok := s.find(now, k)
		if !ok {
			s.metrics.RecordGet(0, false)
			continue
		}
		e.touch(newExptime)
		s.entries[k] = e
		s.metrics.RecordGet(0, true)
		out = append(out, KeyedEntry{Key: k, Entry: e})
	}
	return out
}

// KeyedEntry pairs a key with the Entry retrieval found for it, preserving
// input order for get/gets/gat/gats replies.
type KeyedEntry struct {
	Key   string
	Entry Entry
}

// Set installs entry under key unconditionally.
func (s *Store) Set(now int64, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = entry
	s.metrics.RecordSet(0, true)
	return nil
}

// Add installs entry under key only if no live entry currently occupies
// that slot. An expired slot counts as absent, so Add silently overwrites
// it — spec.md §4.2 calls this out explicitly.
func (s *Store) Add(now int64, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.find(now, key); ok {
		s.metrics.RecordSet(0, false)
		return newErrNotStored(key, "add")
	}
	s.entries[key] = entry
	s.metrics.RecordSet(0, true)
	return nil
}

// Replace installs entry under key only if a live entry already occupies
// that slot.
func (s *Store) Replace(now int64, key string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.find(now, key); !ok {
		s.metrics.RecordSet(0, false)
		return newErrNotStored(key, "replace")
	}
	s.entries[key] = entry
	s.metrics.RecordSet(0, true)
	return nil
}

// Cas installs entry under key only if a live entry exists and its Unique
// equals unique. An expired slot returns ErrCodeNotFound, not ErrCodeExists
// — spec.md §4.2 draws this distinction deliberately.
func (s *Store) Cas(now int64, key string, entry Entry, unique uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.find(now, key)
	if !ok {
		s.metrics.RecordSet(0, false)
		return newErrNotFound(key)
	}
	if existing.Unique != unique {
		s.metrics.RecordCasMismatch()
		return newErrExists(key, unique, existing.Unique)
	}
	s.entries[key] = entry
	s.metrics.RecordSet(0, true)
	return nil
}

// Delete removes key's live entry.
func (s *Store) Delete(now int64, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.find(now, key); !ok {
		s.metrics.RecordDelete(0, false)
		return newErrNotFound(key)
	}
	delete(s.entries, key)
	s.metrics.RecordDelete(0, true)
	return nil
}

// Touch updates key's Exptime without disturbing its data or Unique.
func (s *Store) Touch(now int64, key string, newExptime int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.find(now, key)
	if !ok {
		return newErrNotFound(key)
	}
	e.touch(newExptime)
	s.entries[key] = e
	return nil
}

// Incr adds step to key's numeric body and returns the new decimal text.
func (s *Store) Incr(now int64, key string, step uint64) (string, error) {
	return s.arithmetic(now, key, step, (*Entry).incr)
}

// Decr subtracts step from key's numeric body, clamping at zero, and
// returns the new decimal text.
func (s *Store) Decr(now int64, key string, step uint64) (string, error) {
	return s.arithmetic(now, key, step, (*Entry).decr)
}

func (s *Store) arithmetic(now int64, key string, step uint64, op func(*Entry, uint64) (string, error)) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.find(now, key)
	if !ok {
		return "", newErrNotFound(key)
	}
	text, err := op(&e, step)
	if err != nil {
		return "", err
	}
	s.entries[key] = e
	return text, nil
}

// Append concatenates entry.Data onto the end of key's existing data. The
// installed entry's Flags and Exptime are inherited from the existing
// record; entry's own Flags/Exptime are ignored for storage purposes, per
// spec.md §4.2 — only entry.Data is used.
func (s *Store) Append(now int64, key string, entry Entry) error {
	return s.concatenate(now, key, entry, "append", (*Entry).append)
}

// Prepend concatenates entry.Data onto the front of key's existing data.
func (s *Store) Prepend(now int64, key string, entry Entry) error {
	return s.concatenate(now, key, entry, "prepend", (*Entry).prepend)
}

func (s *Store) concatenate(now int64, key string, entry Entry, op string, mutate func(*Entry, []byte)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.find(now, key)
	if !ok {
		s.metrics.RecordSet(0, false)
		return newErrNotStored(key, op)
	}
	mutate(&existing, entry.Data)
	s.entries[key] = existing
	s.metrics.RecordSet(0, true)
	return nil
}

// EvictExpired removes every entry whose Exptime has passed as of now. It
// is an optional compaction sweep — spec.md §4.2 notes expiry is exclusively
// lazy and a sweep is never required for correctness — so nothing in
// memline calls this on a schedule; it exists for an operator or test that
// wants to bound map growth explicitly.
func (s *Store) EvictExpired(now int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for k, e := range s.entries {
		if now >= e.Exptime {
			delete(s.entries, k)
			removed++
			s.metrics.RecordExpire()
		}
	}
	return removed
}

// Len returns the number of entries currently stored, live or expired.
// Intended for tests and diagnostics, not part of the wire protocol.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
