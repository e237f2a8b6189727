package memline

import "testing"

func TestStore_SetThenGet(t *testing.T) {
	s := NewStore(NewManualClock(0))
	entry := NewEntry([]byte("hello"), 7, 3600)
	if err := s.Set(0, "foo", entry); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	hits := s.Get(0, []string{"foo"})
	if len(hits) != 1 {
		t.Fatalf("Get() returned %d hits, want 1", len(hits))
	}
	if string(hits[0].Entry.Data) != "hello" {
		t.Errorf("Data = %q, want %q", hits[0].Entry.Data, "hello")
	}
}

func TestStore_GetSkipsExpiredAndAbsent(t *testing.T) {
	s := NewStore(NewManualClock(0))
	_ = s.Set(0, "live", NewEntry([]byte("a"), 0, 100))
	_ = s.Set(0, "dead", NewEntry([]byte("b"), 0, 50))

	hits := s.Get(100, []string{"live", "dead", "missing"})
	if len(hits) != 0 {
		t.Fatalf("expected 0 hits at exptime boundary, got %d", len(hits))
	}

	hits = s.Get(99, []string{"live", "dead", "missing"})
	if len(hits) != 1 || hits[0].Key != "live" {
		t.Fatalf("expected only %q live at t=99, got %+v", "live", hits)
	}
}

func TestStore_AddOverExpiredSlotSucceeds(t *testing.T) {
	// Scenario 3 from spec.md §8.
	s := NewStore(NewManualClock(0))
	if err := s.Set(100, "k", NewEntry([]byte("A"), 0, 110)); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := s.Add(200, "k", NewEntry([]byte("B"), 0, 210)); err != nil {
		t.Fatalf("Add() over expired slot should succeed, got err = %v", err)
	}
	hits := s.Get(200, []string{"k"})
	if len(hits) != 1 || string(hits[0].Entry.Data) != "B" {
		t.Fatalf("Get() after Add over expired slot = %+v, want Data=B", hits)
	}
}

func TestStore_AddOverLiveSlotFails(t *testing.T) {
	s := NewStore(NewManualClock(0))
	_ = s.Set(0, "k", NewEntry([]byte("A"), 0, 3600))
	err := s.Add(0, "k", NewEntry([]byte("B"), 0, 3600))
	if !IsNotStored(err) {
		t.Fatalf("Add() over live slot: err = %v, want NotStored", err)
	}
}

func TestStore_ReplaceRequiresExisting(t *testing.T) {
	s := NewStore(NewManualClock(0))
	if err := s.Replace(0, "missing", NewEntry([]byte("x"), 0, 3600)); !IsNotStored(err) {
		t.Fatalf("Replace() on absent key: err = %v, want NotStored", err)
	}
	_ = s.Set(0, "k", NewEntry([]byte("A"), 0, 3600))
	if err := s.Replace(0, "k", NewEntry([]byte("B"), 0, 3600)); err != nil {
		t.Fatalf("Replace() on live key: err = %v, want nil", err)
	}
}

func TestStore_CasLaw(t *testing.T) {
	// "after gets k observes tag u, cas k ... u succeeds once; any
	// immediately repeated cas k ... u returns EXISTS." (spec.md §8)
	s := NewStore(NewManualClock(0))
	_ = s.Set(0, "foo", NewEntry([]byte("hello"), 7, 3600))

	hits := s.Get(0, []string{"foo"})
	u := hits[0].Entry.Unique

	if err := s.Cas(0, "foo", NewEntry([]byte("world"), 7, 3600), u); err != nil {
		t.Fatalf("first Cas() with observed tag: err = %v, want nil", err)
	}
	if err := s.Cas(0, "foo", NewEntry([]byte("XYZ"), 7, 3600), u); !IsExists(err) {
		t.Fatalf("repeated Cas() with stale tag: err = %v, want Exists", err)
	}
}

func TestStore_CasAgainstAbsentKeyIsNotFound(t *testing.T) {
	s := NewStore(NewManualClock(0))
	err := s.Cas(0, "missing", NewEntry([]byte("x"), 0, 3600), 1)
	if !IsNotFound(err) {
		t.Fatalf("Cas() on absent key: err = %v, want NotFound (not Exists)", err)
	}
}

func TestStore_CasAgainstExpiredKeyIsNotFound(t *testing.T) {
	s := NewStore(NewManualClock(0))
	_ = s.Set(0, "k", NewEntry([]byte("A"), 0, 50))
	err := s.Cas(100, "k", NewEntry([]byte("B"), 0, 3600), 1)
	if !IsNotFound(err) {
		t.Fatalf("Cas() on expired key: err = %v, want NotFound", err)
	}
}

func TestStore_AppendPreservesTag(t *testing.T) {
	// Scenario 6 from spec.md §8.
	s := NewStore(NewManualClock(0))
	_ = s.Set(0, "k", NewEntry([]byte("foo"), 0, 3600))
	u := s.Get(0, []string{"k"})[0].Entry.Unique

	if err := s.Append(0, "k", NewEntry([]byte("bar"), 0, 0)); err != nil {
		t.Fatalf("Append() error = %v", err)
	}
	hit := s.Get(0, []string{"k"})[0]
	if string(hit.Entry.Data) != "foobar" {
		t.Errorf("Data = %q, want %q", hit.Entry.Data, "foobar")
	}
	if hit.Entry.Unique != u {
		t.Errorf("Unique changed across append: got %d, want %d", hit.Entry.Unique, u)
	}
}

func TestStore_AppendRequiresExisting(t *testing.T) {
	s := NewStore(NewManualClock(0))
	if err := s.Append(0, "missing", NewEntry([]byte("x"), 0, 0)); !IsNotStored(err) {
		t.Fatalf("Append() on absent key: err = %v, want NotStored", err)
	}
}

func TestStore_DeleteRemovesLiveEntryOnly(t *testing.T) {
	s := NewStore(NewManualClock(0))
	if err := s.Delete(0, "missing"); !IsNotFound(err) {
		t.Fatalf("Delete() on absent key: err = %v, want NotFound", err)
	}
	_ = s.Set(0, "k", NewEntry([]byte("A"), 0, 3600))
	if err := s.Delete(0, "k"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if len(s.Get(0, []string{"k"})) != 0 {
		t.Fatal("key still retrievable after Delete")
	}
}

func TestStore_TouchUpdatesExptimeOnly(t *testing.T) {
	s := NewStore(NewManualClock(0))
	_ = s.Set(0, "k", NewEntry([]byte("A"), 0, 10))
	if err := s.Touch(0, "k", 1000); err != nil {
		t.Fatalf("Touch() error = %v", err)
	}
	hits := s.Get(500, []string{"k"})
	if len(hits) != 1 || string(hits[0].Entry.Data) != "A" {
		t.Fatalf("key not retrievable past original exptime after Touch: %+v", hits)
	}
}

func TestStore_GatTouchesUnderLock(t *testing.T) {
	s := NewStore(NewManualClock(0))
	_ = s.Set(0, "k", NewEntry([]byte("A"), 0, 10))
	hits := s.Gat(0, []string{"k"}, 1000)
	if len(hits) != 1 {
		t.Fatalf("Gat() returned %d hits, want 1", len(hits))
	}
	if len(s.Get(500, []string{"k"})) != 1 {
		t.Fatal("Gat() did not persist the new exptime")
	}
}

func TestStore_IncrAndDecr(t *testing.T) {
	s := NewStore(NewManualClock(0))
	_ = s.Set(0, "c", NewEntry([]byte("18446744073709551610"), 0, 3600))
	text, err := s.Incr(0, "c", 10)
	if err != nil {
		t.Fatalf("Incr() error = %v", err)
	}
	if text != "4" {
		t.Errorf("Incr() = %q, want %q", text, "4")
	}

	_ = s.Set(0, "d", NewEntry([]byte("3"), 0, 3600))
	text, err = s.Decr(0, "d", 10)
	if err != nil {
		t.Fatalf("Decr() error = %v", err)
	}
	if text != "0" {
		t.Errorf("Decr() = %q, want %q", text, "0")
	}
}

func TestStore_IncrOnMissingKeyIsNotFound(t *testing.T) {
	s := NewStore(NewManualClock(0))
	if _, err := s.Incr(0, "missing", 1); !IsNotFound(err) {
		t.Fatalf("Incr() on absent key: err = %v, want NotFound", err)
	}
}

func TestStore_IncrNonNumericLeavesDataIntact(t *testing.T) {
	// Scenario 7 from spec.md §8.
	s := NewStore(NewManualClock(0))
	_ = s.Set(0, "k", NewEntry([]byte("abc"), 0, 3600))
	if _, err := s.Incr(0, "k", 1); !IsNotANumber(err) {
		t.Fatalf("Incr() on non-numeric body: err = %v, want NotANumber", err)
	}
	hits := s.Get(0, []string{"k"})
	if string(hits[0].Entry.Data) != "abc" {
		t.Errorf("Data after failed Incr = %q, want %q", hits[0].Entry.Data, "abc")
	}
}

func TestStore_SetIsIdempotentModuloUnique(t *testing.T) {
	s := NewStore(NewManualClock(0))
	entry := NewEntry([]byte("same"), 3, 3600)
	_ = s.Set(0, "k", entry)
	first := s.Get(0, []string{"k"})[0].Entry

	entry2 := NewEntry([]byte("same"), 3, 3600)
	_ = s.Set(0, "k", entry2)
	second := s.Get(0, []string{"k"})[0].Entry

	if first.Flags != second.Flags || string(first.Data) != string(second.Data) || first.Exptime != second.Exptime {
		t.Fatalf("two identical Set calls left different state: %+v vs %+v", first, second)
	}
}

func TestStore_EvictExpired(t *testing.T) {
	s := NewStore(NewManualClock(0))
	_ = s.Set(0, "live", NewEntry([]byte("a"), 0, 1000))
	_ = s.Set(0, "dead", NewEntry([]byte("b"), 0, 10))

	removed := s.EvictExpired(100)
	if removed != 1 {
		t.Fatalf("EvictExpired() removed %d entries, want 1", removed)
	}
	if s.Len() != 1 {
		t.Fatalf("Len() after EvictExpired = %d, want 1", s.Len())
	}
}
