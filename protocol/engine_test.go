package protocol

import (
	"bytes"
	"strings"
	"testing"

	"github.com/agilira/memline"
)

// newTestEngine builds an Engine whose input is the concatenation of every
// command/data line in input, and returns it along with the buffer its
// replies are written to. Commands are typically newline-terminated
// strings passed one at a time, joined here into one stream the way a
// real connection would deliver them.
func newTestEngine(t *testing.T, clock *memline.ManualClock, input ...string) (*Engine, *bytes.Buffer) {
	t.Helper()
	store := memline.NewStore(clock)
	in := bytes.NewBufferString(strings.Join(input, ""))
	out := &bytes.Buffer{}
	framer := NewFramer(in, out)
	return NewEngine(store, clock, framer, nil), out
}

func TestEngine_SetGetRoundTrip(t *testing.T) {
	// Scenario 1 from spec.md §8.
	clock := memline.NewManualClock(0)
	e, out := newTestEngine(t, clock, "set foo 7 3600 5\n", "hello\n", "get foo\n")

	if err := e.HandleOne(); err != nil {
		t.Fatalf("set HandleOne() error = %v", err)
	}
	if err := e.HandleOne(); err != nil {
		t.Fatalf("get HandleOne() error = %v", err)
	}

	want := "STORED\nVALUE foo 7 5\nhello\nEND\n"
	if got := out.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestEngine_CasCollision(t *testing.T) {
	// Scenario 2 from spec.md §8.
	clock := memline.NewManualClock(0)
	e, out := newTestEngine(t, clock,
		"set foo 7 3600 5\n", "hello\n",
		"gets foo\n",
		"set foo 7 3600 5\n", "world\n",
	)

	for i := 0; i < 3; i++ {
		if err := e.HandleOne(); err != nil {
			t.Fatalf("HandleOne() #%d error = %v", i, err)
		}
	}

	lines := strings.Split(out.String(), "\n")
	// lines: STORED / VALUE foo 7 5 <u> / hello / END / STORED / ""
	if lines[0] != "STORED" {
		t.Fatalf("first reply = %q, want STORED", lines[0])
	}
	valueHeader := strings.Fields(lines[1])
	if len(valueHeader) != 5 || valueHeader[0] != "VALUE" {
		t.Fatalf("gets header = %q, want 5 fields starting with VALUE", lines[1])
	}
	unique := valueHeader[4]

	casIn := bytes.NewBufferString("cas foo 7 3600 3 " + unique + "\n" + "XYZ\n")
	casOut := &bytes.Buffer{}
	e2 := NewEngine(e.store, clock, NewFramer(casIn, casOut), nil)
	if err := e2.HandleOne(); err != nil {
		t.Fatalf("cas HandleOne() error = %v", err)
	}
	if got := casOut.String(); got != "EXISTS\n" {
		t.Fatalf("cas reply = %q, want %q", got, "EXISTS\n")
	}
}

func TestEngine_AddOverExpired(t *testing.T) {
	// Scenario 3 from spec.md §8.
	clock := memline.NewManualClock(100)
	e, out := newTestEngine(t, clock, "set k 0 10 1\n", "A\n")
	if err := e.HandleOne(); err != nil {
		t.Fatalf("set HandleOne() error = %v", err)
	}
	if got := out.String(); got != "STORED\n" {
		t.Fatalf("initial set reply = %q, want %q", got, "STORED\n")
	}

	clock.Set(200)
	addIn := bytes.NewBufferString("add k 0 10 1\n" + "B\n" + "get k\n")
	addOut := &bytes.Buffer{}
	e2 := NewEngine(e.store, clock, NewFramer(addIn, addOut), nil)
	if err := e2.HandleOne(); err != nil {
		t.Fatalf("add HandleOne() error = %v", err)
	}
	if err := e2.HandleOne(); err != nil {
		t.Fatalf("get HandleOne() error = %v", err)
	}

	want := "STORED\nVALUE k 0 1\nB\nEND\n"
	if got := addOut.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestEngine_IncrWrap(t *testing.T) {
	// Scenario 4 from spec.md §8.
	clock := memline.NewManualClock(0)
	e, out := newTestEngine(t, clock, "set c 0 3600 20\n", "18446744073709551610\n", "incr c 10\n")
	for i := 0; i < 2; i++ {
		if err := e.HandleOne(); err != nil {
			t.Fatalf("HandleOne() #%d error = %v", i, err)
		}
	}
	want := "STORED\n4\n"
	if got := out.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestEngine_DecrClamp(t *testing.T) {
	// Scenario 5 from spec.md §8.
	clock := memline.NewManualClock(0)
	e, out := newTestEngine(t, clock, "set c 0 3600 1\n", "3\n", "decr c 10\n")
	for i := 0; i < 2; i++ {
		if err := e.HandleOne(); err != nil {
			t.Fatalf("HandleOne() #%d error = %v", i, err)
		}
	}
	want := "STORED\n0\n"
	if got := out.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestEngine_AppendPreservesTag(t *testing.T) {
	// Scenario 6 from spec.md §8.
	clock := memline.NewManualClock(0)
	e, out := newTestEngine(t, clock,
		"set k 0 3600 3\n", "foo\n",
		"gets k\n",
		"append k 0 0 3\n", "bar\n",
	)
	for i := 0; i < 3; i++ {
		if err := e.HandleOne(); err != nil {
			t.Fatalf("HandleOne() #%d error = %v", i, err)
		}
	}
	lines := strings.Split(out.String(), "\n")
	firstTag := strings.Fields(lines[1])[4]

	getsIn := bytes.NewBufferString("gets k\n")
	getsOut := &bytes.Buffer{}
	e2 := NewEngine(e.store, clock, NewFramer(getsIn, getsOut), nil)
	if err := e2.HandleOne(); err != nil {
		t.Fatalf("final gets HandleOne() error = %v", err)
	}
	finalLines := strings.Split(getsOut.String(), "\n")
	finalHeader := strings.Fields(finalLines[0])
	if finalHeader[4] != firstTag {
		t.Fatalf("tag changed across append: got %q, want %q", finalHeader[4], firstTag)
	}
	if finalLines[1] != "foobar" {
		t.Fatalf("payload after append = %q, want %q", finalLines[1], "foobar")
	}
}

func TestEngine_NonNumericIncr(t *testing.T) {
	// Scenario 7 from spec.md §8.
	clock := memline.NewManualClock(0)
	e, out := newTestEngine(t, clock, "set k 0 3600 3\n", "abc\n", "incr k 1\n", "get k\n")
	for i := 0; i < 3; i++ {
		if err := e.HandleOne(); err != nil {
			t.Fatalf("HandleOne() #%d error = %v", i, err)
		}
	}
	want := "STORED\nCLIENT_ERROR cannot increment or decrement non-numeric value\nVALUE k 0 3\nabc\nEND\n"
	if got := out.String(); got != want {
		t.Fatalf("output = %q, want %q", got, want)
	}
}

func TestEngine_UnknownCommand(t *testing.T) {
	// Scenario 8 from spec.md §8.
	clock := memline.NewManualClock(0)
	e, out := newTestEngine(t, clock, "frobnicate\n")
	if err := e.HandleOne(); err != nil {
		t.Fatalf("HandleOne() error = %v, connection should stay alive", err)
	}
	if got := out.String(); got != "ERROR\n" {
		t.Fatalf("output = %q, want %q", got, "ERROR\n")
	}
}
