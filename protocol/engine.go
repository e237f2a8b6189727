// engine.go: the per-connection command dispatcher.
//
// Grounded on agilira/balios's own locking discipline — acquire a mutex
// only around the cache mutation itself, never around I/O — generalized
// here from "one cache, many callers" to "one cache, many TCP sessions".
// Reply-token vocabulary and conversion rules are spec.md §4.3's, unchanged.
package protocol

import (
	"strconv"

	"github.com/agilira/memline"
)

// Engine dispatches one connection's commands against a shared Store and
// Clock. It owns no cache state of its own; Store's internal mutex is the
// only lock ever taken, and only around the Store call itself (spec.md §5).
type Engine struct {
	store  *memline.Store
	clock  memline.Clock
	framer *Framer
	logger memline.Logger
}

// NewEngine constructs an Engine serving one connection's Framer against
// the given shared Store and Clock.
func NewEngine(store *memline.Store, clock memline.Clock, framer *Framer, logger memline.Logger) *Engine {
	if logger == nil {
		logger = memline.NoOpLogger{}
	}
	return &Engine{store: store, clock: clock, framer: framer, logger: logger}
}

// HandleOne reads one command (and its data block, if any) and writes its
// reply. It returns io.EOF when the peer has closed the connection; any
// other returned error is a framing-level I/O failure that should also
// terminate the session (spec.md §4.3: "no half-open handling").
func (e *Engine) HandleOne() error {
	tokens, err := e.framer.ReadLine()
	if err != nil {
		return err
	}
	if len(tokens) == 0 {
		return e.framer.WriteLine("ERROR")
	}

	now := e.clock.Now()
	switch tokens[0] {
	case "get":
		return e.handleRetrieve(now, tokens[1:], false, 0, false)
	case "gets":
		return e.handleRetrieve(now, tokens[1:], true, 0, false)
	case "gat":
		return e.handleGat(now, tokens[1:], false)
	case "gats":
		return e.handleGat(now, tokens[1:], true)
	case "set":
		return e.handleStore(now, tokens[1:], storeSet)
	case "add":
		return e.handleStore(now, tokens[1:], storeAdd)
	case "replace":
		return e.handleStore(now, tokens[1:], storeReplace)
	case "append":
		return e.handleStore(now, tokens[1:], storeAppend)
	case "prepend":
		return e.handleStore(now, tokens[1:], storePrepend)
	case "cas":
		return e.handleCas(now, tokens[1:])
	case "delete":
		return e.handleDelete(now, tokens[1:])
	case "touch":
		return e.handleTouch(now, tokens[1:])
	case "incr":
		return e.handleArithmetic(now, tokens[1:], e.store.Incr)
	case "decr":
		return e.handleArithmetic(now, tokens[1:], e.store.Decr)
	default:
		return e.framer.WriteLine("ERROR")
	}
}

// storeKind selects which Store method a "set"-shaped command calls.
type storeKind int

const (
	storeSet storeKind = iota
	storeAdd
	storeReplace
	storeAppend
	storePrepend
)

// handleRetrieve implements get/gets. withUnique selects the gets header
// shape (VALUE key flags len unique). When retouch is true (gat/gats, via
// handleGat) the lookup goes through Store.Gat, which sets every hit's
// Exptime to newExptime; otherwise newExptime is ignored.
func (e *Engine) handleRetrieve(now int64, keys []string, withUnique bool, newExptime int64, retouch bool) error {
	if len(keys) == 0 {
		return e.framer.WriteLine("ERROR")
	}
	var hits []memline.KeyedEntry
	if retouch {
		hits = e.store.Gat(now, keys, newExptime)
	} else {
		hits = e.store.Get(now, keys)
	}
	return e.writeValues(hits, withUnique)
}

func (e *Engine) writeValues(hits []memline.KeyedEntry, withUnique bool) error {
	for _, h := range hits {
		header := []string{"VALUE", h.Key, strconv.FormatUint(uint64(h.Entry.Flags), 10), strconv.Itoa(len(h.Entry.Data))}
		if withUnique {
			header = append(header, strconv.FormatUint(h.Entry.Unique, 10))
		}
		if err := e.framer.WriteLine(header...); err != nil {
			return err
		}
		if err := e.framer.WriteData(h.Entry.Data); err != nil {
			return err
		}
	}
	return e.framer.WriteLine("END")
}

// handleGat implements gat/gats: "gat <exptime> key...".
func (e *Engine) handleGat(now int64, tokens []string, withUnique bool) error {
	if len(tokens) < 2 {
		return e.framer.WriteLine("ERROR")
	}
	wireExp, err := parseInt64(tokens[0])
	if err != nil {
		return e.clientError("not a number")
	}
	newExptime := absoluteExptime(now, wireExp)
	return e.handleRetrieve(now, tokens[1:], withUnique, newExptime, true)
}

// handleStore implements set/add/replace/append/prepend:
// "<cmd> <key> <flags> <exptime> <len>" followed by a data block.
func (e *Engine) handleStore(now int64, tokens []string, kind storeKind) error {
	if len(tokens) != 4 {
		return e.framer.WriteLine("ERROR")
	}
	key := tokens[0]
	flags, exptime, length, perr := parseStoreHeader(tokens[1], tokens[2], tokens[3])
	if perr != nil {
		// The data block still has to be drained so the connection stays
		// framed correctly for the next command; but per spec.md §4.3 a
		// length we failed to parse leaves us with no reliable length to
		// drain, so the safest course consistent with "abort processing
		// of that command only" is to report the error without attempting
		// a read we cannot size.
		return e.clientError("not a number")
	}

	data, err := e.framer.ReadData(length)
	if err != nil {
		return err
	}

	absExp := absoluteExptime(now, exptime)
	entry := memline.NewEntry(data, flags, absExp)

	switch kind {
	case storeSet:
		_ = e.store.Set(now, key, entry)
		return e.framer.WriteLine("STORED")
	case storeAdd:
		if err := e.store.Add(now, key, entry); err != nil {
			return e.framer.WriteLine("NOT_STORED")
		}
		return e.framer.WriteLine("STORED")
	case storeReplace:
		if err := e.store.Replace(now, key, entry); err != nil {
			return e.framer.WriteLine("NOT_STORED")
		}
		return e.framer.WriteLine("STORED")
	case storeAppend:
		if err := e.store.Append(now, key, entry); err != nil {
			return e.framer.WriteLine("NOT_STORED")
		}
		return e.framer.WriteLine("STORED")
	case storePrepend:
		if err := e.store.Prepend(now, key, entry); err != nil {
			return e.framer.WriteLine("NOT_STORED")
		}
		return e.framer.WriteLine("STORED")
	default:
		return e.framer.WriteLine("ERROR")
	}
}

// handleCas implements "cas <key> <flags> <exptime> <len> <unique>".
func (e *Engine) handleCas(now int64, tokens []string) error {
	if len(tokens) != 5 {
		return e.framer.WriteLine("ERROR")
	}
	key := tokens[0]
	flags, exptime, length, perr := parseStoreHeader(tokens[1], tokens[2], tokens[3])
	if perr != nil {
		return e.clientError("not a number")
	}
	unique, err := strconv.ParseUint(tokens[4], 10, 64)
	if err != nil {
		return e.clientError("not a number")
	}

	data, err := e.framer.ReadData(length)
	if err != nil {
		return err
	}

	absExp := absoluteExptime(now, exptime)
	entry := memline.NewEntry(data, flags, absExp)

	if err := e.store.Cas(now, key, entry, unique); err != nil {
		switch {
		case memline.IsExists(err):
			return e.framer.WriteLine("EXISTS")
		default:
			return e.framer.WriteLine("NOT_FOUND")
		}
	}
	return e.framer.WriteLine("STORED")
}

// handleDelete implements "delete <key>".
func (e *Engine) handleDelete(now int64, tokens []string) error {
	if len(tokens) != 1 {
		return e.framer.WriteLine("ERROR")
	}
	if err := e.store.Delete(now, tokens[0]); err != nil {
		return e.framer.WriteLine("NOT_FOUND")
	}
	return e.framer.WriteLine("DELETED")
}

// handleTouch implements "touch <key> <exptime>".
func (e *Engine) handleTouch(now int64, tokens []string) error {
	if len(tokens) != 2 {
		return e.framer.WriteLine("ERROR")
	}
	wireExp, err := parseInt64(tokens[1])
	if err != nil {
		return e.clientError("not a number")
	}
	absExp := absoluteExptime(now, wireExp)
	if err := e.store.Touch(now, tokens[0], absExp); err != nil {
		return e.framer.WriteLine("NOT_FOUND")
	}
	return e.framer.WriteLine("TOUCHED")
}

// handleArithmetic implements incr/decr: "<cmd> <key> <step>".
func (e *Engine) handleArithmetic(now int64, tokens []string, op func(int64, string, uint64) (string, error)) error {
	if len(tokens) != 2 {
		return e.framer.WriteLine("ERROR")
	}
	step, err := strconv.ParseUint(tokens[1], 10, 64)
	if err != nil {
		return e.clientError("not a number")
	}
	result, err := op(now, tokens[0], step)
	if err != nil {
		if memline.IsNotANumber(err) {
			return e.clientError("cannot increment or decrement non-numeric value")
		}
		return e.framer.WriteLine("NOT_FOUND")
	}
	return e.framer.WriteLine(result)
}

// clientError writes a CLIENT_ERROR reply. The connection remains open;
// only the current command is aborted (spec.md §7).
func (e *Engine) clientError(msg string) error {
	return e.framer.WriteLine("CLIENT_ERROR", msg)
}

// WriteServerError writes a SERVER_ERROR reply. Used directly by
// server.Session when it recovers a panic from HandleOne, so the wire
// vocabulary for "something went wrong on our end" has exactly one
// source of truth (spec.md §7).
func (e *Engine) WriteServerError(msg string) error {
	return e.framer.WriteLine("SERVER_ERROR", msg)
}

// parseStoreHeader parses the flags/exptime/len tokens shared by every
// storage command.
func parseStoreHeader(flagsTok, exptimeTok, lenTok string) (flags uint32, exptime int64, length int, err error) {
	f, err := strconv.ParseUint(flagsTok, 10, 32)
	if err != nil {
		return 0, 0, 0, err
	}
	exp, err := parseInt64(exptimeTok)
	if err != nil {
		return 0, 0, 0, err
	}
	l, err := strconv.Atoi(lenTok)
	if err != nil {
		return 0, 0, 0, err
	}
	return uint32(f), exp, l, nil
}

func parseInt64(tok string) (int64, error) {
	return strconv.ParseInt(tok, 10, 64)
}
