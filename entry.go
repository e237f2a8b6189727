// entry.go: the stored record type and its mutation primitives.
//
// Grounded on agilira/balios's entry (cache.go): field layout, a
// process-wide version tag, and in-place mutation of data without bumping
// that tag for touch/append/prepend/incr/decr. Unlike the teacher's
// SeqLock-guarded atomic entry, Entry here carries no concurrency control of
// its own — all access happens while the owning Store holds its mutex.
package memline

import (
	"strconv"
	"sync/atomic"
)

// uniqueCounter is the process-wide, monotonically increasing source of
// Entry version tags. It is never reset and a value is never reused.
var uniqueCounter uint64

// nextUnique returns a fresh version tag, strictly greater than every tag
// handed out before it in this process.
func nextUnique() uint64 {
	return atomic.AddUint64(&uniqueCounter, 1)
}

// Entry is a single stored record: an opaque key's flags, absolute
// expiration time, payload bytes, and CAS version tag.
type Entry struct {
	Flags   uint32
	Exptime int64
	Data    []byte
	Unique  uint64
}

// NewEntry constructs an Entry with a freshly allocated version tag, as
// required for every installation performed by Set/Add/Replace/Cas.
func NewEntry(data []byte, flags uint32, exptime int64) Entry {
	return Entry{
		Flags:   flags,
		Exptime: exptime,
		Data:    data,
		Unique:  nextUnique(),
	}
}

// touch overwrites Exptime only. Unique is deliberately left untouched so a
// prior gets/gats tag keeps satisfying a later cas.
func (e *Entry) touch(newExptime int64) {
	e.Exptime = newExptime
}

// append sets Data to the receiver's bytes followed by other's. Unique is
// not bumped: this is the compatibility choice spec.md §3 requires so a cas
// issued against a tag observed before the append still succeeds after it.
func (e *Entry) append(other []byte) {
	buf := make([]byte, 0, len(e.Data)+len(other))
	buf = append(buf, e.Data...)
	buf = append(buf, other...)
	e.Data = buf
}

// prepend sets Data to other's bytes followed by the receiver's.
func (e *Entry) prepend(other []byte) {
	buf := make([]byte, 0, len(e.Data)+len(other))
	buf = append(buf, other...)
	buf = append(buf, e.Data...)
	e.Data = buf
}

// incr parses Data as an unsigned decimal integer, adds step, re-encodes
// the result, and returns the new decimal text. Go's uint64 addition already
// wraps modulo 2**64 on overflow, which is exactly the "subtract 2**64 once"
// behavior spec.md §4.1 asks for. A non-numeric body returns
// ErrCodeNotANumber and leaves Data untouched.
func (e *Entry) incr(step uint64) (string, error) {
	value, err := strconv.ParseUint(string(e.Data), 10, 64)
	if err != nil {
		return "", newErrNotANumber()
	}
	sum := value + step
	text := strconv.FormatUint(sum, 10)
	e.Data = []byte(text)
	return text, nil
}

// decr parses Data as an unsigned decimal integer, subtracts step clamping
// at zero, re-encodes the result, and returns the new decimal text.
func (e *Entry) decr(step uint64) (string, error) {
	value, err := strconv.ParseUint(string(e.Data), 10, 64)
	if err != nil {
		return "", newErrNotANumber()
	}
	var result uint64
	if step >= value {
		result = 0
	} else {
		result = value - step
	}
	text := strconv.FormatUint(result, 10)
	e.Data = []byte(text)
	return text, nil
}
