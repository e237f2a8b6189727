// errors.go: structured error codes for Store and protocol failures.
//
// Grounded on agilira/balios's errors.go: the same error-code constant
// shape, the same NewWithField/NewWithContext/Wrap constructors from
// github.com/agilira/go-errors, and the same HasCode-based Is* predicate
// style. Codes are renamed to the memcached vocabulary spec.md uses
// (NOT_FOUND, EXISTS, NOT_STORED, ...) instead of the teacher's cache-library
// vocabulary (CACHE_FULL, KEY_NOT_FOUND, ...).
package memline

import (
	goerrors "errors"

	"github.com/agilira/go-errors"
)

// Error codes for Store and protocol-engine failures.
const (
	// Store outcome codes — these are not exceptional conditions,
	// they are the typed "failure result" column of spec.md §4.2's
	// operation table, carried as errors so callers can switch on code.
	ErrCodeNotFound   errors.ErrorCode = "MEMLINE_NOT_FOUND"
	ErrCodeExists     errors.ErrorCode = "MEMLINE_EXISTS"
	ErrCodeNotStored  errors.ErrorCode = "MEMLINE_NOT_STORED"
	ErrCodeNotANumber errors.ErrorCode = "MEMLINE_NOT_A_NUMBER"

	// Protocol-shape and client errors.
	ErrCodeProtocolError errors.ErrorCode = "MEMLINE_PROTOCOL_ERROR"
	ErrCodeBadArgument   errors.ErrorCode = "MEMLINE_BAD_ARGUMENT"

	// Internal errors.
	ErrCodeInternal errors.ErrorCode = "MEMLINE_INTERNAL_ERROR"
)

const (
	msgNotFound      = "key not found"
	msgExists        = "cas version mismatch"
	msgNotStored     = "not stored"
	msgNotANumber    = "cannot increment or decrement non-numeric value"
	msgProtocolError = "unrecognized command"
	msgBadArgument   = "not a number"
	msgInternal      = "internal server error"
)

// newErrNotFound reports a live entry was required but absent or expired.
func newErrNotFound(key string) error {
	return errors.NewWithField(ErrCodeNotFound, msgNotFound, "key", key)
}

// newErrExists reports a cas version mismatch against a live entry.
func newErrExists(key string, want, got uint64) error {
	return errors.NewWithContext(ErrCodeExists, msgExists, map[string]interface{}{
		"key":      key,
		"supplied": want,
		"current":  got,
	})
}

// newErrNotStored reports add/replace/append/prepend's precondition failed.
func newErrNotStored(key, op string) error {
	return errors.NewWithContext(ErrCodeNotStored, msgNotStored, map[string]interface{}{
		"key": key,
		"op":  op,
	})
}

// newErrNotANumber reports a non-numeric body under incr/decr.
func newErrNotANumber() error {
	return errors.NewWithContext(ErrCodeNotANumber, msgNotANumber, nil)
}

// newErrBadArgument reports a numeric-parse failure in a command argument
// (flags, exptime, len, step, or unique).
func newErrBadArgument(field, value string) error {
	return errors.NewWithContext(ErrCodeBadArgument, msgBadArgument, map[string]interface{}{
		"field": field,
		"value": value,
	})
}

// newErrProtocolError reports an unrecognized command or wrong arity.
func newErrProtocolError(line string) error {
	return errors.NewWithField(ErrCodeProtocolError, msgProtocolError, "line", line)
}

// newErrInternal wraps an unexpected failure (e.g. a recovered panic) for
// logging and for the SERVER_ERROR wire reply.
func newErrInternal(operation string, cause error) error {
	if cause != nil {
		return errors.Wrap(cause, ErrCodeInternal, msgInternal).WithContext("operation", operation)
	}
	return errors.NewWithField(ErrCodeInternal, msgInternal, "operation", operation)
}

// HasCode reports whether err carries the given error code.
func HasCode(err error, code errors.ErrorCode) bool {
	return errors.HasCode(err, code)
}

// IsNotFound reports whether err is a "no live entry" result.
func IsNotFound(err error) bool { return HasCode(err, ErrCodeNotFound) }

// IsExists reports whether err is a cas version mismatch.
func IsExists(err error) bool { return HasCode(err, ErrCodeExists) }

// IsNotStored reports whether err is an add/replace/append/prepend failure.
func IsNotStored(err error) bool { return HasCode(err, ErrCodeNotStored) }

// IsNotANumber reports whether err is a non-numeric incr/decr body.
func IsNotANumber(err error) bool { return HasCode(err, ErrCodeNotANumber) }

// ErrorCode extracts the go-errors code from err, or "" if err does not
// carry one.
func ErrorCode(err error) errors.ErrorCode {
	if err == nil {
		return ""
	}
	var coder errors.ErrorCoder
	if goerrors.As(err, &coder) {
		return coder.ErrorCode()
	}
	return ""
}
