package state

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes state errors.
type ErrorCode string

const (
	// ErrCodeOutOfRange indicates a slot position the vector does not have.
	ErrCodeOutOfRange ErrorCode = "OUT_OF_RANGE"

	// ErrCodeTypeMismatch indicates a value or token that does not fit the
	// slot's declared type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeStaleSchema indicates a blob written under a different schema
	// version or slot layout than the one decoding it.
	ErrCodeStaleSchema ErrorCode = "STALE_SCHEMA"

	// ErrCodeDecode indicates a blob or token that could not be decoded.
	ErrCodeDecode ErrorCode = "DECODE"

	// ErrCodeIncomplete indicates a Builder that did not fill every target slot.
	ErrCodeIncomplete ErrorCode = "INCOMPLETE"

	// ErrCodeOverflow indicates a Builder appended past the target's slots.
	ErrCodeOverflow ErrorCode = "OVERFLOW"
)

// Error describes a failed state operation.
type Error struct {
	Code ErrorCode

	// Index is the slot position involved, or -1.
	Index int

	Message string

	// Err is the underlying codec error, if any.
	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Index >= 0 {
		msg = fmt.Sprintf("%s (slot %d)", msg, e.Index)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsStale reports whether err means the blob predates the current schema.
func IsStale(err error) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == ErrCodeStaleSchema
}

// IsDecode reports whether err came from decoding a blob, stale or malformed.
func IsDecode(err error) bool {
	var se *Error
	return errors.As(err, &se) && (se.Code == ErrCodeDecode || se.Code == ErrCodeStaleSchema)
}

// HasCode reports whether err is a state error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var se *Error
	return errors.As(err, &se) && se.Code == code
}

func newError(code ErrorCode, index int, err error, format string, args ...any) *Error {
	return &Error{Code: code, Index: index, Message: fmt.Sprintf(format, args...), Err: err}
}
