package codec

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes codec failures.
type ErrorCode string

const (
	// ErrCodeTruncated indicates the input ended inside a token.
	ErrCodeTruncated ErrorCode = "TRUNCATED"

	// ErrCodeMalformed indicates bytes that no encoder would produce
	// (bad bool byte, invalid UTF-8, out-of-range enum ordinal, varint overflow).
	ErrCodeMalformed ErrorCode = "MALFORMED"

	// ErrCodeTrailing indicates input left over after every declared type
	// was decoded. Usually the type list and the blob disagree.
	ErrCodeTrailing ErrorCode = "TRAILING_BYTES"

	// ErrCodeTypeMismatch indicates a value that does not fit its type.
	ErrCodeTypeMismatch ErrorCode = "TYPE_MISMATCH"

	// ErrCodeInvalidText indicates text that is not in the blob alphabet.
	ErrCodeInvalidText ErrorCode = "INVALID_TEXT"
)

// Error is returned for every encode and decode failure.
type Error struct {
	Code ErrorCode

	// Offset is the byte offset where decoding failed (-1 when encoding).
	Offset int

	// Path locates the failing value, e.g. "[2].field[1]".
	Path string

	Message string
}

func (e *Error) Error() string {
	loc := ""
	if e.Path != "" {
		loc = " at " + e.Path
	}
	if e.Offset >= 0 {
		return fmt.Sprintf("%s: %s%s (offset %d)", e.Code, e.Message, loc, e.Offset)
	}
	return fmt.Sprintf("%s: %s%s", e.Code, e.Message, loc)
}

// IsDecodeError reports whether err came from decoding malformed input.
func IsDecodeError(err error) bool {
	var ce *Error
	if !errors.As(err, &ce) {
		return false
	}
	switch ce.Code {
	case ErrCodeTruncated, ErrCodeMalformed, ErrCodeTrailing, ErrCodeInvalidText:
		return true
	}
	return false
}

// IsTypeMismatch reports whether err is a value/type mismatch.
func IsTypeMismatch(err error) bool {
	var ce *Error
	return errors.As(err, &ce) && ce.Code == ErrCodeTypeMismatch
}

func mismatch(path string, t Type, format string, args ...any) *Error {
	return &Error{
		Code:    ErrCodeTypeMismatch,
		Offset:  -1,
		Path:    path,
		Message: fmt.Sprintf("%s: ", t) + fmt.Sprintf(format, args...),
	}
}
