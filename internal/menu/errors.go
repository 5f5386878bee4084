package menu

import (
	"errors"
	"fmt"
)

// ErrorCode categorizes menu errors.
type ErrorCode string

const (
	// ErrCodeCapacityExhausted indicates the encoded state did not fit in the
	// identifiers one render produced.
	ErrCodeCapacityExhausted ErrorCode = "CAPACITY_EXHAUSTED"

	// ErrCodeIDTooLong indicates an identifier prefix longer than the maximum
	// identifier length.
	ErrCodeIDTooLong ErrorCode = "ID_TOO_LONG"

	// ErrCodeUnknownMenu indicates an identifier naming no registered menu.
	ErrCodeUnknownMenu ErrorCode = "UNKNOWN_MENU"

	// ErrCodeUnknownElement indicates an identifier naming an element the
	// menu no longer renders, usually a message sent before a redeploy.
	ErrCodeUnknownElement ErrorCode = "UNKNOWN_ELEMENT"

	// ErrCodeMalformedID indicates an identifier not produced by this package.
	ErrCodeMalformedID ErrorCode = "MALFORMED_ID"

	// ErrCodeDecodeMismatch indicates the state carried by a message does not
	// decode against the menu's current slots.
	ErrCodeDecodeMismatch ErrorCode = "DECODE_MISMATCH"

	// ErrCodePhaseViolation indicates a declaration used outside the phase
	// that allows it, or a pass that declared different slots than build.
	ErrCodePhaseViolation ErrorCode = "PHASE_VIOLATION"

	// ErrCodeHandlerFailed indicates the handle pass or handler failed.
	ErrCodeHandlerFailed ErrorCode = "HANDLER_FAILED"

	// ErrCodeRenderFailed indicates the render pass failed.
	ErrCodeRenderFailed ErrorCode = "RENDER_FAILED"

	// ErrCodeInvalidMenu indicates a menu that cannot be registered.
	ErrCodeInvalidMenu ErrorCode = "INVALID_MENU"

	// ErrCodeDuplicateElement indicates two elements with one name in a pass.
	ErrCodeDuplicateElement ErrorCode = "DUPLICATE_ELEMENT"
)

// ErrTerminated is returned by a handler to end the interaction early.
// The dispatcher acknowledges without updating and does not report an error.
var ErrTerminated = errors.New("menu: handler terminated")

// Error describes a failed menu operation.
type Error struct {
	Code ErrorCode

	// Menu is the menu path involved, if known.
	Menu string

	// Element is the element name involved, if known.
	Element string

	Message string

	Err error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	switch {
	case e.Menu != "" && e.Element != "":
		msg = fmt.Sprintf("%s (menu=%s, element=%s)", msg, e.Menu, e.Element)
	case e.Menu != "":
		msg = fmt.Sprintf("%s (menu=%s)", msg, e.Menu)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HasCode reports whether err is a menu error with the given code.
func HasCode(err error, code ErrorCode) bool {
	var me *Error
	return errors.As(err, &me) && me.Code == code
}

// IsCapacityError reports whether err means state outgrew its identifiers.
func IsCapacityError(err error) bool {
	return HasCode(err, ErrCodeCapacityExhausted) || HasCode(err, ErrCodeIDTooLong)
}

// IsUnknownElement reports whether err came from an interaction with an
// element the menu no longer renders.
func IsUnknownElement(err error) bool {
	return HasCode(err, ErrCodeUnknownElement)
}

// IsDecodeMismatch reports whether err came from state that no longer fits.
func IsDecodeMismatch(err error) bool {
	return HasCode(err, ErrCodeDecodeMismatch)
}

func newError(code ErrorCode, menu, element string, err error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Menu:    menu,
		Element: element,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// wrapPass keeps an existing menu error as is and files anything else under
// code.
func wrapPass(code ErrorCode, menu, element string, err error) error {
	var me *Error
	if errors.As(err, &me) {
		return err
	}
	return newError(code, menu, element, err, "pass failed")
}
