// Package fault defines the error taxonomy shared by the scoring engine and
// the HTTP layer. Services return *Error values; the HTTP layer maps codes to
// response statuses.
package fault

import (
	"errors"
	"fmt"
)

type Code string

const (
	// InvalidRequest covers malformed or contradictory input: self-play,
	// a winner or scorer that is not part of the match, bad status filters.
	InvalidRequest Code = "invalid_request"

	// NotFound covers absent matches, sets, teams and categories.
	NotFound Code = "not_found"

	// NothingToUndo is returned by undo when the current set has no points.
	NothingToUndo Code = "nothing_to_undo"

	// Conflict means a transaction could not commit after retries.
	Conflict Code = "conflict"

	// StoreUnavailable covers backend/transport failures.
	StoreUnavailable Code = "store_unavailable"
)

type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is matches by code so callers can compare against fault.New(code, "").
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && e.Code == t.Code
}

func New(code Code, message string) *Error {
	return &Error{Code: code, Message: message}
}

func Newf(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

func Wrap(code Code, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}

// CodeOf extracts the fault code from an error chain.
func CodeOf(err error) (Code, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Code, true
	}
	return "", false
}
