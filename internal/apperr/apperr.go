// Package apperr defines the error kinds surfaced by the booking, catalog
// and review services. Handlers translate a kind into an HTTP status; the
// services never return raw storage errors to callers.
package apperr

import (
	"errors"
	"fmt"
)

// Kinds. Match with errors.Is.
var (
	ErrInput    = errors.New("invalid input")
	ErrConflict = errors.New("conflict")
	ErrPolicy   = errors.New("policy violation")
	ErrNotFound = errors.New("not found")
	ErrStorage  = errors.New("storage failure")
)

// Error carries a kind, a caller-facing message and, for seat conflicts,
// the seats that were already taken. Err holds the internal cause, if any,
// and is never shown to clients.
type Error struct {
	Kind  error
	Msg   string
	Seats []string
	Err   error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

// Is reports whether target is this error's kind.
func (e *Error) Is(target error) bool { return e.Kind == target }

func (e *Error) Unwrap() error { return e.Err }

func Input(format string, args ...any) error {
	return &Error{Kind: ErrInput, Msg: fmt.Sprintf(format, args...)}
}

func Conflict(msg string, seats ...string) error {
	return &Error{Kind: ErrConflict, Msg: msg, Seats: seats}
}

func Policy(msg string) error {
	return &Error{Kind: ErrPolicy, Msg: msg}
}

func NotFound(msg string) error {
	return &Error{Kind: ErrNotFound, Msg: msg}
}

// Storage wraps an unexpected persistence error. A nil err yields nil.
func Storage(msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: ErrStorage, Msg: msg, Err: err}
}

// Message returns the caller-facing text of err. Errors that are not an
// *Error (or are storage failures) collapse to a generic message.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != ErrStorage {
		return e.Msg
	}
	return "internal server error"
}

// ConflictSeats returns the seats attached to a seat conflict, or nil.
func ConflictSeats(err error) []string {
	var e *Error
	if errors.As(err, &e) {
		return e.Seats
	}
	return nil
}
