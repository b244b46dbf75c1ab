package types

import (
	"errors"
	"fmt"
	"strings"
)

// Error codes. Callers branch on these rather than on messages.
const (
	EInvalid      = "invalid"         // malformed or missing input
	ENotFound     = "not found"       // garden or plant absent
	EUnauthorized = "unauthorized"    // caller is not the owner
	EConflict     = "conflict"        // plant already present
	EStorage      = "storage failure" // store fault, safe to retry
)

// Error is the outcome of every failed registry operation.
//
// Code is meant for programs, Msg for people. Op names the operation that
// failed and Err holds the underlying cause, if any.
type Error struct {
	Code string
	Msg  string
	Op   string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Op != "" {
		b.WriteString(e.Op)
		b.WriteString(": ")
	}
	switch {
	case e.Msg != "" && e.Err != nil:
		b.WriteString(e.Msg)
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	case e.Msg != "":
		b.WriteString(e.Msg)
	case e.Err != nil:
		b.WriteString(e.Err.Error())
	default:
		fmt.Fprintf(&b, "<%s>", e.Code)
	}
	return b.String()
}

func (e *Error) Unwrap() error { return e.Err }

// ErrorCode returns the code of the first coded error in err's chain.
// Uncoded errors come from infrastructure and report EStorage.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	var e *Error
	for errors.As(err, &e) {
		if e.Code != "" {
			return e.Code
		}
		if e.Err == nil {
			break
		}
		err = e.Err
	}
	return EStorage
}

// IsNotFound reports whether err carries ENotFound.
func IsNotFound(err error) bool { return ErrorCode(err) == ENotFound }

// IsInvalid reports whether err carries EInvalid.
func IsInvalid(err error) bool { return ErrorCode(err) == EInvalid }

// IsUnauthorized reports whether err carries EUnauthorized.
func IsUnauthorized(err error) bool { return ErrorCode(err) == EUnauthorized }

// IsConflict reports whether err carries EConflict.
func IsConflict(err error) bool { return ErrorCode(err) == EConflict }

// IsStorage reports whether err carries EStorage.
func IsStorage(err error) bool { return ErrorCode(err) == EStorage }

func invalidf(format string, args ...any) *Error {
	return &Error{Code: EInvalid, Msg: fmt.Sprintf(format, args...)}
}

// ErrInvalid is returned for a missing or malformed argument.
func ErrInvalid(format string, args ...any) *Error {
	return invalidf(format, args...)
}

// ErrGardenNotFound is returned when no record exists for id.
func ErrGardenNotFound(id string) *Error {
	return &Error{
		Code: ENotFound,
		Msg:  fmt.Sprintf("garden with id=%s not found", id),
	}
}

// ErrPlantNotFound is returned when removing a plant the garden does not have.
func ErrPlantNotFound(gardenID, plant string) *Error {
	return &Error{
		Code: ENotFound,
		Msg:  fmt.Sprintf("plant %q not found in garden %s", plant, gardenID),
	}
}

// ErrNotOwner is returned when the caller does not own the garden.
func ErrNotOwner(gardenID string) *Error {
	return &Error{
		Code: EUnauthorized,
		Msg:  fmt.Sprintf("caller is not the owner of garden %s", gardenID),
	}
}

// ErrNoCaller is returned by mutations invoked without a caller identity.
var ErrNoCaller = &Error{
	Code: EUnauthorized,
	Msg:  "no caller identity",
}

// ErrDuplicatePlant is returned when adding a plant that is already present.
func ErrDuplicatePlant(gardenID, plant string) *Error {
	return &Error{
		Code: EConflict,
		Msg:  fmt.Sprintf("plant %q already in garden %s", plant, gardenID),
	}
}

// ErrStorage wraps a store fault. Nothing was committed.
func ErrStorage(op string, err error) *Error {
	return &Error{
		Code: EStorage,
		Op:   op,
		Msg:  "store operation failed",
		Err:  err,
	}
}
