// Package drafterr holds the reason codes every room and pick failure is reported with.
package drafterr

import (
	"errors"
	"fmt"
)

// Code is a stable, wire-visible failure reason.
type Code string

const (
	CodeRoomNotFound             Code = "ROOM_NOT_FOUND"
	CodeInvalidRoomState         Code = "INVALID_ROOM_STATE"
	CodeRoomFull                 Code = "ROOM_FULL"
	CodeInsufficientParticipants Code = "INSUFFICIENT_PARTICIPANTS"
	CodeInvalidConfig            Code = "INVALID_CONFIG"
	CodeDraftComplete            Code = "DRAFT_COMPLETE"
	CodeNotYourTurn              Code = "NOT_YOUR_TURN"
	CodePlayerAlreadyPicked      Code = "PLAYER_ALREADY_PICKED"
	CodePlayerNotFound           Code = "PLAYER_NOT_FOUND"
	CodeParticipantNotFound      Code = "PARTICIPANT_NOT_FOUND"
	CodeRosterLimitReached       Code = "ROSTER_LIMIT_REACHED"
	CodeConcurrentModification   Code = "CONCURRENT_MODIFICATION"
	CodeProcessingError          Code = "PROCESSING_ERROR"
	CodeInternal                 Code = "INTERNAL"
)

// Error is a failure with a reason code and a message safe to show to every observer of a room.
// Err keeps the underlying cause for logs and is never serialized.
type Error struct {
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches any *Error carrying the same code, so errors.Is(err, drafterr.New(CodeRoomFull, ""))
// works without comparing messages.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return t.Code == e.Code
}

// New returns an *Error with a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Internal wraps a store or transport fault. The message stays generic.
func Internal(err error) *Error {
	return &Error{Code: CodeInternal, Message: "internal error", Err: err}
}

// CodeOf extracts the reason code of err, CodeInternal when err carries none.
func CodeOf(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return CodeInternal
}

// From converts any error into an *Error, wrapping unknown errors as internal faults.
func From(err error) *Error {
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	return Internal(err)
}
