package session

import (
	"errors"
	"fmt"
)

// ErrorKind classifies session failures for the observer.
type ErrorKind string

const (
	KindDeviceUnavailable ErrorKind = "device_unavailable"
	KindDeviceLost        ErrorKind = "device_lost"
	KindTranscription     ErrorKind = "transcription_error"
	KindRefinement        ErrorKind = "refinement_error"
	KindInjection         ErrorKind = "injection_error"
)

// ErrBusy rejects a start trigger while a session is active. It is a
// signal to the caller, not a session failure.
var ErrBusy = errors.New("a session is already active")

// Error is a session failure with a classification the observer can
// render without parsing the message.
type Error struct {
	Kind ErrorKind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return string(e.Kind)
	}
	return fmt.Sprintf("%s: %v", e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// NewError wraps err with a failure kind.
func NewError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

// KindOf extracts the failure kind from an error chain; ok is false for
// plain errors.
func KindOf(err error) (ErrorKind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}
