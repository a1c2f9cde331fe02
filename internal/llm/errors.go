package llm

import (
	"errors"
	"fmt"
)

// ErrorKind classifies hard failures of a structured inference call.
type ErrorKind string

const (
	KindSchemaViolation    ErrorKind = "schema_violation"
	KindServiceUnavailable ErrorKind = "service_unavailable"
	KindTimeout            ErrorKind = "timeout"
)

// Error is a failed structured inference call. Stage names the call that
// failed so top-level failure messages can point at it.
type Error struct {
	Kind  ErrorKind
	Stage string
	Err   error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("stage %s: %s", e.Stage, e.Kind)
	}
	return fmt.Sprintf("stage %s: %s: %v", e.Stage, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the error kind, or "" when err is not a call error.
func KindOf(err error) ErrorKind {
	var callErr *Error
	if errors.As(err, &callErr) {
		return callErr.Kind
	}
	return ""
}

// StageOf returns the failing stage name, or "" when err is not a call error.
func StageOf(err error) string {
	var callErr *Error
	if errors.As(err, &callErr) {
		return callErr.Stage
	}
	return ""
}
