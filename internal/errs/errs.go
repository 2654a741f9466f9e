// Package errs holds the error kinds surfaced to callers of the planner.
package errs

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	// ErrConfiguration marks an unsupported provider or missing settings key.
	ErrConfiguration = errors.New("configuration error")
	// ErrAuthentication marks a missing or rejected provider credential.
	ErrAuthentication = errors.New("authentication error")
	// ErrToolNotFound marks a tool call naming a tool that is not registered.
	ErrToolNotFound = errors.New("tool not found")
	// ErrUpstream marks a failure reported by the model provider.
	ErrUpstream = errors.New("upstream error")
)

// UserErrorf is a user-facing error.
// This helper exists mostly to avoid linters complaining about errors starting
// with a capitalized letter.
func UserErrorf(format string, a ...any) error {
	return fmt.Errorf(format, a...)
}

// Error wraps an underlying error with a user-facing reason.
//
// Reason is meant to be short and actionable; Err may contain technical details.
// When Err is nil, Error() falls back to Reason. Kind, when set, is one of the
// package sentinels and makes errors.Is(err, Kind) hold.
type Error struct {
	Kind   error
	Err    error
	Reason string
}

// Wrap creates an Error with the given underlying error and user-facing reason.
func Wrap(err error, reason string) Error {
	return Error{Err: err, Reason: reason}
}

// Configuration returns an ErrConfiguration error.
func Configuration(err error, format string, a ...any) Error {
	return Error{Kind: ErrConfiguration, Err: err, Reason: fmt.Sprintf(format, a...)}
}

// Authentication returns an ErrAuthentication error.
func Authentication(err error, format string, a ...any) Error {
	return Error{Kind: ErrAuthentication, Err: err, Reason: fmt.Sprintf(format, a...)}
}

// ToolNotFound returns an ErrToolNotFound error for the named tool.
func ToolNotFound(name string) Error {
	return Error{
		Kind:   ErrToolNotFound,
		Err:    fmt.Errorf("%w: %q", ErrToolNotFound, name),
		Reason: fmt.Sprintf("The model asked for the tool %q, which is not registered.", name),
	}
}

// Upstream returns an ErrUpstream error.
func Upstream(err error, format string, a ...any) Error {
	return Error{Kind: ErrUpstream, Err: err, Reason: fmt.Sprintf(format, a...)}
}

func (e Error) Error() string {
	if e.Err != nil {
		return e.Err.Error()
	}
	if e.Reason != "" {
		return e.Reason
	}
	if e.Kind != nil {
		return e.Kind.Error()
	}
	return "unknown error"
}

func (e Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the error's kind.
func (e Error) Is(target error) bool {
	return e.Kind != nil && e.Kind == target
}
