package store

import (
	"errors"
	"fmt"

	"task-dashboard/internal/auth"
	"task-dashboard/internal/backend"
)

// Error kinds. Every error returned by Store is an *Error whose Kind is one
// of these, so callers can test with errors.Is.
var (
	ErrAuth         = errors.New("authentication failed")
	ErrAuthRequired = errors.New("not signed in")
	ErrValidation   = errors.New("invalid input")
	ErrBackend      = errors.New("backend unavailable")
	ErrNotFound     = errors.New("not found")
)

// Error is a failed store operation.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Message is the text shown to a person. Backend details are withheld.
func (e *Error) Message() string {
	switch {
	case errors.Is(e.Kind, ErrBackend):
		return "Something went wrong, please try again."
	case errors.Is(e.Kind, ErrAuthRequired):
		return "Please sign in first."
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.Error()
	}
}

// Message returns the human readable text of err.
func Message(err error) string {
	var se *Error
	if errors.As(err, &se) {
		return se.Message()
	}
	return err.Error()
}

func newError(op string, kind, err error) *Error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// classify maps a collaborator error onto an error kind.
func classify(err error) error {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials), errors.Is(err, auth.ErrInvalidToken),
		errors.Is(err, auth.ErrEmailTaken):
		return ErrAuth
	case errors.Is(err, auth.ErrEmptyName), errors.Is(err, auth.ErrInvalidEmail),
		errors.Is(err, auth.ErrWeakPassword):
		return ErrValidation
	case errors.Is(err, backend.ErrNotFound):
		return ErrNotFound
	default:
		return ErrBackend
	}
}
