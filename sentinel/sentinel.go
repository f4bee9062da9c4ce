package sentinel

import "errors"

// Sentinel errors for the failure kinds every registry reports. Registries define
// their own named errors wrapping one of these, so callers can match either the
// precise failure (errors.Is(err, registry.ErrStudentsEnrolled)) or its kind
// (errors.Is(err, sentinel.ErrPreconditionFailed)).
var (
	ErrNotFound           = errors.New("not found")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidTransition  = errors.New("invalid transition")
	ErrAlreadyExists      = errors.New("already exists")
	ErrPreconditionFailed = errors.New("precondition failed")
	ErrInvalidInput       = errors.New("invalid input")
)

var kinds = []struct {
	err  error
	name string
}{
	{ErrNotFound, "NotFound"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrInvalidTransition, "InvalidTransition"},
	{ErrAlreadyExists, "AlreadyExists"},
	{ErrPreconditionFailed, "PreconditionFailed"},
	{ErrInvalidInput, "InvalidInput"},
}

// KindOf names the taxonomy kind carried by err, or "Internal" when err wraps none
// of the sentinels (ledger I/O failures, marshaling errors).
func KindOf(err error) string {
	if err == nil {
		return ""
	}
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.name
		}
	}
	return "Internal"
}

// Wrap builds a named error that matches both itself and kind under errors.Is.
func Wrap(kind error, msg string) error {
	return &namedError{kind: kind, msg: msg}
}

type namedError struct {
	kind error
	msg  string
}

func (e *namedError) Error() string { return e.msg }

func (e *namedError) Unwrap() error { return e.kind }
