package workout

import (
	"errors"
	"fmt"
)

// Failure kinds. Every error returned by this package, the pipeline, or a Log
// implementation matches exactly one of these with errors.Is.
var (
	ErrRejectedInput      = errors.New("rejected input")
	ErrGenerationFailed   = errors.New("generation failed")
	ErrStorageWriteFailed = errors.New("storage write failed")
	ErrStorageReadFailed  = errors.New("storage read failed")
)

// ErrMalformedUnit is wrapped by ErrStorageReadFailed when a stored unit
// cannot be decoded.
var ErrMalformedUnit = errors.New("malformed record unit")

// Error is a failure of one kind with a reason suitable for showing to a user.
type Error struct {
	// Kind is one of the package level failure kinds.
	Kind error

	// Reason is a short human readable explanation.
	Reason string

	// Err is the underlying cause, if any.
	Err error
}

// NewError builds an Error of the given kind.
func NewError(kind error, reason string, err error) *Error {
	return &Error{Kind: kind, Reason: reason, Err: err}
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%v: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Reason)
}

// Unwrap exposes both the kind and the cause to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// Reason returns the user facing reason carried by err, falling back to the
// error text for errors that did not originate here.
func Reason(err error) string {
	if err == nil {
		return ""
	}
	var werr *Error
	if errors.As(err, &werr) && werr.Reason != "" {
		return werr.Reason
	}
	return err.Error()
}
