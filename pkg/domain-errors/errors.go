// Package domainerrors provides coded errors for the service boundary.
// Stores return sentinel errors (pkg/platform/sentinel); services translate
// them here so callers can branch on the code without string matching.
package domainerrors

import (
	"errors"
	"fmt"
)

// Code classifies a domain error.
type Code string

const (
	// CodeInvalidInput marks validation failures rejected before any write.
	// Never retryable.
	CodeInvalidInput Code = "invalid_input"
	// CodeNotFound marks a lookup miss surfaced through an error channel.
	CodeNotFound Code = "not_found"
	// CodeConflict marks a state conflict that is not transparently
	// recoverable inside the store layer.
	CodeConflict Code = "conflict"
	// CodeSerialization marks an isolation-level conflict between concurrent
	// transactions. The caller owns the retry policy.
	CodeSerialization Code = "serialization_failure"
	// CodeInvariantViolation marks a broken internal invariant; a bug, not a
	// caller problem.
	CodeInvariantViolation Code = "invariant_violation"
	// CodeInternal marks unexpected infrastructure failures.
	CodeInternal Code = "internal"
)

// Error is a coded error with an optional wrapped cause.
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

// New creates a coded error without a cause.
func New(code Code, message string) error {
	return &Error{Code: code, Message: message}
}

// Wrap attaches a code and message to an underlying error. A nil err yields
// nil so call sites can wrap unconditionally.
func Wrap(err error, code Code, message string) error {
	if err == nil {
		return nil
	}
	return &Error{Code: code, Message: message, Err: err}
}

// HasCode reports whether any error in the chain carries the given code.
func HasCode(err error, code Code) bool {
	var de *Error
	for errors.As(err, &de) {
		if de.Code == code {
			return true
		}
		err = de.Err
		de = nil
	}
	return false
}

// GetCode returns the outermost code in the chain, or CodeInternal if the
// error is not coded.
func GetCode(err error) Code {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return CodeInternal
}

// Retryable reports whether the caller may transparently retry the whole
// operation. Only serialization failures qualify.
func Retryable(err error) bool {
	return HasCode(err, CodeSerialization)
}
