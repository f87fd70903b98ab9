package session

import (
	"context"
	"errors"
	"fmt"
)

// Code classifies protocol-visible failures. Runtime query failures are
// never fatal to the session; only startup load errors are, and those
// never reach this type.
type Code int

const (
	// CodeParse marks an undecodable or incomplete request.
	CodeParse Code = iota + 1
	// CodeInvalidState marks a request received outside the state that
	// permits it.
	CodeInvalidState
	// CodeCancelled marks a request cancelled by the client before
	// completion. Reported distinctly so partial work is never mistaken
	// for an answer.
	CodeCancelled
	// CodeBackend marks a transient backend failure for one request.
	CodeBackend
	// CodeBadRequest marks a structurally valid request with unusable
	// parameters.
	CodeBadRequest
)

// Error is a protocol-level error with a wire code.
type Error struct {
	Code    Code
	Message string
}

func (e *Error) Error() string { return e.Message }

func errInvalidState(method string, s State) *Error {
	return &Error{Code: CodeInvalidState, Message: fmt.Sprintf("%s not allowed in state %s", method, s)}
}

func errBadRequest(format string, args ...any) *Error {
	return &Error{Code: CodeBadRequest, Message: fmt.Sprintf(format, args...)}
}

// AsError coerces any failure into a protocol error: cancellations keep
// their distinct code, everything else unknown is a transient backend
// failure.
func AsError(err error) *Error {
	var perr *Error
	if errors.As(err, &perr) {
		return perr
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Code: CodeCancelled, Message: "request cancelled"}
	}
	return &Error{Code: CodeBackend, Message: err.Error()}
}
