// Package api
// License: Apache-2.0
//
// Common error taxonomy and structured error type for the netsock library.

package api

import "fmt"

// Sentinel errors used across the library. Callers branch with errors.Is.
var (
	ErrConnectionRefused = fmt.Errorf("connection refused by peer")
	ErrTimeout           = fmt.Errorf("operation timed out")
	ErrWouldBlock        = fmt.Errorf("operation would block")
	ErrInvalidArgument   = fmt.Errorf("invalid argument")
	ErrInvalidSocket     = fmt.Errorf("invalid socket")
	ErrNotSupported      = fmt.Errorf("operation not supported on this platform")
)

// ErrorCode represents specific error conditions in the library.
type ErrorCode int

const (
	ErrCodeOK ErrorCode = iota
	ErrCodeConnectionRefused
	ErrCodeTimeout
	ErrCodeWouldBlock
	ErrCodeInvalidArgument
	ErrCodeInvalidSocket
	ErrCodeNotSupported
	ErrCodeInternal
)

// sentinelFor maps codes back to the matching sentinel for errors.Is support.
var sentinelFor = map[ErrorCode]error{
	ErrCodeConnectionRefused: ErrConnectionRefused,
	ErrCodeTimeout:           ErrTimeout,
	ErrCodeWouldBlock:        ErrWouldBlock,
	ErrCodeInvalidArgument:   ErrInvalidArgument,
	ErrCodeInvalidSocket:     ErrInvalidSocket,
	ErrCodeNotSupported:      ErrNotSupported,
}

// Error is a structured error carrying a code, a message and an optional cause.
type Error struct {
	Code    ErrorCode
	Message string
	Cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap exposes the sentinel for the code, so that
// errors.Is(err, api.ErrTimeout) matches any Error carrying ErrCodeTimeout.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s, ok := sentinelFor[e.Code]; ok {
		errs = append(errs, s)
	}
	if e.Cause != nil {
		errs = append(errs, e.Cause)
	}
	return errs
}

// NewError creates a new structured error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError creates a structured error around an underlying cause.
func WrapError(code ErrorCode, message string, cause error) *Error {
	return &Error{Code: code, Message: message, Cause: cause}
}
