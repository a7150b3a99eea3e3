package lineq

import (
	"errors"
	"fmt"
)

// Client error codes. These form the closed set of ways a query can fail
// before the server's answer reaches the caller.
const (
	EHOSTUNRESOLVABLE = "host_unresolvable"
	ECONNFAILED       = "connection_failed"
	ETRANSPORTIO      = "transport_io"
	ESERVERSILENT     = "server_silent"
)

// Application error codes.
const (
	EINTERNAL = "internal"
	EINVALID  = "invalid"
	ENOTFOUND = "not_found"
	ESKIPPED  = "skipped"
)

// Error represents an application-specific error. Code is machine readable,
// Message is meant for the end user. Err optionally holds the underlying
// cause.
type Error struct {
	Code    string
	Message string
	Err     error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("lineq error: code=%s message=%s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("lineq error: code=%s message=%s", e.Code, e.Message)
}

// Unwrap returns the underlying cause, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors always return EINTERNAL.
func ErrorCode(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Code
	}
	return EINTERNAL
}

// ErrorMessage unwraps an application error and returns its message.
// Non-application errors always return "Internal error.".
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}

// Errorf is a helper function to return an Error with a given code and
// formatted message.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsClientError reports whether code is one of the client error codes.
func IsClientError(code string) bool {
	switch code {
	case EHOSTUNRESOLVABLE, ECONNFAILED, ETRANSPORTIO, ESERVERSILENT:
		return true
	}
	return false
}
