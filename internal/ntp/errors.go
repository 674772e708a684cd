package ntp

import (
	"errors"
	"fmt"
)

// Error kinds. Match them with errors.Is.
var (
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrBind               = errors.New("cannot open local socket")
	ErrSendFailed         = errors.New("cannot send request")
	ErrTimeout            = errors.New("no response from server in time")
	ErrReceiveFailed      = errors.New("receive failed")
	ErrShortResponse      = errors.New("too few bytes received")
	ErrTimestampUnderflow = errors.New("transmit timestamp predates the Unix epoch")
)

// Error describes a failed step of an exchange or decode
type Error struct {
	Kind   error
	Server string
	Detail string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Server != "" && errors.Is(e.Kind, ErrSendFailed) {
		msg += " to " + e.Server
	}
	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is the kind of this error
func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

func newError(kind error, server string, err error) *Error {
	return &Error{Kind: kind, Server: server, Err: err}
}

func shortResponse(n int) *Error {
	return &Error{
		Kind:   ErrShortResponse,
		Detail: fmt.Sprintf("%d < %d", n, MinResponseSize),
	}
}
