package services

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a UserError for the transport layer
type ErrorKind int

const (
	// KindUnavailable is a failed store call
	KindUnavailable ErrorKind = iota
	// KindInvalid is bad caller input
	KindInvalid
	// KindNotFound is a missing addressed resource
	KindNotFound
)

// UserError carries a message safe to show to the caller next to the cause
type UserError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *UserError) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Err)
}

func (e *UserError) Unwrap() error {
	return e.Err
}

func unavailable(msg string, err error) error {
	return &UserError{Kind: KindUnavailable, Message: msg, Err: err}
}

func invalid(format string, args ...any) error {
	return &UserError{Kind: KindInvalid, Message: fmt.Sprintf(format, args...)}
}

func notFound(msg string) error {
	return &UserError{Kind: KindNotFound, Message: msg}
}

// AsUserError extracts a UserError from err, wrapping anything else as unavailable
func AsUserError(err error) *UserError {
	var ue *UserError
	if errors.As(err, &ue) {
		return ue
	}
	return &UserError{Kind: KindUnavailable, Message: "request failed", Err: err}
}
