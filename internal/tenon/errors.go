package tenon

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrMissingKey   = errors.New("tenon: API key is required")
)

const (
	msgNoURL    = "You must specify a URL to be checked."
	msgNoSrc    = "You must specify a block of HTML source code to be checked."
	msgNoTarget = "You must specify a URL or HTML to be checked."
)

// inputError prints the caller-facing message and matches ErrInvalidInput.
type inputError struct{ msg string }

func (e *inputError) Error() string        { return e.msg }
func (e *inputError) Is(target error) bool { return target == ErrInvalidInput }

func invalidInput(msg string) error { return &inputError{msg: msg} }

// TransportError wraps a failed HTTP exchange (DNS, refused, timeout).
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string { return fmt.Sprintf("tenon transport: %v", e.Err) }
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError wraps a response body that was not valid JSON.
type DecodeError struct {
	Err error
}

func (e *DecodeError) Error() string { return fmt.Sprintf("tenon decode: %v", e.Err) }
func (e *DecodeError) Unwrap() error { return e.Err }

// ServiceError is a decoded response whose status is not 200.
// Error returns the service message unchanged.
type ServiceError struct {
	Status  int
	Message string
}

func (e *ServiceError) Error() string { return e.Message }
