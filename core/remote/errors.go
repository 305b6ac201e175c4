package remote

import (
	"errors"
	"fmt"
)

var (
	// ErrRejected is matched by every *RejectedError.
	ErrRejected = errors.New("rejected by persistence service")
	// ErrTransport is matched by every *TransportError.
	ErrTransport = errors.New("persistence service unreachable")
	// ErrMissingEntity is wrapped in a TransportError when a create call
	// succeeds without returning the entity it created.
	ErrMissingEntity = errors.New("service answered without an entity")
)

// RejectedError is a business rule refusal carrying the service's code.
type RejectedError struct {
	Code    int
	Message string
}

func (e *RejectedError) Error() string {
	return fmt.Sprintf("rejected (%d): %s", e.Code, e.Message)
}

func (e *RejectedError) Is(target error) bool { return target == ErrRejected }

// TransportError wraps a network, status or decoding failure of op.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Reject builds a RejectedError.
func Reject(code int, msg string) error {
	return &RejectedError{Code: code, Message: msg}
}

// RejectionCode returns the service code carried by err, if any.
func RejectionCode(err error) (int, bool) {
	var re *RejectedError
	if errors.As(err, &re) {
		return re.Code, true
	}
	return 0, false
}
