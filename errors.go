package didrpc

import (
	"errors"
	"fmt"
)

// ErrorKind tags the variant of a ServiceError. Callers switch on the
// kind; new kinds may be added without renumbering existing ones.
// The value of a kind is its wire code.
type ErrorKind int64

const (
	// RuntimeError means the ledger read could not be completed.
	RuntimeError ErrorKind = 1
)

// Code returns the stable numeric code of the kind.
func (k ErrorKind) Code() int64 { return int64(k) }

func (k ErrorKind) String() string {
	switch k {
	case RuntimeError:
		return "RuntimeError"
	default:
		return fmt.Sprintf("unknown(%d)", int64(k))
	}
}

// KindFromCode maps a stable numeric code back to its kind.
func KindFromCode(code int64) (ErrorKind, bool) {
	switch code {
	case 1:
		return RuntimeError, true
	default:
		return 0, false
	}
}

// Message returned to callers for runtime failures.
const msgRuntimeError = "Unable to get value."

var (
	// ErrAPIUnavailable is the cause of a runtime failure when the DID
	// runtime API is missing or too old at the queried block.
	ErrAPIUnavailable = errors.New("didrpc: runtime API unavailable")

	// ErrRuntimePanic is the cause of a runtime failure when the
	// ledger panicked while serving a read.
	ErrRuntimePanic = errors.New("didrpc: runtime panicked")
)

// ServiceError is the only error the query service returns.
//
// Data carries a diagnostic rendering of the underlying cause. It is
// informational and must not be parsed.
type ServiceError struct {
	Kind    ErrorKind
	Message string
	Data    string

	cause error
}

// NewRuntimeError wraps a ledger failure.
func NewRuntimeError(cause error) *ServiceError {
	e := &ServiceError{
		Kind:    RuntimeError,
		Message: msgRuntimeError,
		cause:   cause,
	}
	if cause != nil {
		e.Data = fmt.Sprintf("%+v", cause)
	}
	return e
}

// NewServiceError restores a ServiceError received over a transport.
// Codes this build does not know are kept unchanged in Kind, so they
// survive a round trip through an older client.
func NewServiceError(code int64, message, data string) *ServiceError {
	return &ServiceError{Kind: ErrorKind(code), Message: message, Data: data}
}

// Code returns the stable numeric code.
func (e *ServiceError) Code() int64 { return e.Kind.Code() }

func (e *ServiceError) Error() string {
	if e.Data == "" {
		return fmt.Sprintf("didrpc: %s (code %d)", e.Message, e.Code())
	}
	return fmt.Sprintf("didrpc: %s (code %d): %s", e.Message, e.Code(), e.Data)
}

// Unwrap returns the underlying cause. It is nil for errors restored
// from a transport.
func (e *ServiceError) Unwrap() error { return e.cause }

// IsServiceError checks whether an error is a ServiceError and
// returns it.
func IsServiceError(err error) (*ServiceError, bool) {
	var s *ServiceError
	if errors.As(err, &s) {
		return s, true
	}
	return nil, false
}
