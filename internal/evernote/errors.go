package evernote

import (
	"errors"
	"fmt"
)

// Kind classifies an Error by where it originated.
type Kind int

const (
	// KindConfiguration means the client was never configured (e.g. the
	// developer token is still the placeholder). No remote call was made.
	KindConfiguration Kind = iota + 1
	// KindProtocolIncompatible means the user store rejected our EDAM version.
	KindProtocolIncompatible
	// KindAuthorization covers EDAMUserException: bad or expired credentials,
	// quota problems and parameter validation failures.
	KindAuthorization
	// KindRemoteSystem covers EDAMSystemException and Thrift application errors.
	KindRemoteSystem
	// KindTransport covers network and HTTP level failures.
	KindTransport
	// KindNotFound covers EDAMNotFoundException.
	KindNotFound
)

// String returns a short lowercase name for the kind.
func (k Kind) String() string {
	switch k {
	case KindConfiguration:
		return "configuration"
	case KindProtocolIncompatible:
		return "protocol_incompatible"
	case KindAuthorization:
		return "authorization"
	case KindRemoteSystem:
		return "remote_system"
	case KindTransport:
		return "transport"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// Error is the single error type returned by this package.
type Error struct {
	Kind Kind
	// Code is set for KindAuthorization and KindRemoteSystem.
	Code ErrorCode
	// Parameter names the offending field for KindAuthorization errors and
	// the identifier for KindNotFound errors.
	Parameter string
	Message   string
	// RateLimitDuration is the number of seconds to wait when Code is
	// CodeRateLimitReached.
	RateLimitDuration int32
	Err               error
}

// Error implements the error interface
func (e *Error) Error() string {
	switch e.Kind {
	case KindAuthorization:
		if e.Parameter != "" {
			return fmt.Sprintf("evernote user error %s (parameter %s)", e.Code, e.Parameter)
		}
		return fmt.Sprintf("evernote user error %s", e.Code)
	case KindRemoteSystem:
		if e.Message != "" {
			return fmt.Sprintf("evernote system error %s: %s", e.Code, e.Message)
		}
		return fmt.Sprintf("evernote system error %s", e.Code)
	case KindNotFound:
		return fmt.Sprintf("evernote object not found: %s", e.Parameter)
	case KindTransport:
		if e.Err != nil {
			return "evernote transport error: " + e.Err.Error()
		}
		return "evernote transport error: " + e.Message
	default:
		return e.Message
	}
}

// Unwrap returns the underlying error, if any.
func (e *Error) Unwrap() error {
	return e.Err
}

// NewConfigurationError returns a KindConfiguration error.
func NewConfigurationError(message string) *Error {
	return &Error{Kind: KindConfiguration, Message: message}
}

// ErrIncompatibleVersion is returned by NewSession when checkVersion fails.
var ErrIncompatibleVersion = &Error{
	Kind:    KindProtocolIncompatible,
	Message: "incompatible Evernote client protocol version",
}

func newTransportError(err error) *Error {
	return &Error{Kind: KindTransport, Message: err.Error(), Err: err}
}

// KindOf returns the Kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
