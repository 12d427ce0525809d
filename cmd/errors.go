package cmd

import (
	"errors"
	"fmt"

	"github.com/teemow/tasknotes/internal/config"
	"github.com/teemow/tasknotes/internal/evernote"
)

// Exit codes.
const (
	exitOK            = 0
	exitUsage         = 1
	exitConfiguration = 2
	exitAuthorization = 3
	exitRemoteSystem  = 4
	exitTransport     = 5
	exitNotFound      = 6
)

// usageError is a problem with the command line itself.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usageErrorf(format string, args ...interface{}) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func isUsageError(err error) bool {
	var ue *usageError
	return errors.As(err, &ue)
}

// configError is a configuration file or value that could not be loaded.
type configError struct {
	err error
}

func (e *configError) Error() string { return e.err.Error() }
func (e *configError) Unwrap() error { return e.err }

// describeError maps err to the message printed on stderr and the process
// exit code.
func describeError(err error) (string, int) {
	if errors.Is(err, config.ErrTokenNotConfigured) {
		return "Please fill in your developer token\n" +
			"To get a developer token, go to " + config.DeveloperTokenURL, exitConfiguration
	}

	var ce *configError
	if errors.As(err, &ce) {
		return "Configuration error: " + ce.err.Error(), exitConfiguration
	}

	var ee *evernote.Error
	if errors.As(err, &ee) {
		return describeEvernoteError(ee)
	}

	return "Error: " + err.Error(), exitUsage
}

func describeEvernoteError(e *evernote.Error) (string, int) {
	switch e.Kind {
	case evernote.KindConfiguration:
		return "Configuration error: " + e.Message, exitConfiguration

	case evernote.KindProtocolIncompatible:
		return "Incompatible Evernote client protocol version", exitUsage

	case evernote.KindAuthorization:
		switch e.Code {
		case evernote.CodeAuthExpired:
			return "Your authentication token is expired!", exitAuthorization
		case evernote.CodeInvalidAuth:
			return "Your authentication token is invalid!", exitAuthorization
		case evernote.CodeQuotaReached:
			return "Your account has reached its quota!", exitAuthorization
		default:
			return fmt.Sprintf("Error: %s parameter: %s", e.Code, e.Parameter), exitAuthorization
		}

	case evernote.KindRemoteSystem:
		msg := fmt.Sprintf("System error: %s", e.Code)
		if e.Message != "" {
			msg += " (" + e.Message + ")"
		}
		if e.Code == evernote.CodeRateLimitReached && e.RateLimitDuration > 0 {
			msg += fmt.Sprintf(", retry in %d seconds", e.RateLimitDuration)
		}
		return msg, exitRemoteSystem

	case evernote.KindTransport:
		msg := e.Message
		if e.Err != nil {
			msg = e.Err.Error()
		}
		return "Networking error: " + msg, exitTransport

	case evernote.KindNotFound:
		return "Not found: " + e.Parameter, exitNotFound

	default:
		return "Error: " + e.Error(), exitUsage
	}
}
