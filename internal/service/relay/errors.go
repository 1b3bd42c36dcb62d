package relay

import (
	"errors"
	"fmt"
)

// Code classifies a relay failure the way the presentation layer surfaces it.
type Code string

const (
	// CodeInvalidCredential means the backend rejected authentication. The
	// session stays usable; further calls will fail until the key is
	// corrected.
	CodeInvalidCredential Code = "INVALID_CREDENTIAL"
	// CodeBackendUnavailable covers transport failures, timeouts, and
	// backend-side errors. No retry is attempted.
	CodeBackendUnavailable Code = "BACKEND_UNAVAILABLE"
	// CodeMalformedReply means the backend answered but the reply text could
	// not be located in the response body.
	CodeMalformedReply Code = "MALFORMED_REPLY"
)

// Error is a coded relay failure wrapping its cause.
type Error struct {
	Code   Code
	Reason string
	Err    error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err == nil {
		return fmt.Sprintf("relay: %s (%s)", e.Code, e.Reason)
	}
	return fmt.Sprintf("relay: %s (%s): %v", e.Code, e.Reason, e.Err)
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func newError(code Code, reason string, err error) *Error {
	return &Error{Code: code, Reason: reason, Err: err}
}

// CodeOf extracts the relay code from err, or "" when err is not a relay
// failure.
func CodeOf(err error) Code {
	var relayErr *Error
	if errors.As(err, &relayErr) {
		return relayErr.Code
	}
	return ""
}
