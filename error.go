package dealerscraper

import (
	"errors"
	"fmt"
)

// Error codes for machine-readable error classification.
const (
	EINVALID     = "invalid"     // validation failed
	ENOTFOUND    = "not_found"   // entity does not exist / no strategy matched
	EEMPTY       = "empty"       // a strategy matched but extracted nothing
	EBLOCKED     = "blocked"     // remote site refused or challenged the request
	ETIMEOUT     = "timeout"     // deadline expired
	EUNAVAILABLE = "unavailable" // network or HTTP failure
	EINTERNAL    = "internal"    // internal error
)

// Error represents an application error with a machine-readable code and a
// human-readable message.
type Error struct {
	// Code is one of the E* constants above.
	Code string

	// Message is a human-readable description of the error.
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("dealerscraper error: code=%s message=%s", e.Code, e.Message)
}

// Errorf is a helper to construct an *Error with formatting.
func Errorf(code string, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// ErrorCode unwraps an application error and returns its code.
// Non-application errors return EINTERNAL; nil returns the empty string.
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
// Non-application errors return a generic message; nil returns the empty string.
func ErrorMessage(err error) string {
	var e *Error
	if err == nil {
		return ""
	} else if errors.As(err, &e) {
		return e.Message
	}
	return "Internal error."
}
