package einvoice

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrorKind classifies failures of e-invoice operations.
type ErrorKind string

const (
	KindConfiguration     ErrorKind = "ConfigurationError"
	KindUpstreamTransport ErrorKind = "UpstreamTransportError"
	KindUpstreamBusiness  ErrorKind = "UpstreamBusinessError"
	KindPersistence       ErrorKind = "PersistenceError"
)

// Error is the failure record of an e-invoice operation.
type Error struct {
	Kind    ErrorKind
	Message string
	// Code is the upstream error code, when one was reported.
	Code string
	// Status is the upstream HTTP status, zero when no response was received.
	Status int
	// Missing lists configuration keys for KindConfiguration.
	Missing []string
	// Result is the upstream outcome that was obtained before a local write
	// failed (KindPersistence only).
	Result     *IRNResult
	RawDetails json.RawMessage
	Cause      error
}

func (e *Error) Error() string {
	var cause string
	if e.Cause != nil {
		cause = e.Cause.Error()
	}

	var b strings.Builder
	b.WriteString(string(e.Kind))
	b.WriteString(": ")
	// a cause that already carries the message stands in for it
	if cause != "" && strings.Contains(cause, e.Message) {
		b.WriteString(cause)
		if e.Code != "" {
			fmt.Fprintf(&b, " (code %s)", e.Code)
		}
		return b.String()
	}
	b.WriteString(e.Message)
	if e.Code != "" {
		fmt.Fprintf(&b, " (code %s)", e.Code)
	}
	if cause != "" {
		b.WriteString(": ")
		b.WriteString(cause)
	}
	return b.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// NewConfigurationError reports every missing setting at once.
func NewConfigurationError(missing []string) *Error {
	return &Error{
		Kind:    KindConfiguration,
		Message: "e-invoice service is not configured, missing: " + strings.Join(missing, ", "),
		Missing: missing,
	}
}

// NewTransportError reports a failed HTTP exchange.
func NewTransportError(status int, message string, cause error) *Error {
	if message == "" {
		message = "e-invoice service unavailable"
	}
	return &Error{
		Kind:    KindUpstreamTransport,
		Message: message,
		Status:  status,
		Cause:   cause,
	}
}

// NewBusinessError reports a well-formed upstream rejection.
func NewBusinessError(status int, message, code string, raw json.RawMessage) *Error {
	return &Error{
		Kind:       KindUpstreamBusiness,
		Message:    message,
		Code:       code,
		Status:     status,
		RawDetails: raw,
	}
}

// NewPersistenceError reports a local write failure after an irreversible
// upstream side effect.
func NewPersistenceError(result *IRNResult, cause error) *Error {
	return &Error{
		Kind:    KindPersistence,
		Message: "IRN obtained but could not be saved",
		Result:  result,
		Cause:   cause,
	}
}

// AsError extracts an *Error from err.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsKind reports whether err is an *Error of the given kind.
func IsKind(err error, kind ErrorKind) bool {
	e, ok := AsError(err)
	return ok && e.Kind == kind
}
