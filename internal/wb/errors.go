package wb

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Kind classifies a failed upstream call.
type Kind string

const (
	KindValidation Kind = "validation"
	KindAuth       Kind = "unauthorized"
	KindRateLimit  Kind = "rate_limited"
	KindBadRequest Kind = "bad_request"
	KindHTTP       Kind = "http"
	KindTransport  Kind = "transport"
)

// Error is returned by every client call that fails. Callers branch on Kind
// instead of parsing Message.
type Error struct {
	Kind    Kind
	Status  int
	Message string
	// Details holds upstream messages for bad requests or the failed fields of a validation error.
	Details []string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if len(e.Details) > 0 {
		msg = fmt.Sprintf("%s: %s", msg, strings.Join(e.Details, ", "))
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, msg)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, &Error{Kind: KindAuth}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// NewValidation reports malformed input or a malformed upstream response.
func NewValidation(message string, fields ...string) *Error {
	return &Error{Kind: KindValidation, Message: message, Details: fields}
}

// NewAuth reports a 401 from the upstream API.
func NewAuth() *Error {
	return &Error{
		Kind:    KindAuth,
		Status:  http.StatusUnauthorized,
		Message: "unauthorized: check the API key",
	}
}

// NewRateLimit reports a 429. limit describes the upstream quota for the endpoint.
func NewRateLimit(limit string) *Error {
	msg := "rate limit exceeded"
	if limit != "" {
		msg += ", maximum " + limit
	}
	return &Error{Kind: KindRateLimit, Status: http.StatusTooManyRequests, Message: msg}
}

// NewBadRequest reports a 400 carrying the upstream detail messages.
func NewBadRequest(details ...string) *Error {
	return &Error{
		Kind:    KindBadRequest,
		Status:  http.StatusBadRequest,
		Message: "bad request",
		Details: details,
	}
}

// NewHTTP reports any other non-2xx status.
func NewHTTP(status int, message string) *Error {
	if message == "" {
		message = http.StatusText(status)
	}
	return &Error{
		Kind:    KindHTTP,
		Status:  status,
		Message: fmt.Sprintf("http error %d: %s", status, message),
	}
}

// NewTransport wraps a network level failure. The cause stays reachable via errors.Is/As.
func NewTransport(err error) *Error {
	return &Error{Kind: KindTransport, Message: "request failed", Err: err}
}

// KindOf returns the kind of err, or "" when err is not an upstream error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}
