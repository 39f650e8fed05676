// Package provider holds the error taxonomy shared by the geocoding, routing,
// weather and places clients.
package provider

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
)

// Sentinel errors for provider calls.
var (
	// ErrUnavailable indicates the provider is down, timed out, or the circuit breaker is open.
	ErrUnavailable = errors.New("provider unavailable")
	// ErrNoResults indicates the provider answered but returned nothing usable.
	ErrNoResults = errors.New("provider returned no usable data")
	// ErrRateLimited indicates the API quota has been exceeded.
	ErrRateLimited = errors.New("provider rate limit exceeded")
	// ErrRejected indicates the provider refused the request (bad input or credentials).
	ErrRejected = errors.New("provider rejected request")
)

// Error provides detailed error information from an external provider.
type Error struct {
	Provider string // Provider that generated the error
	Code     string // Short machine-readable code
	Status   int    // HTTP status returned by the provider, 0 if none
	Message  string // Human-readable error message
	Err      error  // Underlying error
}

func (e *Error) Error() string {
	msg := e.Provider + ": " + e.Message
	if e.Status != 0 {
		msg = fmt.Sprintf("%s: %s (status %d)", e.Provider, e.Message, e.Status)
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// IsRetryable returns true if the error is transient and the request can be retried.
func (e *Error) IsRetryable() bool {
	return errors.Is(e.Err, ErrUnavailable) || errors.Is(e.Err, ErrRateLimited)
}

// FromStatus maps a non-2xx provider status to an Error.
func FromStatus(providerName string, status int, body string) *Error {
	e := &Error{
		Provider: providerName,
		Code:     fmt.Sprintf("HTTP_%d", status),
		Status:   status,
		Message:  body,
	}
	if e.Message == "" {
		e.Message = http.StatusText(status)
	}

	switch {
	case status == http.StatusTooManyRequests:
		e.Code = "RATE_LIMIT"
		e.Err = ErrRateLimited
	case status == http.StatusNotFound:
		e.Code = "NOT_FOUND"
		e.Err = ErrNoResults
	case status >= 500:
		e.Code = fmt.Sprintf("SERVER_%d", status)
		e.Err = ErrUnavailable
	default:
		e.Err = ErrRejected
	}
	return e
}

// Unreachable wraps a transport failure. Query strings are dropped from
// the failing URL since some providers take the key as a parameter.
func Unreachable(providerName string, err error) *Error {
	return &Error{
		Provider: providerName,
		Code:     "REQUEST_FAILED",
		Message:  "failed to reach provider",
		Err:      fmt.Errorf("%w: %w", ErrUnavailable, redactURL(err)),
	}
}

func redactURL(err error) error {
	var uerr *url.Error
	if !errors.As(err, &uerr) {
		return err
	}
	u, perr := url.Parse(uerr.URL)
	if perr != nil || u.RawQuery == "" {
		return err
	}
	u.RawQuery = ""
	return &url.Error{Op: uerr.Op, URL: u.String(), Err: uerr.Err}
}

// NoResults builds an Error for an empty but successful provider answer.
func NoResults(providerName, message string) *Error {
	return &Error{
		Provider: providerName,
		Code:     "NO_RESULTS",
		Message:  message,
		Err:      ErrNoResults,
	}
}
