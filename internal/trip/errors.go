package trip

import (
	"errors"
)

// ErrMissingCredential indicates the provider credential is not configured.
var ErrMissingCredential = errors.New("GOOGLE_MAPS_API_KEY is not configured")

// ValidationError names the first request field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ConfigurationError is returned for every request while the service is
// misconfigured. It is never retried.
type ConfigurationError struct {
	Err error
}

func (e *ConfigurationError) Error() string {
	return "service misconfigured: " + e.Err.Error()
}

func (e *ConfigurationError) Unwrap() error {
	return e.Err
}
