package oerror

import (
	"errors"
	"fmt"
)

// PhysError is a generic error raised by physcore that does not belong to a more specific category.
type PhysError struct {
	Err string
}

// Text creates a new PhysError with msg as message. msg is not interpreted as a format.
func Text(msg string) *PhysError {
	return &PhysError{Err: msg}
}

// New creates a new PhysError with the message formatted from the arguments passed.
func New(format string, args ...any) *PhysError {
	if len(args) == 0 {
		return &PhysError{Err: format}
	}
	return &PhysError{Err: fmt.Sprintf(format, args...)}
}

func (e *PhysError) Error() string {
	return e.Err
}

// ConfigurationError is returned when the simulation was configured in a way that can never make
// progress. It is always returned before any simulation work for the frame has begun.
type ConfigurationError struct {
	// Field is the name of the configuration value that was rejected.
	Field string
	// Value is the rejected value.
	Value any
	// Reason describes why the value was rejected.
	Reason string
}

// NewConfigurationError returns a ConfigurationError for the field and value passed.
func NewConfigurationError(field string, value any, reason string) *ConfigurationError {
	return &ConfigurationError{Field: field, Value: value, Reason: reason}
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration: %s=%v: %s", e.Field, e.Value, e.Reason)
}

// IsConfiguration returns true if err is, or wraps, a ConfigurationError.
func IsConfiguration(err error) bool {
	var cfgErr *ConfigurationError
	return errors.As(err, &cfgErr)
}
