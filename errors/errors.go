// Package errors provides error types and handling for artifact staging operations.
package errors

import (
	"errors"
	"fmt"
)

// Error represents a staging operation error with context about the operation
// that failed. It wraps the underlying error (AWS SDK, filesystem, or local)
// with the staging location and object key involved.
type Error struct {
	// Op is the operation that failed (e.g., "stageFiles", "probe", "upload")
	Op string

	// Location is the staging base location (if applicable)
	Location string

	// Key is the destination object key (if applicable)
	Key string

	// Err is the underlying error
	Err error
}

// Error implements the error interface by providing a formatted error message.
func (e *Error) Error() string {
	if e.Location != "" && e.Key != "" {
		return fmt.Sprintf("staging.%s %s/%s: %v", e.Op, e.Location, e.Key, e.Err)
	}
	if e.Location != "" {
		return fmt.Sprintf("staging.%s location %s: %v", e.Op, e.Location, e.Err)
	}
	if e.Key != "" {
		return fmt.Sprintf("staging.%s object %s: %v", e.Op, e.Key, e.Err)
	}
	return fmt.Sprintf("staging.%s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error chaining support.
func (e *Error) Unwrap() error {
	return e.Err
}

// WithLocation adds staging location context to an existing error.
func (e *Error) WithLocation(location string) *Error {
	e.Location = location
	return e
}

// WithKey adds object key context to an existing error.
func (e *Error) WithKey(key string) *Error {
	e.Key = key
	return e
}

// WithMessage wraps the underlying error with a custom message.
func (e *Error) WithMessage(message string) *Error {
	e.Err = fmt.Errorf("%s: %w", message, e.Err)
	return e
}

// NewError creates a new Error with the given operation and underlying error.
func NewError(op string, err error) *Error {
	return &Error{
		Op:  op,
		Err: err,
	}
}

// NewObjectError creates a new Error with location and key context.
func NewObjectError(op, location, key string, err error) *Error {
	return &Error{
		Op:       op,
		Location: location,
		Key:      key,
		Err:      err,
	}
}

// Sentinel errors for staging operation failures.
// These can be used with errors.Is() for error checking.
var (
	// ErrInvalidResourceSpec indicates that a resource entry could not be
	// resolved to a readable local source
	ErrInvalidResourceSpec = errors.New("staging: invalid resource spec")

	// ErrInvalidConfiguration indicates that the staging configuration is
	// invalid (non-positive buffer size, missing destination, etc.)
	ErrInvalidConfiguration = errors.New("staging: invalid configuration")

	// ErrInvalidLocation indicates that the staging base location is malformed
	ErrInvalidLocation = errors.New("staging: invalid staging location")

	// ErrProbeFailed indicates that an existence check could not be answered
	// definitively; it does not mean the object is absent
	ErrProbeFailed = errors.New("staging: existence probe failed")

	// ErrUploadFailed indicates that a write to the destination did not complete
	ErrUploadFailed = errors.New("staging: upload failed")

	// ErrInvalidObjectKey indicates that a derived destination key is invalid
	ErrInvalidObjectKey = errors.New("staging: invalid object key")

	// ErrInvalidBucketName indicates that the destination bucket name is invalid
	ErrInvalidBucketName = errors.New("staging: invalid bucket name")
)

// IsInvalidResourceSpec checks if an error indicates an unresolvable resource entry.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidResourceSpec(err error) bool {
	return errors.Is(err, ErrInvalidResourceSpec)
}

// IsInvalidConfiguration checks if an error indicates invalid staging configuration.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsInvalidConfiguration(err error) bool {
	return errors.Is(err, ErrInvalidConfiguration)
}

// IsProbeFailed checks if an error indicates an indeterminate existence probe.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsProbeFailed(err error) bool {
	return errors.Is(err, ErrProbeFailed)
}

// IsUploadFailed checks if an error indicates an incomplete destination write.
// This is a convenience function that handles both sentinel errors and wrapped errors.
func IsUploadFailed(err error) bool {
	return errors.Is(err, ErrUploadFailed)
}
