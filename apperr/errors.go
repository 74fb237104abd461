// Package apperr holds the error kinds shared by handlers, services and commands.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or malformed input. Maps to a 4xx response.
type ValidationError struct {
	Message string
	Err     error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ValidationError) Unwrap() error { return e.Err }

// StorageError reports a failed write or read against the persistence layer.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string { return fmt.Sprintf("storage: %s: %v", e.Op, e.Err) }

func (e *StorageError) Unwrap() error { return e.Err }

// SubmissionError reports a failed on-chain call. It is returned as data per alert
// and never fails the surrounding request.
type SubmissionError struct {
	SensorType string
	Err        error
}

func (e *SubmissionError) Error() string {
	return fmt.Sprintf("submission %s: %v", e.SensorType, e.Err)
}

func (e *SubmissionError) Unwrap() error { return e.Err }

// AuthorizationError reports an identity that does not hold the required on-chain role.
type AuthorizationError struct {
	Expected string
	Actual   string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("authorization: signer %s is not %s", e.Actual, e.Expected)
}

func Validation(msg string) error { return &ValidationError{Message: msg} }

func Storage(op string, err error) error { return &StorageError{Op: op, Err: err} }

// IsValidation reports whether err is, or wraps, a ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsStorage(err error) bool {
	var target *StorageError
	return errors.As(err, &target)
}
