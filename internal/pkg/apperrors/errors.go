package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation = errors.New("validation failed")

	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNoProfile signals the absent state: no customer profile has ever
	// been saved, or the backing store could not be read back.
	ErrNoProfile = errors.New("no customer profile")

	ErrPersistence = errors.New("persistence error")

	ErrDatabase = errors.New("database error")

	// ErrAssemblyInvariant marks a contract break between validation and
	// prompt assembly. It is never recoverable by the caller.
	ErrAssemblyInvariant = errors.New("prompt assembly invariant violated")

	ErrInternalServer = errors.New("internal server error")

	ErrUnauthorized = errors.New("unauthorized")
)

// MissingFieldsError reports a submission rejected because required fields
// are absent. Fields keeps the declared order of the required-field list.
type MissingFieldsError struct {
	Fields []string
}

func (e *MissingFieldsError) Error() string {
	return fmt.Sprintf("missing required fields: %s", strings.Join(e.Fields, ", "))
}

func (e *MissingFieldsError) Unwrap() error {
	return ErrValidation
}

func NewMissingFieldsError(fields []string) error {
	return &MissingFieldsError{Fields: fields}
}

type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("[%s] %s", e.Code, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

func WrapPersistenceError(cause error, message string) error {
	return &AppError{
		Code:    "STORE_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrPersistence, cause),
	}
}

func WrapDatabaseError(cause error, message string) error {
	return &AppError{
		Code:    "DB_ERROR",
		Message: message,
		Cause:   fmt.Errorf("%w: %w", ErrDatabase, cause),
	}
}
