// internal/errors/errors.go
package errors

import (
	"errors"
	"fmt"
)

// ErrorType categorizes application errors.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation_error"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeError      ErrorType = "processing_error"
	ErrorTypeTimeout    ErrorType = "timeout"

	// Rewrite-collaborator failures, kept apart so the API layer can
	// tell "service unreachable" from "service rejected the request".
	ErrorTypeUnreachable ErrorType = "service_unreachable"
	ErrorTypeRejected    ErrorType = "service_rejected"
)

// AppError is the application error envelope.
type AppError struct {
	Type    ErrorType
	Message string
	Err     error
	Code    string
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates an AppError of the given type.
func NewAppError(errType ErrorType, message string, originalError error) *AppError {
	return &AppError{
		Type:    errType,
		Message: message,
		Err:     originalError,
		Code:    generateErrorCode(errType),
	}
}

// NewValidationError flags bad input at a boundary.
func NewValidationError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeValidation, message, originalError)
}

// NewNotFoundError flags a missing resource.
func NewNotFoundError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeNotFound, message, originalError)
}

// NewProcessingError flags an internal failure.
func NewProcessingError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeError, message, originalError)
}

// NewUnreachableError flags a collaborator that could not be reached at
// the transport level.
func NewUnreachableError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeUnreachable, message, originalError)
}

// NewRejectedError flags a collaborator that answered with an error.
func NewRejectedError(message string, originalError error) *AppError {
	return NewAppError(ErrorTypeRejected, message, originalError)
}

// IsValidationError reports whether err is a validation error.
func IsValidationError(err error) bool {
	return isType(err, ErrorTypeValidation)
}

// IsNotFoundError reports whether err is a not-found error.
func IsNotFoundError(err error) bool {
	return isType(err, ErrorTypeNotFound)
}

// IsUnreachableError reports whether err is a transport failure toward
// a collaborator.
func IsUnreachableError(err error) bool {
	return isType(err, ErrorTypeUnreachable)
}

// IsRejectedError reports whether err is a collaborator rejection.
func IsRejectedError(err error) bool {
	return isType(err, ErrorTypeRejected)
}

func isType(err error, errType ErrorType) bool {
	var appError *AppError
	if errors.As(err, &appError) {
		return appError.Type == errType
	}
	return false
}

func generateErrorCode(errType ErrorType) string {
	switch errType {
	case ErrorTypeValidation:
		return "VALIDATION_ERROR"
	case ErrorTypeNotFound:
		return "NOT_FOUND"
	case ErrorTypeError:
		return "PROCESSING_ERROR"
	case ErrorTypeTimeout:
		return "TIMEOUT"
	case ErrorTypeUnreachable:
		return "SERVICE_UNREACHABLE"
	case ErrorTypeRejected:
		return "SERVICE_REJECTED"
	default:
		return "UNKNOWN_ERROR"
	}
}

// WrapError wraps err in an AppError, preserving an existing AppError's
// type and code.
func WrapError(err error, message string, errType ErrorType) error {
	if err == nil {
		return nil
	}

	var appError *AppError
	if errors.As(err, &appError) {
		return &AppError{
			Type:    appError.Type,
			Message: fmt.Sprintf("%s: %s", message, appError.Message),
			Err:     appError,
			Code:    appError.Code,
		}
	}

	return NewAppError(errType, message, err)
}
