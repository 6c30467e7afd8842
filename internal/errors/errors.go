package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"

	"goancova/domain/core"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an error with additional context, keeping the code of an
// AppError cause
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeOf(err),
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// GetCode returns the error code if err is or wraps an AppError, otherwise
// the code derived from the domain error it wraps
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeOf(err)
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeDatabaseError   = "DATABASE_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"
	CodeTypeMismatch    = "TYPE_MISMATCH"
	CodeInvalidData     = "INVALID_DATA"
	CodeSingularMatrix  = "SINGULAR_MATRIX"
	CodeDegenerateGroup = "DEGENERATE_GROUP"
	CodeConflict        = "CONFLICT"
)

// CodeOf maps domain sentinel errors to application codes
func CodeOf(err error) string {
	switch {
	case err == nil:
		return ""
	case stderrors.Is(err, core.ErrNotFound):
		return CodeNotFound
	case stderrors.Is(err, core.ErrTypeMismatch):
		return CodeTypeMismatch
	case stderrors.Is(err, core.ErrSingularMatrix):
		return CodeSingularMatrix
	case stderrors.Is(err, core.ErrDegenerateGroup):
		return CodeDegenerateGroup
	case stderrors.Is(err, core.ErrInvalidData), stderrors.Is(err, core.ErrInvalidIndex):
		return CodeInvalidData
	case stderrors.Is(err, core.ErrDuplicateColumn):
		return CodeConflict
	default:
		return CodeInternalError
	}
}

// HTTPStatus returns the response status for an error code
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeInvalidInput:
		return http.StatusBadRequest
	case CodeTypeMismatch, CodeInvalidData, CodeSingularMatrix, CodeDegenerateGroup:
		return http.StatusUnprocessableEntity
	case CodeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func DatabaseError(message string, cause error) *AppError {
	return &AppError{Code: CodeDatabaseError, Message: message, Cause: cause}
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}
