package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Lookup errors
	ErrNotFound        = errors.New("resource not found")
	ErrColumnNotFound  = fmt.Errorf("%w: column", ErrNotFound)
	ErrResultNotFound  = fmt.Errorf("%w: result", ErrNotFound)
	ErrDuplicateColumn = errors.New("duplicate column name")
	ErrInvalidIndex    = errors.New("index out of range")

	// Type errors
	ErrTypeMismatch = errors.New("column type mismatch")

	// Data errors
	ErrInvalidData     = errors.New("invalid data")
	ErrSingularMatrix  = errors.New("matrix is singular and cannot be inverted")
	ErrDegenerateGroup = errors.New("degenerate group")
)

// Error constructors with context
func NewColumnNotFoundError(name string) error {
	return fmt.Errorf("%w %q", ErrColumnNotFound, name)
}

func NewTypeMismatchError(column string, expected, actual fmt.Stringer) error {
	return fmt.Errorf("%w: column %q is %s, expected %s", ErrTypeMismatch, column, actual, expected)
}

func NewInvalidDataError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidData, fmt.Sprintf(format, args...))
}

func NewInvalidIndexError(index, length int) error {
	return fmt.Errorf("%w: %d/%d", ErrInvalidIndex, index, length)
}

func NewDegenerateGroupError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrDegenerateGroup, fmt.Sprintf(format, args...))
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsTypeMismatch(err error) bool {
	return errors.Is(err, ErrTypeMismatch)
}

// IsDataError reports whether err stems from the input values rather than
// from a lookup or type problem.
func IsDataError(err error) bool {
	return errors.Is(err, ErrInvalidData) ||
		errors.Is(err, ErrInvalidIndex) ||
		errors.Is(err, ErrSingularMatrix) ||
		errors.Is(err, ErrDegenerateGroup)
}
