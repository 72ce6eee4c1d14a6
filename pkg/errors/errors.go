package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	// ErrDocumentExists and ErrDocumentNotFound are refinements of
	// ErrInvalidInput: errors.Is matches both the refinement and the parent.
	ErrDocumentExists   = fmt.Errorf("%w: document already exists", ErrInvalidInput)
	ErrDocumentNotFound = fmt.Errorf("%w: document not found", ErrInvalidInput)
)

const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitInvalidInput = 2
)

type AppError struct {
	Err     error
	Message string
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, message string) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: message,
	}
}

func Newf(sentinel error, format string, args ...any) *AppError {
	return &AppError{
		Err:     sentinel,
		Message: fmt.Sprintf(format, args...),
	}
}

// IsInvalidInput reports whether err belongs to the invalid-input family.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

func ExitCode(err error) int {
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, ErrInvalidInput):
		return ExitInvalidInput
	default:
		return ExitFailure
	}
}
