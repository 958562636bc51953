package core

import (
	"errors"
	"net/http"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrStorage         = errors.New("storage error")
	ErrInvalidInput    = errors.New("invalid input")
	ErrExternalProcess = errors.New("external process error")
)

// AppError is the error type returned by services.
// Kind is one of the sentinels above; Code is the HTTP status to report.
type AppError struct {
	Kind    error
	Message string
	Code    int
	Err     error

	// Diagnostics from a failed external process.
	Output   string
	ExitCode int
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *AppError) Unwrap() []error {
	if e.Err != nil {
		return []error{e.Kind, e.Err}
	}
	return []error{e.Kind}
}

// NewValidationError builds a 400 error for bad or missing input
func NewValidationError(msg string) *AppError {
	return &AppError{Kind: ErrValidation, Message: msg, Code: http.StatusBadRequest}
}

// NewStorageError wraps a database failure as a 500 error
func NewStorageError(msg string, err error) *AppError {
	return &AppError{Kind: ErrStorage, Message: msg, Code: http.StatusInternalServerError, Err: err}
}

// NewInvalidInputError builds a 400 error for disallowed characters
func NewInvalidInputError(msg string) *AppError {
	return &AppError{Kind: ErrInvalidInput, Message: msg, Code: http.StatusBadRequest}
}

// NewExternalProcessError builds a 500 error carrying the process diagnostics
func NewExternalProcessError(msg, output string, exitCode int, err error) *AppError {
	return &AppError{
		Kind:     ErrExternalProcess,
		Message:  msg,
		Code:     http.StatusInternalServerError,
		Err:      err,
		Output:   output,
		ExitCode: exitCode,
	}
}

// StatusCode returns the HTTP status for err, 500 when it is not an AppError.
func StatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) && appErr.Code != 0 {
		return appErr.Code
	}
	return http.StatusInternalServerError
}
