package apperror

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound            = errors.New("not found")
	ErrValidation          = errors.New("validation error")
	ErrUnsupportedLanguage = errors.New("unsupported script language")
	ErrTransport           = errors.New("transport error")
	ErrExecution           = errors.New("script execution failed")
	ErrInternal            = errors.New("internal error")
)

// AppError carries a sentinel category, a human-readable message, and the
// pipeline stage that produced the failure (resolve/fetch/execute/coerce/sign).
type AppError struct {
	Err     error  // sentinel category
	Message string // human-readable error message
	Stage   string // optional: originating pipeline stage or field
}

func (e *AppError) Error() string {
	if e.Stage != "" {
		return fmt.Sprintf("%s: %s", e.Stage, e.Message)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource, id string) *AppError {
	return &AppError{
		Err:     ErrNotFound,
		Message: fmt.Sprintf("%s not found with id %s", resource, id),
	}
}

func ValidationFailed(field, message string) *AppError {
	return &AppError{
		Err:     ErrValidation,
		Message: message,
		Stage:   field,
	}
}

func UnsupportedLanguage(lang string) *AppError {
	return &AppError{
		Err:     ErrUnsupportedLanguage,
		Message: fmt.Sprintf("script language %q is not supported", lang),
	}
}

// Transport wraps a storage/network failure from an external collaborator.
// The core never retries; the caller decides what to do with it.
func Transport(stage string, err error) *AppError {
	return &AppError{
		Err:     ErrTransport,
		Message: err.Error(),
		Stage:   stage,
	}
}

// Execution wraps a script or coercion failure with its pipeline stage.
func Execution(stage string, err error) *AppError {
	return &AppError{
		Err:     ErrExecution,
		Message: err.Error(),
		Stage:   stage,
	}
}

// Internal wraps an unexpected failure (e.g. the isolation boundary broke).
func Internal(stage string, err error) *AppError {
	return &AppError{
		Err:     ErrInternal,
		Message: err.Error(),
		Stage:   stage,
	}
}
