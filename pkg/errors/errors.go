package errors

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrIllegalState = errors.New("illegal lock state")
	ErrNotOwner     = errors.New("lock not held by caller")
	ErrQueueClosed  = errors.New("work queue is shut down")
	ErrFetchFailed  = errors.New("fetch failed")
	ErrNotHTML      = errors.New("response is not html")
	ErrUnknownSink  = errors.New("unknown output sink")
	ErrInternal     = errors.New("internal error")
)

const (
	ExitOK       = 0
	ExitFailure  = 1
	ExitUsage    = 2
	ExitInternal = 3
)

type AppError struct {
	Err      error
	Message  string
	ExitCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, exitCode int, message string) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  message,
		ExitCode: exitCode,
	}
}

func Newf(sentinel error, exitCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:      sentinel,
		Message:  fmt.Sprintf(format, args...),
		ExitCode: exitCode,
	}
}

func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.ExitCode
	}

	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrUnknownSink):
		return ExitUsage
	case errors.Is(err, ErrIllegalState), errors.Is(err, ErrNotOwner), errors.Is(err, ErrInternal):
		return ExitInternal
	default:
		return ExitFailure
	}
}
