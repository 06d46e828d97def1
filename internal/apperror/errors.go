package apperror

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an application error for the HTTP boundary.
type Kind int

const (
	KindInternal Kind = iota
	KindUnauthenticated
	KindValidation
	KindNotFound
	KindConflict
	KindUploadFailure
)

// Error represents an application error
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Status maps the error kind to an HTTP status code.
// Conflicts are reported as 400 to match what existing clients expect.
func (e *Error) Status() int {
	switch e.Kind {
	case KindUnauthenticated:
		return http.StatusUnauthorized
	case KindValidation, KindConflict:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func newError(kind Kind, msg string, err error) *Error {
	return &Error{Kind: kind, Message: msg, Err: err}
}

func Unauthenticated(msg string) *Error { return newError(KindUnauthenticated, msg, nil) }

func Validation(msg string) *Error { return newError(KindValidation, msg, nil) }

func NotFound(msg string) *Error { return newError(KindNotFound, msg, nil) }

func Conflict(msg string) *Error { return newError(KindConflict, msg, nil) }

func UploadFailure(msg string, err error) *Error { return newError(KindUploadFailure, msg, err) }

func Internal(msg string, err error) *Error { return newError(KindInternal, msg, err) }

// As extracts an *Error from err, returning nil when err carries none.
func As(err error) *Error {
	var appErr *Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return nil
}

// IsKind reports whether err is an application error of the given kind.
func IsKind(err error, kind Kind) bool {
	appErr := As(err)
	return appErr != nil && appErr.Kind == kind
}
