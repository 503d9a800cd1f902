// Package errors defines the coded errors shared by the CLI and the HTTP
// viewer.
//
// Every failure a user can act on carries a [Code]. The viewer turns the code
// into a status with [HTTPStatus] and a body with [UserMessage]; the CLI
// prints the message and exits non-zero.
//
//	err := errors.New(errors.ErrCodeInvalidInput, "viewport width must be positive, got %v", w)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    ...
//	}
//
//	err = errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code is a stable, machine-readable error kind. Codes are part of the
// viewer's JSON error body.
type Code string

const (
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidConfig Code = "INVALID_CONFIG"
	ErrCodeInvalidSource Code = "INVALID_SOURCE"

	ErrCodeNotFound        Code = "NOT_FOUND"
	ErrCodeFileNotFound    Code = "FILE_NOT_FOUND"
	ErrCodeSessionNotFound Code = "SESSION_NOT_FOUND"
	ErrCodeSessionExpired  Code = "SESSION_EXPIRED"

	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeTimeout     Code = "TIMEOUT"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
)

var codeStatus = map[Code]int{
	ErrCodeInvalidInput:    http.StatusBadRequest,
	ErrCodeInvalidFormat:   http.StatusBadRequest,
	ErrCodeInvalidConfig:   http.StatusBadRequest,
	ErrCodeInvalidSource:   http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeFileNotFound:    http.StatusNotFound,
	ErrCodeSessionNotFound: http.StatusNotFound,
	ErrCodeSessionExpired:  http.StatusGone,
	ErrCodeNetwork:         http.StatusBadGateway,
	ErrCodeTimeout:         http.StatusGatewayTimeout,
	ErrCodeRateLimited:     http.StatusTooManyRequests,
	ErrCodeUnsupported:     http.StatusNotImplemented,
	ErrCodeInternal:        http.StatusInternalServerError,
}

// coder is implemented by error types that carry their code as a method.
type coder interface {
	error
	Code() Code
}

// Error pairs a code with a message and an optional cause.
type Error struct {
	Code    Code
	Message string
	Cause   error
}

func (e *Error) Error() string {
	s := string(e.Code) + ": " + e.Message
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *Error) Unwrap() error { return e.Cause }

// New returns an error with code and a formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...)}
}

// Wrap is New with a cause kept for errors.Is and errors.As.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	e := New(code, format, args...)
	e.Cause = cause
	return e
}

// RateLimitedError is returned when a remote source answers 429.
// RetryAfter is in seconds; zero means the server gave no hint.
type RateLimitedError struct {
	RetryAfter int
}

func (e *RateLimitedError) Error() string {
	if e.RetryAfter <= 0 {
		return "rate limited"
	}
	return fmt.Sprintf("rate limited: retry after %d seconds", e.RetryAfter)
}

func (e *RateLimitedError) Code() Code { return ErrCodeRateLimited }

// outermost returns the code of the first coded error in err's chain.
func outermost(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// Is reports whether the outermost coded error in err's chain has code.
func Is(err error, code Code) bool {
	got := outermost(err)
	return got != "" && got == code
}

// GetCode returns the outermost code in err's chain, or "" if there is none.
func GetCode(err error) Code {
	return outermost(err)
}

// UserMessage returns err's message without the code prefix or cause.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps err to the status the viewer responds with. Uncoded errors
// are 500s.
func HTTPStatus(err error) int {
	if status, ok := codeStatus[GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}
