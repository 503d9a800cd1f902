package cache

import "errors"

var (
	// ErrNotFound is returned when a requested item does not exist.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned for fetch failures: timeouts, refused connections
	// and unexpected statuses.
	ErrNetwork = errors.New("network error")
)

// RetryableError marks a transient failure that a fetch may repeat.
type RetryableError struct{ Err error }

// Retryable marks err as transient. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err, or anything it wraps, was marked with
// [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}
