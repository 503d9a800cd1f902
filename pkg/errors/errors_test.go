package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorString(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{New(ErrCodeInvalidInput, "width %d", -1), "INVALID_INPUT: width -1"},
		{Wrap(ErrCodeFileNotFound, errors.New("enoent"), "open %s", "a.csv"), "FILE_NOT_FOUND: open a.csv: enoent"},
		{&RateLimitedError{RetryAfter: 60}, "rate limited: retry after 60 seconds"},
		{&RateLimitedError{}, "rate limited"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(ErrCodeNetwork, cause, "fetch %s", "https://example.com/t.csv")

	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false")
	}
	if errors.Unwrap(err) != cause {
		t.Errorf("Unwrap() = %v", errors.Unwrap(err))
	}
	if err.Message != "fetch https://example.com/t.csv" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestCodeLookup(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code Code
	}{
		{"direct", New(ErrCodeInvalidSource, "x"), ErrCodeInvalidSource},
		{"outer wins", Wrap(ErrCodeNetwork, New(ErrCodeInvalidInput, "inner"), "outer"), ErrCodeNetwork},
		{"through fmt", fmt.Errorf("load: %w", New(ErrCodeSessionExpired, "x")), ErrCodeSessionExpired},
		{"rate limited", fmt.Errorf("fetch: %w", &RateLimitedError{RetryAfter: 3}), ErrCodeRateLimited},
		{"plain", errors.New("plain"), ""},
		{"nil", nil, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.code {
				t.Errorf("GetCode() = %q, want %q", got, tt.code)
			}
			if tt.code != "" && !Is(tt.err, tt.code) {
				t.Errorf("Is(%q) = false", tt.code)
			}
			if Is(tt.err, ErrCodeUnsupported) {
				t.Error("Is(UNSUPPORTED) = true")
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	if got := UserMessage(Wrap(ErrCodeInvalidConfig, errors.New("yaml: line 3"), "bad config")); got != "bad config" {
		t.Errorf("coded: %q", got)
	}
	if got := UserMessage(errors.New("plain error")); got != "plain error" {
		t.Errorf("plain: %q", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{New(ErrCodeInvalidInput, "x"), http.StatusBadRequest},
		{New(ErrCodeInvalidConfig, "x"), http.StatusBadRequest},
		{New(ErrCodeSessionNotFound, "x"), http.StatusNotFound},
		{Wrap(ErrCodeFileNotFound, errors.New("enoent"), "x"), http.StatusNotFound},
		{New(ErrCodeSessionExpired, "x"), http.StatusGone},
		{&RateLimitedError{RetryAfter: 5}, http.StatusTooManyRequests},
		{New(ErrCodeNetwork, "x"), http.StatusBadGateway},
		{New(ErrCodeTimeout, "x"), http.StatusGatewayTimeout},
		{New(ErrCodeUnsupported, "x"), http.StatusNotImplemented},
		{New(Code("SOMETHING_NEW"), "x"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.err); got != tt.want {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}
