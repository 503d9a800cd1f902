package errors

import (
	"math"
	"strings"
	"unicode"

	"github.com/google/uuid"
)

// Viewport limits accepted from clients.
const (
	MaxViewportSize = 16384
	MaxDPR          = 4
)

// ValidateURL validates a URL string for safety.
// It ensures the URL has a safe scheme (http or https).
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidSource, "URL cannot be empty")
	}

	// Simple scheme validation without full URL parsing
	lower := strings.ToLower(rawURL)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		return New(ErrCodeInvalidSource, "URL must use http or https scheme")
	}

	return nil
}

// ValidateSourceRef validates a data source reference: a file path or an
// http(s) URL.
//
// Validation rules:
//   - Reference cannot be empty
//   - Maximum length of 2048 characters
//   - No null bytes or control characters
//   - A reference with a scheme must be http or https
func ValidateSourceRef(ref string) error {
	if strings.TrimSpace(ref) == "" {
		return New(ErrCodeInvalidSource, "source cannot be empty")
	}

	const maxRefLength = 2048
	if len(ref) > maxRefLength {
		return New(ErrCodeInvalidSource, "source too long (max %d characters)", maxRefLength)
	}

	for _, r := range ref {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidSource, "source contains invalid characters")
		}
	}

	if strings.Contains(ref, "://") {
		return ValidateURL(ref)
	}
	return nil
}

// ValidateViewport checks a logical viewport size and device pixel ratio.
// A zero DPR is accepted and means 1.
func ValidateViewport(width, height, dpr float64) error {
	for _, v := range []float64{width, height, dpr} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return New(ErrCodeInvalidInput, "viewport values must be finite")
		}
	}
	if width <= 0 || height <= 0 {
		return New(ErrCodeInvalidInput, "viewport must be positive, got %vx%v", width, height)
	}
	if width > MaxViewportSize || height > MaxViewportSize {
		return New(ErrCodeInvalidInput, "viewport too large (max %d px per side)", MaxViewportSize)
	}
	if dpr < 0 || dpr > MaxDPR {
		return New(ErrCodeInvalidInput, "dpr must be between 0 and %d, got %v", MaxDPR, dpr)
	}
	return nil
}

// ValidateSessionID checks that id is a canonical UUID.
func ValidateSessionID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "session id cannot be empty")
	}
	if _, err := uuid.Parse(id); err != nil || len(id) != 36 {
		return New(ErrCodeInvalidInput, "malformed session id")
	}
	return nil
}

// ValidateGroupName checks a legend group key received from a client.
func ValidateGroupName(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "group cannot be empty")
	}
	if len(name) > 256 {
		return New(ErrCodeInvalidInput, "group name too long (max 256 characters)")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "group name contains invalid control characters")
		}
	}
	return nil
}
