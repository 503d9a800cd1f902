package errors

import (
	"math"
	"strings"
	"testing"
)

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"https", "https://example.com/events.csv", false},
		{"http", "http://example.com/events.csv", false},
		{"upper scheme", "HTTPS://example.com/a.csv", false},

		{"empty", "", true},
		{"ftp", "ftp://example.com", true},
		{"file", "file:///etc/passwd", true},
		{"javascript", "javascript:alert(1)", true},
		{"no scheme", "example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateURL(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateURL(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSourceRef(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"relative file", "data/timeline.csv", false},
		{"absolute file", "/srv/timeline.csv", false},
		{"url", "https://example.org/t.csv", false},

		{"empty", "", true},
		{"blank", "   ", true},
		{"too long", strings.Repeat("a", 3000), true},
		{"newline", "a\nb.csv", true},
		{"null byte", "a\x00b.csv", true},
		{"ftp", "ftp://example.org/t.csv", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSourceRef(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSourceRef(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !Is(err, ErrCodeInvalidSource) {
				t.Errorf("ValidateSourceRef(%q) returned wrong error code: %v", tt.input, err)
			}
		})
	}
}

func TestValidateViewport(t *testing.T) {
	tests := []struct {
		name      string
		w, h, dpr float64
		wantErr   bool
	}{
		{"typical", 1280, 720, 2, false},
		{"dpr zero means default", 800, 600, 0, false},
		{"fractional dpr", 800, 600, 1.5, false},

		{"zero width", 0, 600, 1, true},
		{"negative height", 800, -1, 1, true},
		{"huge", 100000, 600, 1, true},
		{"dpr too high", 800, 600, 10, true},
		{"nan", math.NaN(), 600, 1, true},
		{"inf dpr", 800, 600, math.Inf(1), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateViewport(tt.w, tt.h, tt.dpr)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateViewport(%v, %v, %v) error = %v, wantErr %v", tt.w, tt.h, tt.dpr, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSessionID(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"3f1c2a9e-6b7d-4c1e-9a2b-0d4e5f6a7b8c", false},
		{"", true},
		{"not-a-uuid", true},
		{"3f1c2a9e6b7d4c1e9a2b0d4e5f6a7b8c", true},
		{"../../etc/passwd", true},
	}

	for _, tt := range tests {
		err := ValidateSessionID(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateSessionID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestValidateGroupName(t *testing.T) {
	tests := []struct {
		input   string
		wantErr bool
	}{
		{"Roman Empire", false},
		{"日本", false},
		{"", true},
		{"bad\x07bell", true},
		{strings.Repeat("g", 300), true},
	}

	for _, tt := range tests {
		err := ValidateGroupName(tt.input)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateGroupName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
		}
	}
}

func TestErrorCodesAreUnique(t *testing.T) {
	codes := []Code{
		ErrCodeInvalidInput,
		ErrCodeInvalidFormat,
		ErrCodeInvalidConfig,
		ErrCodeInvalidSource,
		ErrCodeNotFound,
		ErrCodeFileNotFound,
		ErrCodeSessionNotFound,
		ErrCodeNetwork,
		ErrCodeTimeout,
		ErrCodeRateLimited,
		ErrCodeSessionExpired,
		ErrCodeInternal,
		ErrCodeUnsupported,
	}

	seen := make(map[Code]bool)
	for _, code := range codes {
		if seen[code] {
			t.Errorf("Duplicate error code: %s", code)
		}
		seen[code] = true
	}
}
