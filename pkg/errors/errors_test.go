package errors

import (
	"errors"
	"net/http"
	"testing"

	"github.com/matzehuels/pretree/pkg/engine"
	"github.com/matzehuels/pretree/pkg/registry"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeInvalidInput, "test message: %s", "value")

	if err.Code != ErrCodeInvalidInput {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeInvalidInput)
	}

	if err.Message != "test message: value" {
		t.Errorf("Message = %v, want %v", err.Message, "test message: value")
	}

	expected := "INVALID_INPUT: test message: value"
	if err.Error() != expected {
		t.Errorf("Error() = %v, want %v", err.Error(), expected)
	}
}

func TestWrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := Wrap(ErrCodeMalformedTree, cause, "failed to decode")

	if err.Code != ErrCodeMalformedTree {
		t.Errorf("Code = %v, want %v", err.Code, ErrCodeMalformedTree)
	}

	if err.Cause != cause {
		t.Errorf("Cause = %v, want %v", err.Cause, cause)
	}

	// Test Unwrap
	unwrapped := errors.Unwrap(err)
	if unwrapped != cause {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, cause)
	}

	// Test errors.Is with wrapped error
	if !errors.Is(err, cause) {
		t.Error("errors.Is(err, cause) = false, want true")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		code     Code
		expected bool
	}{
		{
			name:     "matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeInvalidInput,
			expected: true,
		},
		{
			name:     "non-matching code",
			err:      New(ErrCodeInvalidInput, "test"),
			code:     ErrCodeMalformedTree,
			expected: false,
		},
		{
			name:     "wrapped error",
			err:      Wrap(ErrCodeMalformedTree, New(ErrCodeInvalidInput, "inner"), "outer"),
			code:     ErrCodeMalformedTree,
			expected: true,
		},
		{
			name:     "non-Error type",
			err:      errors.New("plain error"),
			code:     ErrCodeInvalidInput,
			expected: false,
		},
		{
			name:     "nil error",
			err:      nil,
			code:     ErrCodeInvalidInput,
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGetCode(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{
			name:     "Error type",
			err:      New(ErrCodeDocumentNotFound, "test"),
			expected: ErrCodeDocumentNotFound,
		},
		{
			name:     "plain error",
			err:      errors.New("plain"),
			expected: "",
		},
		{
			name:     "nil",
			err:      nil,
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetCode(tt.err); got != tt.expected {
				t.Errorf("GetCode() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidFormat, "unknown format")
	if got := UserMessage(err); got != "unknown format" {
		t.Errorf("UserMessage() = %v, want unknown format", got)
	}
	plain := errors.New("plain error")
	if got := UserMessage(plain); got != "plain error" {
		t.Errorf("UserMessage() = %v, want plain error", got)
	}
}

func TestFromCore(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected Code
	}{
		{"unregistered type", registry.ErrUnregisteredType, ErrCodeUnregisteredType},
		{"unknown version", registry.ErrUnknownTypeVersion, ErrCodeUnknownTypeVersion},
		{"dangling reference", engine.ErrDanglingReference, ErrCodeDanglingReference},
		{"malformed tree", engine.ErrMalformedTree, ErrCodeMalformedTree},
		{"unknown cause", errors.New("boom"), ErrCodeInternal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coded := FromCore(tt.err)
			if coded.Code != tt.expected {
				t.Errorf("FromCore().Code = %v, want %v", coded.Code, tt.expected)
			}
			if !errors.Is(coded, tt.err) {
				t.Errorf("FromCore() does not wrap the cause")
			}
		})
	}

	if FromCore(nil) != nil {
		t.Errorf("FromCore(nil) != nil")
	}

	// An already-coded error passes through untouched.
	orig := New(ErrCodeDocumentNotFound, "gone")
	if got := FromCore(orig); got != orig {
		t.Errorf("FromCore(coded) = %v, want the original", got)
	}
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		code     Code
		expected int
	}{
		{ErrCodeMalformedTree, http.StatusBadRequest},
		{ErrCodeUnregisteredType, http.StatusBadRequest},
		{ErrCodeDocumentNotFound, http.StatusNotFound},
		{ErrCodeUnsupported, http.StatusUnprocessableEntity},
		{ErrCodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := HTTPStatus(tt.code); got != tt.expected {
			t.Errorf("HTTPStatus(%v) = %d, want %d", tt.code, got, tt.expected)
		}
	}
}
