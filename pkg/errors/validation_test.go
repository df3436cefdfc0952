package errors

import (
	"strings"
	"testing"
)

func TestValidateFormat(t *testing.T) {
	for _, format := range []string{"json", "bson", "JSON"} {
		if err := ValidateFormat(format); err != nil {
			t.Errorf("ValidateFormat(%q) = %v", format, err)
		}
	}
	for _, format := range []string{"", "xml", "yaml"} {
		err := ValidateFormat(format)
		if !Is(err, ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) = %v, want INVALID_FORMAT", format, err)
		}
	}
}

func TestValidateDocumentID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{"valid uuid", "0b39cbd4-dd22-4f7d-9ce8-24e305de0e1c", false},
		{"valid with dash", "doc-42", false},
		{"valid with dot", "spam_eggs.v2", false},

		{"empty", "", true},
		{"too long", strings.Repeat("x", 129), true},
		{"path traversal ..", "foo..bar", true},
		{"slash", "a/b", true},
		{"backslash", "a\\b", true},
		{"null byte", "a\x00b", true},
		{"control char", "a\x01b", true},
		{"newline", "a\nb", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDocumentID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDocumentID(%q) = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if tt.wantErr && !Is(err, ErrCodeInvalidInput) {
				t.Errorf("ValidateDocumentID(%q) code = %v, want INVALID_INPUT", tt.input, GetCode(err))
			}
		})
	}
}

func TestValidatePointerExpr(t *testing.T) {
	for _, expr := range []string{"#", "#/spam/0", "#//2/1"} {
		if err := ValidatePointerExpr(expr); err != nil {
			t.Errorf("ValidatePointerExpr(%q) = %v", expr, err)
		}
	}
	for _, expr := range []string{"", "/spam", "spam"} {
		err := ValidatePointerExpr(expr)
		if !Is(err, ErrCodeInvalidPointer) {
			t.Errorf("ValidatePointerExpr(%q) = %v, want INVALID_POINTER", expr, err)
		}
	}
}
