package errors

import (
	"strings"
	"unicode"
)

// Formats the document endpoints accept.
var knownFormats = map[string]bool{
	"json": true,
	"bson": true,
}

// ValidateFormat checks a serialization format name from user input.
func ValidateFormat(format string) error {
	if format == "" {
		return New(ErrCodeInvalidFormat, "format cannot be empty")
	}
	if !knownFormats[strings.ToLower(format)] {
		return New(ErrCodeInvalidFormat, "unknown format %q (want json or bson)", format)
	}
	return nil
}

// ValidateDocumentID checks a document identifier from user input.
// It rejects values that could be used for path traversal when the ID
// is interpolated into cache keys or storage paths.
//
// The validation rules are intentionally conservative:
//   - No empty IDs
//   - No control characters
//   - No path separators or parent-directory sequences
//   - Maximum length of 128 characters
func ValidateDocumentID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "document id cannot be empty")
	}
	if len(id) > 128 {
		return New(ErrCodeInvalidInput, "document id too long (max 128 characters)")
	}
	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "document id contains control characters")
		}
	}
	for _, pattern := range []string{"..", "/", "\\", "\x00"} {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidInput, "document id contains invalid sequence %q", pattern)
		}
	}
	return nil
}

// ValidatePointerExpr checks the shape of a pointer expression from
// user input before it reaches the resolver.
func ValidatePointerExpr(expr string) error {
	if expr == "" {
		return New(ErrCodeInvalidPointer, "pointer cannot be empty")
	}
	if !strings.HasPrefix(expr, "#") {
		return New(ErrCodeInvalidPointer, "pointer must start with #")
	}
	if len(expr) > 4096 {
		return New(ErrCodeInvalidPointer, "pointer too long")
	}
	return nil
}
