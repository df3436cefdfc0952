package basic

import (
	"strings"
	"unicode"
)

// Reserved mapping keys. Metadata keys are interpreted before ordinary
// keys; DataKey is the catch-all slot for positional and association-list
// payloads.
const (
	// TypeKey tags a mapping with the registered type name.
	TypeKey = "$type"
	// VersionKey tags a mapping with the registered version. It may be
	// omitted, in which case the registry's default version applies.
	VersionKey = "$version"
	// RefKey marks a reference node. It is mutually exclusive with all
	// other keys in its mapping.
	RefKey = "$ref"
	// DataKey is the catch-all key holding positional elements or the
	// association list of a mapping with non-identifier keys.
	DataKey = ""
)

// IsReservedKey reports whether key is one of the metadata keys or the
// catch-all key.
func IsReservedKey(key string) bool {
	switch key {
	case TypeKey, VersionKey, RefKey, DataKey:
		return true
	}
	return false
}

// IsIdentifier reports whether s is a valid bare identifier: a letter or
// underscore followed by letters, digits or underscores.
func IsIdentifier(s string) bool {
	for i, r := range s {
		if r == '_' || unicode.IsLetter(r) {
			continue
		}
		if i > 0 && unicode.IsDigit(r) {
			continue
		}
		return false
	}
	return s != ""
}

// EscapeKey transforms a user key or attribute name into a form that can
// never collide with a reserved key. The transform is invertible via
// [UnescapeKey]:
//
//	""       -> "$"
//	"$xyz"   -> "$$xyz"  (leading marker doubled)
//	"height" -> "height" (bare identifiers pass through)
//
// The second return is false when the key is not representable as a direct
// mapping key; such keys must travel through the catch-all association
// list instead.
func EscapeKey(key string) (string, bool) {
	if key == DataKey {
		return "$", true
	}
	if IsIdentifier(key) {
		return key, true
	}
	if rest, ok := strings.CutPrefix(key, "$"); ok && (rest == "" || IsIdentifier(rest)) {
		return "$" + key, true
	}
	return "", false
}

// UnescapeKey reverses [EscapeKey]. Metadata keys must be filtered out by
// the caller before unescaping.
func UnescapeKey(key string) string {
	if key == "$" {
		return ""
	}
	if strings.HasPrefix(key, "$$") {
		return key[1:]
	}
	return key
}
