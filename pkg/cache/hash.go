package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Hash computes a SHA-256 hash of the input data.
// Returns the full 64-character hex string.
func Hash(data []byte) string {
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}

// DocKey generates a cache key for a serialized document: the format
// name plus the full content hash. The full 256 bits keep collisions
// out of the question even across large stores.
func DocKey(format string, data []byte) string {
	return fmt.Sprintf("doc:%s:%s", format, Hash(data))
}
