// Package cache provides pluggable byte caches for serialized documents.
//
// The API surfaces use it to avoid re-encoding unchanged object graphs:
// keys are content hashes of the rendered document, so a hit is always
// safe to serve. Backends cover the CLI (file), the server (memory or
// Redis), and tests (null).
package cache

import (
	"context"
	"time"
)

// Cache stores serialized documents by key. Implementations must be safe
// for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return is false on a miss;
	// errors are reserved for backend failures.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A ttl of zero means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}
