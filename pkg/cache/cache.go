// Package cache provides caching for crates.io responses.
//
// The [Cache] interface abstracts over storage backends:
//   - file: On-disk storage for CLI usage, survives between runs
//   - redis: Redis-backed storage for server deployments
//   - null: No-op storage for tests or --no-cache runs
//
// Values are opaque byte slices with a TTL. Key construction helpers
// ([CrateKey]) live in this package so every caller derives the same
// key for the same logical entry.
package cache

import (
	"context"
	"time"
)

// TTLCrate is how long crates.io metadata stays cached.
// Crate descriptions and download counts change slowly.
const TTLCrate = 24 * time.Hour

// Cache is the interface for cache backends.
//
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether
	// the key was present and unexpired. A miss is not an error.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value. A zero or negative ttl means the entry
	// never expires.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases resources held by the backend.
	Close() error
}
