package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// CrateKey is the cache key for a crates.io metadata response. Keys
// carry a readable prefix and a full SHA-256 digest of the crate name,
// which keeps arbitrary names filesystem and Redis safe.
func CrateKey(name string) string {
	return "crate:" + hashHex([]byte(name))
}

// hashHex returns the SHA-256 digest of data as a 64-char hex string.
func hashHex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
