package cache

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash computes the SHA-256 hash of data as a 64-character hex string.
// Verdict keys use the full digest; truncating would invite collisions
// between distinct histories.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
