package core

import (
	"crypto/sha256"
	"encoding/hex"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// CacheKey is a deterministic prompt-cache key derived from request inputs.
type CacheKey Hash

func (k CacheKey) String() string { return Hash(k).String() }

// ComputeCacheKey derives a stable cache key from a system prompt and a
// pipeline stage tag. Identical inputs always produce identical keys, which
// is what lets the provider reuse a previously processed system prompt.
// The NUL separator keeps ("ab","c") and ("a","bc") from colliding.
func ComputeCacheKey(systemPrompt, stageTag string) CacheKey {
	data := make([]byte, 0, len(systemPrompt)+len(stageTag)+1)
	data = append(data, systemPrompt...)
	data = append(data, 0)
	data = append(data, stageTag...)
	return CacheKey(NewHash(data))
}
