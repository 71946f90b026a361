package pumlgen

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Cache is the interface for caching rendered results, such as the DDL
// or the model summary of a diagram served over HTTP.
// Users may implement this interface with their preferred caching
// solution (e.g., Redis, Memcached, in-memory).
type Cache interface {
	// Get retrieves a value from the cache.
	// Returns nil, nil if the key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set stores a value in the cache with an optional TTL.
	// If ttl is 0, the value should not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Delete removes a value from the cache.
	Delete(ctx context.Context, key string) error
}

// CacheKey identifies a result rendered from a diagram.
type CacheKey struct {
	// Operation is the kind of result, e.g. "parse" or "ddl".
	Operation string
	// Variant distinguishes results of one operation, e.g. the dialect.
	Variant string
	// Digest is the hex SHA-256 of the diagram text.
	Digest string
}

// NewCacheKey returns the key of an operation on a diagram.
func NewCacheKey(operation, variant string, diagram []byte) CacheKey {
	sum := sha256.Sum256(diagram)
	return CacheKey{Operation: operation, Variant: variant, Digest: hex.EncodeToString(sum[:])}
}

// String returns the string representation of the cache key.
func (k CacheKey) String() string {
	return k.Operation + ":" + k.Variant + ":" + k.Digest
}
