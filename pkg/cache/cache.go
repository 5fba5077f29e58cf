// Package cache provides verdict caching for histvet.
//
// Acyclicity checks are deterministic and pure, so a verdict for a given
// effective history and policy never changes. The cache stores serialized
// verdicts keyed by content hash, letting repeated validation of large
// unchanged histories skip recomputation entirely.
//
// Backends:
//   - [FileCache]: per-user cache directory for CLI usage
//   - [RedisCache]: shared cache for the HTTP service
//   - [NullCache]: caching disabled
package cache

import (
	"context"
	"fmt"
	"time"
)

// Cache is the interface implemented by all cache backends.
type Cache interface {
	// Get retrieves a value. The second return reports whether the key
	// was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases backend resources.
	Close() error
}

// Keyer derives cache keys from history content.
type Keyer interface {
	// VerdictKey returns the key for an acyclicity verdict, derived from
	// the content hash of the effective history and the dangling-parent
	// policy in effect.
	VerdictKey(historyHash, policy string) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer { return &DefaultKeyer{} }

// VerdictKey returns "verdict:<policy>:<hash>".
func (k *DefaultKeyer) VerdictKey(historyHash, policy string) string {
	return fmt.Sprintf("verdict:%s:%s", policy, historyHash)
}

// ScopedKeyer wraps a Keyer with a prefix for namespace isolation, e.g.
// when multiple ingest tenants share one Redis instance.
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer that prepends prefix to all keys.
// A nil inner keyer defaults to [DefaultKeyer].
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{inner: inner, prefix: prefix}
}

// VerdictKey generates a prefixed verdict key.
func (k *ScopedKeyer) VerdictKey(historyHash, policy string) string {
	return k.prefix + k.inner.VerdictKey(historyHash, policy)
}
