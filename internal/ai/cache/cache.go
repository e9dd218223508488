// Package cache layers a fingerprint-keyed response cache in front of the
// model gateway. The backing store may be absent or failing; every cache
// error degrades to a miss or a skipped write, never to an operation failure.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"
)

// Expirations by operation. Code generation is never cached.
const (
	ExplanationTTL = time.Hour
	ReviewTTL      = 30 * time.Minute
	HealthTTL      = 5 * time.Minute
	ContextTTL     = 10 * time.Minute
)

// Store is the external key/value backend.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

// Cache serializes operation results into a Store. A nil *Cache is valid and
// behaves as a permanent miss.
type Cache struct {
	store Store
}

// New creates a Cache over store.
func New(store Store) *Cache {
	return &Cache{store: store}
}

// Key builds the deterministic cache key for an operation: the operation
// name, a digest of the primary content, and the modifiers ("none" when
// empty).
func Key(operation, content, modifier1, modifier2 string) string {
	hash := sha256.Sum256([]byte(content))
	if modifier1 == "" {
		modifier1 = "none"
	}
	if modifier2 == "" {
		modifier2 = "none"
	}
	return fmt.Sprintf("%s:%s:%s:%s", operation, hex.EncodeToString(hash[:]), modifier1, modifier2)
}

// Get looks up key and unmarshals the stored value into out. Returns false
// on miss, expired entry, backend failure, or corrupt payload.
func (c *Cache) Get(ctx context.Context, key string, out any) bool {
	if c == nil || c.store == nil {
		return false
	}

	raw, err := c.store.Get(ctx, key)
	if err != nil {
		slog.Debug("cache miss", "key", shortKey(key), "error", err)
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		slog.Warn("failed to deserialize cached value", "key", shortKey(key), "error", err)
		return false
	}

	slog.Info("cache hit", "key", shortKey(key))
	return true
}

// Set writes value under key with the given TTL. Best effort: failures are
// logged and dropped.
func (c *Cache) Set(ctx context.Context, key string, value any, ttl time.Duration) {
	if c == nil || c.store == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		slog.Warn("failed to serialize value for cache", "key", shortKey(key), "error", err)
		return
	}
	if err := c.store.Set(ctx, key, string(data), ttl); err != nil {
		slog.Warn("failed to cache value", "key", shortKey(key), "error", err)
	}
}

func shortKey(key string) string {
	if len(key) > 40 {
		return key[:40] + "..."
	}
	return key
}
