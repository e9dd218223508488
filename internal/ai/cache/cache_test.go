package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memStore struct {
	values  map[string]string
	getErr  error
	setErr  error
	setKeys []string
}

func newMemStore() *memStore {
	return &memStore{values: map[string]string{}}
}

func (s *memStore) Get(ctx context.Context, key string) (string, error) {
	if s.getErr != nil {
		return "", s.getErr
	}
	v, ok := s.values[key]
	if !ok {
		return "", errors.New("key not found")
	}
	return v, nil
}

func (s *memStore) Set(ctx context.Context, key string, value string, ttl time.Duration) error {
	if s.setErr != nil {
		return s.setErr
	}
	s.values[key] = value
	s.setKeys = append(s.setKeys, key)
	return nil
}

func TestKey(t *testing.T) {
	hash := sha256.Sum256([]byte("some code"))
	digest := hex.EncodeToString(hash[:])

	t.Run("Format", func(t *testing.T) {
		key := Key("code_explanation", "some code", "performance", "beginner")
		assert.Equal(t, fmt.Sprintf("code_explanation:%s:performance:beginner", digest), key)
	})

	t.Run("EmptyModifiersBecomeNone", func(t *testing.T) {
		key := Key("code_review", "some code", "", "")
		assert.Equal(t, fmt.Sprintf("code_review:%s:none:none", digest), key)
	})

	t.Run("ContentChangesDigest", func(t *testing.T) {
		assert.NotEqual(t,
			Key("code_review", "some code", "", ""),
			Key("code_review", "other code", "", ""))
	})
}

func TestCacheRoundTrip(t *testing.T) {
	store := newMemStore()
	c := New(store)
	ctx := context.Background()

	type payload struct {
		Text string `json:"text"`
	}

	c.Set(ctx, "k", payload{Text: "hello"}, time.Minute)

	var got payload
	require.True(t, c.Get(ctx, "k", &got))
	assert.Equal(t, "hello", got.Text)
}

func TestCacheMiss(t *testing.T) {
	c := New(newMemStore())
	var out map[string]string
	assert.False(t, c.Get(context.Background(), "absent", &out))
}

func TestCacheCorruptPayload(t *testing.T) {
	store := newMemStore()
	store.values["k"] = "{not json"
	c := New(store)

	var out map[string]string
	assert.False(t, c.Get(context.Background(), "k", &out))
}

func TestCacheAbsorbsBackendFailures(t *testing.T) {
	store := newMemStore()
	store.getErr = errors.New("redis down")
	store.setErr = errors.New("redis down")
	c := New(store)
	ctx := context.Background()

	var out map[string]string
	assert.False(t, c.Get(ctx, "k", &out))
	assert.NotPanics(t, func() {
		c.Set(ctx, "k", map[string]string{"a": "b"}, time.Minute)
	})
}

func TestNilCache(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	var out map[string]string
	assert.False(t, c.Get(ctx, "k", &out))
	assert.NotPanics(t, func() {
		c.Set(ctx, "k", "value", time.Minute)
	})
}
