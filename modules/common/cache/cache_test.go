package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheGetSet(t *testing.T) {
	c := New(time.Second)

	_, ok := c.Get(KeyContentItems)
	assert.False(t, ok, "empty cache should miss")

	c.Set(KeyContentItems, []string{"a", "b"})

	value, ok := c.Get(KeyContentItems)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b"}, value)
}

func TestCacheStaleness(t *testing.T) {
	c := New(time.Second)

	current := time.Now()
	c.now = func() time.Time { return current }

	c.Set("key", "value")

	// Within the staleness window the entry is served.
	current = current.Add(500 * time.Millisecond)
	_, ok := c.Get("key")
	assert.True(t, ok)

	// Past the window the entry must not be served.
	current = current.Add(time.Second)
	_, ok = c.Get("key")
	assert.False(t, ok, "entries older than the staleness window must not be returned")
}

func TestCacheInvalidate(t *testing.T) {
	c := New(time.Minute)

	c.Set("key", "value")
	c.Invalidate("key")

	_, ok := c.Get("key")
	assert.False(t, ok)

	// Invalidating a missing key is a no-op.
	c.Invalidate("missing")
}

func TestDetailCacheKey(t *testing.T) {
	assert.Equal(t, "content-item-with-scenes:abc-123", KeyContentItemWithScenes("abc-123"))
}
