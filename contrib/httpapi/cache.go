package httpapi

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
)

// DefaultCacheSize is the number of responses a MemoryCache keeps.
const DefaultCacheSize = 512

// MemoryCache is an in-process pumlgen.Cache. It evicts the least recently
// used response once full, and expires entries lazily on Get.
type MemoryCache struct {
	entries *lru.Cache[string, entry]
	now     func() time.Time
}

type entry struct {
	value   []byte
	expires time.Time
}

// NewMemoryCache returns an empty MemoryCache holding up to size entries.
func NewMemoryCache(size int) (*MemoryCache, error) {
	entries, err := lru.New[string, entry](size)
	if err != nil {
		return nil, err
	}
	return &MemoryCache{entries: entries, now: time.Now}, nil
}

// Get implements pumlgen.Cache.
func (c *MemoryCache) Get(_ context.Context, key string) ([]byte, error) {
	e, ok := c.entries.Get(key)
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && c.now().After(e.expires) {
		c.entries.Remove(key)
		return nil, nil
	}
	return e.value, nil
}

// Set implements pumlgen.Cache.
func (c *MemoryCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expires = c.now().Add(ttl)
	}
	c.entries.Add(key, e)
	return nil
}

// Delete implements pumlgen.Cache.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.entries.Remove(key)
	return nil
}
