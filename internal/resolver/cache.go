package resolver

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes successful resolutions for the process lifetime, keyed by
// the literal URL string. Entries are immutable once stored and are never
// evicted. Failed resolutions (nil) are intentionally not cached so that a
// later authentication can still succeed for the same URL.
//
// Concurrent lookups for the same uncached key are coalesced: the second
// caller awaits the first caller's in-flight resolution instead of issuing
// a duplicate backend request.
type Cache struct {
	inner LinkResolver

	mu      sync.RWMutex
	entries map[string]*LinkInfo
	group   singleflight.Group
}

func NewCache(inner LinkResolver) *Cache {
	return &Cache{
		inner:   inner,
		entries: make(map[string]*LinkInfo),
	}
}

func (c *Cache) ResolveLink(ctx context.Context, url string) (*LinkInfo, error) {
	c.mu.RLock()
	info, ok := c.entries[url]
	c.mu.RUnlock()
	if ok {
		return info, nil
	}

	result, err, _ := c.group.Do(url, func() (any, error) {
		// A flight that completed between the lookup above and here may
		// already have stored the entry.
		c.mu.RLock()
		info, ok := c.entries[url]
		c.mu.RUnlock()
		if ok {
			return info, nil
		}

		info, err := c.inner.ResolveLink(ctx, url)
		if err != nil {
			return nil, err
		}
		if info != nil {
			c.mu.Lock()
			c.entries[url] = info
			c.mu.Unlock()
		}
		return info, nil
	})
	if err != nil {
		return nil, err
	}
	info, _ = result.(*LinkInfo)
	return info, nil
}

// Size returns the number of memoized resolutions.
func (c *Cache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
