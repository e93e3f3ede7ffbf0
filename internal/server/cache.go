package server

import "sync"

// renderCache memoizes encoded render results keyed by the full render
// input (skin digest, variant, scale). Renders are deterministic, so a
// cached entry never goes stale while the store lives.
type renderCache struct {
	data map[string][]byte
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

func newRenderCache() *renderCache {
	return &renderCache{
		data: make(map[string][]byte),
	}
}

// Get retrieves a cached render.
func (c *renderCache) Get(key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, ok := c.data[key]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return data, ok
}

// Set stores an encoded render.
func (c *renderCache) Set(key string, data []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[key] = data
}

// Stats returns cache statistics.
func (c *renderCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
