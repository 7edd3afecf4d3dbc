package descriptor

import "sync"

// Cache dedupes descriptors by checksum so repeated builds of the same
// helper share one instance. It is safe for concurrent use and meant to be
// injected into whatever loads descriptors, not reached through a global.
type Cache struct {
	mu sync.RWMutex
	m  map[Checksum]*TagHelper
}

func NewCache() *Cache {
	return &Cache{m: make(map[Checksum]*TagHelper)}
}

// GetOrAdd returns the cached descriptor with d's checksum, inserting d when
// absent. Racing inserts of structurally identical descriptors are fine:
// either instance is interchangeable.
func (c *Cache) GetOrAdd(d *TagHelper) *TagHelper {
	c.mu.RLock()
	cached, ok := c.m[d.checksum]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok := c.m[d.checksum]; ok {
		return cached
	}
	c.m[d.checksum] = d
	return d
}

// Get looks up a descriptor by checksum.
func (c *Cache) Get(sum Checksum) (*TagHelper, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.m[sum]
	return d, ok
}

// Len reports the number of distinct descriptors cached.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
