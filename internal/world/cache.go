package world

import (
	"sync"

	"github.com/Faultbox/pfmap/pkg/formats"
)

type materialKey struct {
	path  string
	count int
}

// MaterialCache holds parsed material files keyed by path and declared count.
// Cached slices are shared read-only between chunks.
type MaterialCache struct {
	data map[materialKey][]formats.Material
	mu   sync.RWMutex

	// Stats
	hits   int
	misses int
}

// NewMaterialCache creates an empty cache.
func NewMaterialCache() *MaterialCache {
	return &MaterialCache{
		data: make(map[materialKey][]formats.Material),
	}
}

// Get retrieves the materials parsed from path.
func (c *MaterialCache) Get(path string, count int) ([]formats.Material, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	mats, ok := c.data[materialKey{path, count}]
	if ok {
		c.hits++
	} else {
		c.misses++
	}
	return mats, ok
}

// Set stores the materials parsed from path.
func (c *MaterialCache) Set(path string, count int, mats []formats.Material) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[materialKey{path, count}] = mats
}

// Clear empties the cache and resets its statistics.
func (c *MaterialCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data = make(map[materialKey][]formats.Material)
	c.hits = 0
	c.misses = 0
}

// Stats returns cache statistics.
func (c *MaterialCache) Stats() (hits, misses int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.hits, c.misses
}
