package telemetry

import "sync"

// LatestCache holds the most recent reading per plant, serving "current
// state" queries without a round trip to the time-series store.
//
// Put is an unconditional overwrite with no recency check, so an out-of-order
// late arrival can regress the view. Inherited behaviour, kept as documented.
//
// Thread Safety: all methods are safe for concurrent use. Entries are stored
// and returned as deep copies so callers can never mutate the cache.
type LatestCache struct {
	mu      sync.RWMutex
	entries map[string]*Reading
}

// NewLatestCache creates an empty cache.
func NewLatestCache() *LatestCache {
	return &LatestCache{entries: make(map[string]*Reading)}
}

// Put stores the reading as the plant's latest, replacing any prior entry.
func (c *LatestCache) Put(r *Reading) {
	if r == nil || r.PlantID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[r.PlantID] = r.DeepCopy()
}

// Get returns the plant's latest reading, or false when none is cached.
func (c *LatestCache) Get(plantID string) (*Reading, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	r, ok := c.entries[plantID]
	if !ok {
		return nil, false
	}
	return r.DeepCopy(), true
}

// Len returns the number of cached plants.
func (c *LatestCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
