package metadata

import "sync/atomic"

// Cache holds the last published snapshot behind an atomic pointer.
// Readers never observe a partially built snapshot; a publish is a single
// pointer swap.
type Cache struct {
	current atomic.Pointer[Snapshot]
}

// NewCache creates an empty cache. Read returns the zero snapshot until
// the first Publish.
func NewCache() *Cache {
	return &Cache{}
}

// Read returns the most recently published snapshot. Never nil.
func (c *Cache) Read() *Snapshot {
	if s := c.current.Load(); s != nil {
		return s
	}
	return zero
}

// Publish atomically replaces the visible snapshot. A nil snapshot resets
// the cache to the zero snapshot.
func (c *Cache) Publish(s *Snapshot) {
	if s == nil {
		s = zero
	}
	c.current.Store(s)
}
