// Package valuecache implements the remote-object value cache that
// underpins the value-change filter and reply synthesis (spec.md §4.1).
//
// A Cache is single-owner: it is read and written only from the goroutine
// of the protocol processor or object-data-handler that owns it (spec.md
// §4.1 "Thread contract"). It carries no internal lock; the single
// exception is the Engine inspecting a cache after the owning component
// has been stopped, which the caller must serialize itself.
package valuecache

import (
	"github.com/ChristianAhrens/remoteprotocolbridgecore/internal/objectmodel"
)

// Cache maps a RemoteObject to its last-known MessageData.
type Cache struct {
	values map[objectmodel.RemoteObject]objectmodel.MessageData
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{values: make(map[objectmodel.RemoteObject]objectmodel.MessageData)}
}

// Contains reports whether ro has an observed (non-placeholder) value.
func (c *Cache) Contains(ro objectmodel.RemoteObject) bool {
	_, ok := c.values[ro]
	return ok
}

// Get returns ro's cached value. If ro has never been observed, a
// None-typed placeholder is inserted and returned, matching the original's
// std::map::operator[] insert-on-miss semantics.
func (c *Cache) Get(ro objectmodel.RemoteObject) objectmodel.MessageData {
	if d, ok := c.values[ro]; ok {
		return d
	}
	d := objectmodel.Empty(ro.Addr)
	c.values[ro] = d
	return d
}

// Peek returns ro's cached value without inserting a placeholder on miss.
func (c *Cache) Peek(ro objectmodel.RemoteObject) (objectmodel.MessageData, bool) {
	d, ok := c.values[ro]
	return d, ok
}

// Set deep-copies data into the cache for ro. If the incoming payload size
// matches the existing entry's, the existing buffer's storage is logically
// reused (Go garbage collection means there's no manual realloc to avoid,
// but the copy-in-place keeps the semantics spec.md §3 Lifecycle and §8 P1
// describe: same size -> in-place update, different size -> new buffer).
func (c *Cache) Set(ro objectmodel.RemoteObject, data objectmodel.MessageData) {
	existing, ok := c.values[ro]
	clone := data.Clone()
	if ok && len(existing.Payload) == len(clone.Payload) && len(clone.Payload) > 0 {
		copy(existing.Payload, clone.Payload)
		existing.Addr = clone.Addr
		existing.ValType = clone.ValType
		existing.ValCount = clone.ValCount
		c.values[ro] = existing
		return
	}
	c.values[ro] = clone
}

// Clear empties the cache (on protocol disconnect or shutdown, spec.md §3
// Lifecycle).
func (c *Cache) Clear() {
	c.values = make(map[objectmodel.RemoteObject]objectmodel.MessageData)
}

// Len returns the number of cached entries (used by metrics).
func (c *Cache) Len() int {
	return len(c.values)
}

// Each calls fn for every cached entry. fn must not mutate the cache.
func (c *Cache) Each(fn func(objectmodel.RemoteObject, objectmodel.MessageData)) {
	for ro, d := range c.values {
		fn(ro, d)
	}
}

// GetInt returns the cached int32 values for ro, or nil if absent or not
// an int payload.
func (c *Cache) GetInt(ro objectmodel.RemoteObject) []int32 {
	d, ok := c.Peek(ro)
	if !ok {
		return nil
	}
	v, ok := d.Ints()
	if !ok {
		return nil
	}
	return v
}

// GetFloat returns the single cached float32 value for ro, or 0 if absent
// or not a single-value float.
func (c *Cache) GetFloat(ro objectmodel.RemoteObject) float32 {
	d, ok := c.Peek(ro)
	if !ok {
		return 0
	}
	v, ok := d.Floats()
	if !ok || len(v) != 1 {
		return 0
	}
	return v[0]
}

// GetDualFloat returns the cached 2-float value for ro, or (0,0) if absent
// or not a dual float.
func (c *Cache) GetDualFloat(ro objectmodel.RemoteObject) (float32, float32) {
	d, ok := c.Peek(ro)
	if !ok {
		return 0, 0
	}
	v, ok := d.Floats()
	if !ok || len(v) != 2 {
		return 0, 0
	}
	return v[0], v[1]
}

// GetTripleFloat returns the cached 3-float value for ro, or (0,0,0) if
// absent or not a triple float.
func (c *Cache) GetTripleFloat(ro objectmodel.RemoteObject) (float32, float32, float32) {
	d, ok := c.Peek(ro)
	if !ok {
		return 0, 0, 0
	}
	v, ok := d.Floats()
	if !ok || len(v) != 3 {
		return 0, 0, 0
	}
	return v[0], v[1], v[2]
}

// GetString returns the cached string value for ro, or "" if absent or not
// a string.
func (c *Cache) GetString(ro objectmodel.RemoteObject) string {
	d, ok := c.Peek(ro)
	if !ok {
		return ""
	}
	v, ok := d.String()
	if !ok {
		return ""
	}
	return v
}
