package cache

import (
	"sync"
	"time"
)

// CacheKey identifies a cached document by its URI and content hash: the
// same URI with a different hash is a different key (a newer edit), so a
// stale entry is simply never found rather than needing explicit
// invalidation on every keystroke.
type CacheKey struct {
	URI  string
	Hash ContentHash
}

// CacheStats are monotone counters of cache activity, kept purely for the
// executeCommand debug surface (SPEC_FULL §D.1) — nothing in the hit path
// depends on them.
type CacheStats struct {
	Queries   uint64
	Hits      uint64
	Misses    uint64
	Evictions uint64
	Size      int
}

type memoryEntry[T any] struct {
	key        CacheKey
	doc        T
	modifiedAt time.Time
	isOpen     bool
}

// MemoryCache is the in-memory LRU tier: a bounded set of cached documents,
// evicting the least-recently-touched entry that isn't currently open in
// the editor. The eviction-list shape (slice + index map + move-to-end +
// ensure-capacity) is the teacher's own `php.DocumentStore` pattern,
// generalized from a hardcoded `*Document` payload to a type parameter so
// one implementation serves every document kind the workspace caches.
type MemoryCache[T any] struct {
	mu       sync.Mutex
	capacity int
	entries  []*memoryEntry[T]
	index    map[CacheKey]*memoryEntry[T]
	stats    CacheStats
}

// NewMemoryCache constructs a cache with the given capacity (spec default
// 50; capacity <= 0 uses that default).
func NewMemoryCache[T any](capacity int) *MemoryCache[T] {
	if capacity <= 0 {
		capacity = 50
	}
	return &MemoryCache[T]{
		capacity: capacity,
		entries:  make([]*memoryEntry[T], 0, capacity),
		index:    make(map[CacheKey]*memoryEntry[T]),
	}
}

// Get returns the cached document for key, touching it to mark it
// most-recently-used. The returned document is a value copy (or whatever
// copy semantics T itself has); callers needing a stable snapshot while
// the cache continues to mutate should pass an immutable or pointer T.
func (c *MemoryCache[T]) Get(key CacheKey) (doc T, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.stats.Queries++
	entry, found := c.index[key]
	if !found {
		c.stats.Misses++
		return doc, false
	}
	c.stats.Hits++
	c.moveToEndLocked(entry)
	return entry.doc, true
}

// Insert records doc under key, marking the entry open (pinned against
// eviction) so the caller's currently-edited document is never evicted out
// from under it. MarkClosed makes an entry eligible for eviction again.
func (c *MemoryCache[T]) Insert(key CacheKey, doc T, modifiedAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, found := c.index[key]; found {
		entry.doc = doc
		entry.modifiedAt = modifiedAt
		entry.isOpen = true
		c.moveToEndLocked(entry)
		return
	}

	entry := &memoryEntry[T]{key: key, doc: doc, modifiedAt: modifiedAt, isOpen: true}
	c.entries = append(c.entries, entry)
	c.index[key] = entry
	c.stats.Size = len(c.entries)
	c.ensureCapacityLocked()
}

// MarkClosed makes key's entry eligible for eviction, mirroring the
// teacher's RegisterOpen/Close open-document pinning.
func (c *MemoryCache[T]) MarkClosed(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if entry, ok := c.index[key]; ok {
		entry.isOpen = false
	}
}

// Remove evicts key's entry unconditionally, regardless of open state.
func (c *MemoryCache[T]) Remove(key CacheKey) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(key)
}

// Clear drops every cached entry.
func (c *MemoryCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = c.entries[:0]
	c.index = make(map[CacheKey]*memoryEntry[T])
	c.stats.Size = 0
}

// Snapshot returns every currently cached document, in no particular order.
// Used by the cross-file linking pass, which needs to walk every document
// it currently has data for rather than look one up by key; entries evicted
// under LRU pressure are simply absent, the same tradeoff eviction always
// implies.
func (c *MemoryCache[T]) Snapshot() []T {
	c.mu.Lock()
	defer c.mu.Unlock()

	out := make([]T, len(c.entries))
	for i, e := range c.entries {
		out[i] = e.doc
	}
	return out
}

// Stats returns a snapshot of the running counters.
func (c *MemoryCache[T]) Stats() CacheStats {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.stats
	s.Size = len(c.entries)
	return s
}

func (c *MemoryCache[T]) removeLocked(key CacheKey) {
	entry, ok := c.index[key]
	if !ok {
		return
	}
	for i, e := range c.entries {
		if e == entry {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			break
		}
	}
	delete(c.index, key)
	c.stats.Size = len(c.entries)
}

func (c *MemoryCache[T]) moveToEndLocked(entry *memoryEntry[T]) {
	if len(c.entries) == 0 {
		return
	}
	idx := -1
	for i, e := range c.entries {
		if e == entry {
			idx = i
			break
		}
	}
	if idx < 0 || idx == len(c.entries)-1 {
		return
	}
	c.entries = append(c.entries[:idx], c.entries[idx+1:]...)
	c.entries = append(c.entries, entry)
}

func (c *MemoryCache[T]) ensureCapacityLocked() {
	for len(c.entries) > c.capacity {
		evicted := false
		for i, entry := range c.entries {
			if entry.isOpen {
				continue
			}
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			delete(c.index, entry.key)
			c.stats.Evictions++
			evicted = true
			break
		}
		if !evicted {
			break
		}
	}
	c.stats.Size = len(c.entries)
}
