package cache

import (
	"context"
	"sync"
	"time"
)

// lruNode is a node of the recency list. head.next is the most recently used.
type lruNode struct {
	key  string
	prev *lruNode
	next *lruNode
}

type memEntry struct {
	value     string
	expiresAt time.Time
	node      *lruNode
}

// MemoryCache is an in-process LRU cache with per-entry TTL. It stands in
// for Redis on single-node setups. Expired entries are dropped on access or
// when capacity forces an eviction.
type MemoryCache struct {
	mu       sync.Mutex
	data     map[string]*memEntry
	head     *lruNode // dummy
	tail     *lruNode // dummy
	maxItems int
	now      func() time.Time

	hits   int64
	misses int64
}

const DefaultMemoryItems = 10000

func NewMemoryCache(maxItems int) *MemoryCache {
	if maxItems <= 0 {
		maxItems = DefaultMemoryItems
	}
	head, tail := &lruNode{}, &lruNode{}
	head.next = tail
	tail.prev = head

	return &MemoryCache{
		data:     make(map[string]*memEntry),
		head:     head,
		tail:     tail,
		maxItems: maxItems,
		now:      time.Now,
	}
}

// Get returns the value for key. It never fails.
func (c *MemoryCache) Get(_ context.Context, key string) (string, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.data[key]
	if !ok {
		c.misses++
		return "", false, nil
	}
	if !entry.expiresAt.IsZero() && c.now().After(entry.expiresAt) {
		c.remove(key, entry)
		c.misses++
		return "", false, nil
	}

	c.hits++
	c.moveToFront(entry.node)
	return entry.value, true, nil
}

// Set stores value under key. A ttl of zero keeps the entry until evicted.
func (c *MemoryCache) Set(_ context.Context, key, value string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = c.now().Add(ttl)
	}

	if entry, ok := c.data[key]; ok {
		entry.value = value
		entry.expiresAt = expiresAt
		c.moveToFront(entry.node)
		return nil
	}

	if len(c.data) >= c.maxItems {
		c.evictLRU()
	}

	node := &lruNode{key: key}
	c.addToFront(node)
	c.data[key] = &memEntry{value: value, expiresAt: expiresAt, node: node}
	return nil
}

// Delete removes key.
func (c *MemoryCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if entry, ok := c.data[key]; ok {
		c.remove(key, entry)
	}
	return nil
}

// MemoryStats contains cache statistics.
type MemoryStats struct {
	Items    int     `json:"items"`
	MaxItems int     `json:"max_items"`
	Hits     int64   `json:"hits"`
	Misses   int64   `json:"misses"`
	HitRate  float64 `json:"hit_rate"`
}

func (c *MemoryCache) Stats() MemoryStats {
	c.mu.Lock()
	defer c.mu.Unlock()

	hitRate := float64(0)
	if total := c.hits + c.misses; total > 0 {
		hitRate = float64(c.hits) / float64(total)
	}
	return MemoryStats{
		Items:    len(c.data),
		MaxItems: c.maxItems,
		Hits:     c.hits,
		Misses:   c.misses,
		HitRate:  hitRate,
	}
}

// evictLRU drops the least recently used entry. Caller holds mu.
func (c *MemoryCache) evictLRU() {
	node := c.tail.prev
	if node == c.head {
		return
	}
	if entry, ok := c.data[node.key]; ok {
		c.remove(node.key, entry)
	}
}

func (c *MemoryCache) remove(key string, entry *memEntry) {
	c.unlink(entry.node)
	delete(c.data, key)
}

func (c *MemoryCache) addToFront(node *lruNode) {
	node.next = c.head.next
	node.prev = c.head
	c.head.next.prev = node
	c.head.next = node
}

func (c *MemoryCache) moveToFront(node *lruNode) {
	c.unlink(node)
	c.addToFront(node)
}

func (c *MemoryCache) unlink(node *lruNode) {
	node.prev.next = node.next
	node.next.prev = node.prev
}
