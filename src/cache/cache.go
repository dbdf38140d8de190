// Package cache implements a small LRU cache with TTL for generated answers.
// Interview prompts repeat (re-asked questions, retaken screenshots), so
// identical requests can be served without another round-trip to a backend.
package cache

import (
	"container/list"
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Entry holds a cached answer with its expiration time.
type Entry struct {
	Text      string
	ExpiresAt time.Time
}

// AnswerCache is a thread-safe LRU cache with TTL.
type AnswerCache struct {
	mu       sync.RWMutex
	capacity int
	ttl      time.Duration
	items    map[string]*list.Element
	order    *list.List
}

type slot struct {
	key   string
	entry Entry
}

// New creates an AnswerCache holding at most capacity entries, each valid
// for ttl after insertion. Capacities below 1 are raised to 1; a zero-slot
// cache would evict every entry it just stored.
func New(capacity int, ttl time.Duration) *AnswerCache {
	if capacity < 1 {
		capacity = 1
	}
	return &AnswerCache{
		capacity: capacity,
		ttl:      ttl,
		items:    make(map[string]*list.Element, capacity),
		order:    list.New(),
	}
}

// Get returns the cached answer for key, expiring stale entries on the way.
func (c *AnswerCache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	elem, ok := c.items[key]
	if !ok {
		return "", false
	}
	s := elem.Value.(*slot)
	if time.Now().After(s.entry.ExpiresAt) {
		c.order.Remove(elem)
		delete(c.items, key)
		return "", false
	}
	c.order.MoveToFront(elem)
	return s.entry.Text, true
}

// Set stores an answer under key, evicting the least recently used entry
// when over capacity.
func (c *AnswerCache) Set(key, text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	expiresAt := time.Now().Add(c.ttl)
	if elem, ok := c.items[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*slot).entry = Entry{Text: text, ExpiresAt: expiresAt}
		return
	}

	elem := c.order.PushFront(&slot{key: key, entry: Entry{Text: text, ExpiresAt: expiresAt}})
	c.items[key] = elem

	if c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*slot).key)
		}
	}
}

// Clear removes all entries.
func (c *AnswerCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.items = make(map[string]*list.Element, c.capacity)
	c.order.Init()
}

// Len returns the number of live entries.
func (c *AnswerCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.order.Len()
}

// Key derives a cache key from a prompt string.
func Key(prompt string) string {
	h := sha256.Sum256([]byte(prompt))
	return hex.EncodeToString(h[:])
}

// Dump returns all live entries for persistence.
func (c *AnswerCache) Dump() map[string]Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()

	dump := make(map[string]Entry, len(c.items))
	for k, elem := range c.items {
		dump[k] = elem.Value.(*slot).entry
	}
	return dump
}

// Restore populates the cache from a dump, dropping expired entries and
// enforcing capacity.
func (c *AnswerCache) Restore(dump map[string]Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.order.Init()
	c.items = make(map[string]*list.Element, c.capacity)

	for k, v := range dump {
		if time.Now().After(v.ExpiresAt) {
			continue
		}
		elem := c.order.PushFront(&slot{key: k, entry: v})
		c.items[k] = elem
	}

	for c.order.Len() > c.capacity {
		oldest := c.order.Back()
		if oldest != nil {
			c.order.Remove(oldest)
			delete(c.items, oldest.Value.(*slot).key)
		}
	}
}
