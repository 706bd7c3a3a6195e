package ai

import (
	"crypto/sha256"
	"encoding/hex"
	"hash/fnv"
	"sync"
	"time"

	"github.com/scanward/scanward/internal/audit"
)

const lockStripes = 64

// Cache stores parsed AI findings keyed by content hash and model. Entries
// expire by TTL only: analysis results do not change for identical
// content+model, so correctness does not depend on freshness beyond
// model-version changes. The cache is shared by all scan workers; access is
// serialized per key via striped locks, never a single global lock.
type Cache struct {
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]cacheEntry

	locks [lockStripes]sync.Mutex
}

type cacheEntry struct {
	findings []audit.Finding
	storedAt time.Time
}

func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Cache{
		ttl:     ttl,
		entries: make(map[string]cacheEntry),
	}
}

// Key derives the cache key from submitted content and model identifier.
func Key(content []byte, model string) string {
	h := sha256.New()
	h.Write(content)
	h.Write([]byte("|"))
	h.Write([]byte(model))
	return hex.EncodeToString(h.Sum(nil))
}

// KeyLock returns the stripe lock for a key. Callers hold it across the
// lookup-miss-fill sequence so identical in-flight requests collapse to one
// outbound call.
func (c *Cache) KeyLock(key string) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(key))
	return &c.locks[h.Sum32()%lockStripes]
}

// Get returns the cached findings for key if present and within TTL.
func (c *Cache) Get(key string) ([]audit.Finding, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if time.Since(entry.storedAt) > c.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return entry.findings, true
}

// Put stores findings for key, stamping the entry with the current time.
func (c *Cache) Put(key string, findings []audit.Finding) {
	c.mu.Lock()
	c.entries[key] = cacheEntry{findings: findings, storedAt: time.Now()}
	c.mu.Unlock()
}

// Len returns the number of live entries, expired or not.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
