package expand

import (
	"crypto/sha256"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/priya-anand/egroupware/event"
)

// CacheEntry represents a cached expansion result
type CacheEntry struct {
	Result     any // bool for HasOccurrenceInRange, []Occurrence for Between
	ExpiresAt  time.Time
	AccessedAt time.Time
}

// Cache stores expansion results keyed by the full query: the event's
// identity and stored recurrence fields plus the requested range. Safe for
// concurrent use.
type Cache struct {
	entries         map[string]*CacheEntry
	mutex           sync.RWMutex
	ttl             time.Duration
	maxEntries      int
	cleanupInterval time.Duration
	stopCleanup     chan struct{}
}

// CacheConfig holds configuration for the result cache
type CacheConfig struct {
	TTL             time.Duration // How long entries stay valid
	MaxEntries      int           // Maximum number of entries before cleanup
	CleanupInterval time.Duration // How often to run cleanup
}

// DefaultCacheConfig provides sensible defaults for result caching
var DefaultCacheConfig = CacheConfig{
	TTL:             15 * time.Minute,
	MaxEntries:      1000,
	CleanupInterval: 5 * time.Minute,
}

// NewCache creates a cache with the given configuration and starts its
// cleanup goroutine; call Close to stop it. Zero config fields fall back to
// their DefaultCacheConfig values.
func NewCache(config CacheConfig) *Cache {
	if config.TTL <= 0 {
		config.TTL = DefaultCacheConfig.TTL
	}
	if config.MaxEntries <= 0 {
		config.MaxEntries = DefaultCacheConfig.MaxEntries
	}
	if config.CleanupInterval <= 0 {
		config.CleanupInterval = DefaultCacheConfig.CleanupInterval
	}

	cache := &Cache{
		entries:         make(map[string]*CacheEntry),
		ttl:             config.TTL,
		maxEntries:      config.MaxEntries,
		cleanupInterval: config.CleanupInterval,
		stopCleanup:     make(chan struct{}),
	}

	go cache.cleanupLoop()

	return cache
}

// generateKey hashes everything that determines a result: the operation,
// the event's times and stored recurrence fields, and the range.
func (c *Cache) generateKey(operation string, ev *event.Event, rangeStart, rangeEnd time.Time) string {
	hasher := sha256.New()

	hasher.Write([]byte(operation))
	hasher.Write([]byte(ev.UID))
	hasher.Write([]byte(ev.Timezone))
	hasher.Write([]byte(ev.Start.Format(time.RFC3339Nano)))
	hasher.Write([]byte(ev.End.Format(time.RFC3339Nano)))

	fmt.Fprintf(hasher, "%d,%d,%d", ev.Recurrence.Type, ev.Recurrence.Interval, ev.Recurrence.Weekdays)
	if end, ok := ev.Recurrence.End.Get(); ok {
		hasher.Write([]byte(end.Format(time.RFC3339Nano)))
	}
	for _, exception := range ev.Recurrence.Exceptions {
		hasher.Write([]byte(exception.Format(time.RFC3339Nano)))
	}

	hasher.Write([]byte(rangeStart.Format(time.RFC3339Nano)))
	hasher.Write([]byte(rangeEnd.Format(time.RFC3339Nano)))

	return fmt.Sprintf("%x", hasher.Sum(nil))
}

// Get retrieves a cached result if it exists and hasn't expired
func (c *Cache) Get(operation string, ev *event.Event, rangeStart, rangeEnd time.Time) (any, bool) {
	key := c.generateKey(operation, ev, rangeStart, rangeEnd)

	c.mutex.RLock()
	entry, exists := c.entries[key]
	c.mutex.RUnlock()

	if !exists {
		return nil, false
	}

	now := time.Now()
	if now.After(entry.ExpiresAt) {
		c.mutex.Lock()
		delete(c.entries, key)
		c.mutex.Unlock()
		return nil, false
	}

	c.mutex.Lock()
	entry.AccessedAt = now
	c.mutex.Unlock()

	return entry.Result, true
}

// Set stores a result in the cache
func (c *Cache) Set(operation string, ev *event.Event, rangeStart, rangeEnd time.Time, result any) {
	key := c.generateKey(operation, ev, rangeStart, rangeEnd)
	now := time.Now()

	entry := &CacheEntry{
		Result:     result,
		ExpiresAt:  now.Add(c.ttl),
		AccessedAt: now,
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.entries[key] = entry

	if len(c.entries) > c.maxEntries {
		c.cleanup()
	}
}

// cleanup removes expired entries, then the least recently accessed ones
// while over the limit. Callers must hold the write lock.
func (c *Cache) cleanup() {
	now := time.Now()

	for key, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			delete(c.entries, key)
		}
	}

	if len(c.entries) > c.maxEntries {
		type keyAccess struct {
			key        string
			accessedAt time.Time
		}

		keyAccessList := make([]keyAccess, 0, len(c.entries))
		for key, entry := range c.entries {
			keyAccessList = append(keyAccessList, keyAccess{
				key:        key,
				accessedAt: entry.AccessedAt,
			})
		}

		// Oldest first
		sort.Slice(keyAccessList, func(i, j int) bool {
			return keyAccessList[i].accessedAt.Before(keyAccessList[j].accessedAt)
		})

		entriesToRemove := len(c.entries) - c.maxEntries
		for i := 0; i < entriesToRemove && i < len(keyAccessList); i++ {
			delete(c.entries, keyAccessList[i].key)
		}
	}
}

// cleanupLoop runs periodic cleanup
func (c *Cache) cleanupLoop() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.mutex.Lock()
			c.cleanup()
			c.mutex.Unlock()
		case <-c.stopCleanup:
			return
		}
	}
}

// Close stops the cleanup goroutine and clears the cache
func (c *Cache) Close() {
	close(c.stopCleanup)
	c.mutex.Lock()
	c.entries = make(map[string]*CacheEntry)
	c.mutex.Unlock()
}

// Stats returns cache statistics
func (c *Cache) Stats() CacheStats {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	entryCount := len(c.entries)
	expiredCount := 0
	now := time.Now()

	for _, entry := range c.entries {
		if now.After(entry.ExpiresAt) {
			expiredCount++
		}
	}

	return CacheStats{
		TotalEntries:   entryCount,
		ExpiredEntries: expiredCount,
		ActiveEntries:  entryCount - expiredCount,
	}
}

// CacheStats provides information about cache performance
type CacheStats struct {
	TotalEntries   int
	ExpiredEntries int
	ActiveEntries  int
}
