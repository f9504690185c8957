package expand

import (
	"time"
)

// Config holds tuning options for the expansion engine
type Config struct {
	// Result caching
	CacheEnabled bool
	Cache        CacheConfig

	// MaxOccurrences caps how many occurrences a single Between call
	// collects before it stops expanding
	MaxOccurrences int
}

// DefaultConfig provides sensible defaults for production use
var DefaultConfig = Config{
	CacheEnabled: true,
	Cache:        DefaultCacheConfig,

	MaxOccurrences: 1000,
}

// LowMemoryConfig is optimized for memory-constrained environments
var LowMemoryConfig = Config{
	CacheEnabled: true,
	Cache: CacheConfig{
		TTL:             5 * time.Minute, // Shorter cache TTL
		MaxEntries:      100,             // Fewer cache entries
		CleanupInterval: 2 * time.Minute, // More frequent cleanup
	},

	MaxOccurrences: 250,
}

// DisabledCacheConfig turns off caching entirely
var DisabledCacheConfig = Config{
	CacheEnabled: false,
	Cache:        CacheConfig{}, // Not used

	MaxOccurrences: 1000,
}
