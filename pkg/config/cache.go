package config

import "time"

const (
	CacheBackendRedis  = "redis"
	CacheBackendMemory = "memory"
)

// CacheConfig selects and tunes the folder and file cache backends
type CacheConfig struct {
	Backend  string
	Lifetime time.Duration

	// Memory backend tuning
	MemoryShards       int
	MemoryMaxEntrySize int
	MemoryCleanWindow  time.Duration
}

// LoadCacheConfig loads cache configuration from environment variables
func LoadCacheConfig() *CacheConfig {
	config := &CacheConfig{
		Backend:            getEnv("CACHE_BACKEND", CacheBackendRedis),
		Lifetime:           getEnvAsDuration("CACHE_LIFETIME", time.Hour),
		MemoryShards:       getEnvAsInt("CACHE_MEMORY_SHARDS", 64),
		MemoryMaxEntrySize: getEnvAsInt("CACHE_MEMORY_MAX_ENTRY_SIZE", 4096),
		MemoryCleanWindow:  getEnvAsDuration("CACHE_MEMORY_CLEAN_WINDOW", 5*time.Minute),
	}

	if config.Backend != CacheBackendMemory {
		config.Backend = CacheBackendRedis
	}

	return config
}
