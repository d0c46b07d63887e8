package redis

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

var (
	// global client instance
	defaultClient *Client
	defaultOnce   sync.Once
)

// InitDefault initializes the default Redis client with the given configuration
func InitDefault(config *Config) {
	defaultOnce.Do(func() {
		defaultClient = New(config)

		// Start a background goroutine to periodically check the connection
		go monitorConnection(defaultClient)
	})
}

// GetDefault returns the default Redis client instance
func GetDefault() *Client {
	if defaultClient == nil {
		panic("Default Redis client not initialized. Call InitDefault first.")
	}
	return defaultClient
}

// CloseAll closes the default client
func CloseAll() {
	if defaultClient != nil {
		defaultClient.Close()
	}
}

// monitorConnection periodically checks the Redis connection and logs issues
func monitorConnection(client *Client) {
	interval := client.config.HealthCheckInterval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for range ticker.C {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := client.Ping(ctx)
		cancel()

		if err != nil {
			logrus.WithError(err).Warn("Redis health check failed")
		}
	}
}

// TaggedStore defines the Redis operations used by the resource caches
// Useful for mocking in tests
type TaggedStore interface {
	Key(parts ...string) string
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetIfAbsentTagged(ctx context.Context, key, tagKey string, value []byte, expiration time.Duration) (bool, error)
	Delete(ctx context.Context, key string) (bool, error)
	FlushTag(ctx context.Context, tagKey string) (int64, error)
}

// KVStore defines the plain key/value operations used by the token registry
type KVStore interface {
	Key(parts ...string) string
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
}

// Ensure Client implements the store interfaces
var (
	_ TaggedStore = (*Client)(nil)
	_ KVStore     = (*Client)(nil)
)
