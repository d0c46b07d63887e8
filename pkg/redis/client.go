// Package redis wraps go-redis with the operations needed by the shared
// resource cache and the token registry.
package redis

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// DefaultCacheExpiry applies to tagged entries written without expiration
const DefaultCacheExpiry = time.Hour

// errorBudget is the number of failures within errorWindow that triggers a reconnect
const (
	errorBudget = 5
	errorWindow = time.Minute
)

// Client is a Redis client that reconnects after repeated failures
type Client struct {
	mu     sync.RWMutex
	client *redis.Client
	config *Config

	errorCount    atomic.Int32
	lastErrorTime atomic.Int64
}

// Config holds Redis client configuration
type Config struct {
	Host                string
	Port                int
	DB                  int
	Password            string
	MaxConnections      int
	ConnTimeout         time.Duration
	ReadTimeout         time.Duration
	WriteTimeout        time.Duration
	HealthCheckInterval time.Duration

	// KeyPrefix namespaces every key written through Key
	KeyPrefix string
}

// DefaultConfig returns default Redis configuration
func DefaultConfig() *Config {
	return &Config{
		Host:                "localhost",
		Port:                6379,
		MaxConnections:      50,
		ConnTimeout:         2 * time.Second,
		ReadTimeout:         3 * time.Second,
		WriteTimeout:        3 * time.Second,
		HealthCheckInterval: 15 * time.Second,
		KeyPrefix:           "canto_fal:",
	}
}

// setIfAbsentTagged stores a value only if the key is free and records the key
// in a tag set. KEYS[1] value key, KEYS[2] tag set; ARGV[1] value, ARGV[2] ttl in ms
var setIfAbsentTagged = redis.NewScript(`
	local ok = redis.call("SET", KEYS[1], ARGV[1], "NX", "PX", ARGV[2])
	if not ok then
		return 0
	end
	redis.call("SADD", KEYS[2], KEYS[1])
	local ttl = redis.call("PTTL", KEYS[2])
	if ttl < tonumber(ARGV[2]) then
		redis.call("PEXPIRE", KEYS[2], ARGV[2])
	end
	return 1
`)

// flushTag deletes every key recorded in a tag set and the set itself
var flushTag = redis.NewScript(`
	local members = redis.call("SMEMBERS", KEYS[1])
	local count = 0
	for i = 1, #members, 100 do
		local batch = {}
		for j = i, math.min(i + 99, #members) do
			batch[#batch + 1] = members[j]
		end
		count = count + redis.call("DEL", unpack(batch))
	end
	redis.call("DEL", KEYS[1])
	return count
`)

// New creates a client, the connection is established lazily by go-redis
func New(config *Config) *Client {
	c := &Client{config: config}
	c.client = c.dial()
	return c
}

func (c *Client) dial() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:            fmt.Sprintf("%s:%d", c.config.Host, c.config.Port),
		Password:        c.config.Password,
		DB:              c.config.DB,
		PoolSize:        c.config.MaxConnections,
		MinIdleConns:    2,
		DialTimeout:     c.config.ConnTimeout,
		ReadTimeout:     c.config.ReadTimeout,
		WriteTimeout:    c.config.WriteTimeout,
		PoolTimeout:     4 * time.Second,
		ConnMaxIdleTime: 5 * time.Minute,
	})
}

// conn returns the current connection, replacing it first when the error
// budget is exhausted
func (c *Client) conn() *redis.Client {
	last := time.Unix(c.lastErrorTime.Load(), 0)
	if c.errorCount.Load() > errorBudget && time.Since(last) < errorWindow {
		c.mu.Lock()
		if c.errorCount.Load() > errorBudget {
			logrus.Warn("Too many Redis errors, resetting connection")
			_ = c.client.Close()
			c.client = c.dial()
			c.errorCount.Store(0)
		}
		c.mu.Unlock()
	}

	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.client
}

// fail records err against the error budget and wraps it for op
func (c *Client) fail(op string, err error) error {
	c.lastErrorTime.Store(time.Now().Unix())
	c.errorCount.Add(1)
	return fmt.Errorf("redis %s error: %w", op, err)
}

// Key prefixes a key with the configured namespace
func (c *Client) Key(parts ...string) string {
	return c.config.KeyPrefix + strings.Join(parts, "")
}

// Ping checks if Redis is responding
func (c *Client) Ping(ctx context.Context) error {
	if err := c.conn().Ping(ctx).Err(); err != nil {
		return c.fail("ping", err)
	}
	return nil
}

// Get returns the value of key, empty when the key does not exist
func (c *Client) Get(ctx context.Context, key string) (string, error) {
	val, err := c.conn().Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", c.fail("get", err)
	}
	return val, nil
}

// GetBytes retrieves a raw value and reports whether the key exists
func (c *Client) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := c.conn().Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, c.fail("get", err)
	}
	return val, true, nil
}

// Set sets a value with expiration, zero keeps it forever
func (c *Client) Set(ctx context.Context, key string, value any, expiration time.Duration) error {
	if err := c.conn().Set(ctx, key, value, expiration).Err(); err != nil {
		return c.fail("set", err)
	}
	return nil
}

// SetIfAbsentTagged stores value under key unless the key exists and adds key to the tag set.
// Returns false when another writer got there first.
func (c *Client) SetIfAbsentTagged(ctx context.Context, key, tagKey string, value []byte, expiration time.Duration) (bool, error) {
	if expiration <= 0 {
		expiration = DefaultCacheExpiry
	}

	stored, err := setIfAbsentTagged.Run(ctx, c.conn(), []string{key, tagKey}, value, expiration.Milliseconds()).Int64()
	if err != nil {
		return false, c.fail("set if absent", err)
	}
	return stored == 1, nil
}

// FlushTag deletes every key recorded in the tag set
func (c *Client) FlushTag(ctx context.Context, tagKey string) (int64, error) {
	deleted, err := flushTag.Run(ctx, c.conn(), []string{tagKey}).Int64()
	if err != nil {
		return 0, c.fail("flush tag", err)
	}
	return deleted, nil
}

// Delete removes a key and reports whether it existed
func (c *Client) Delete(ctx context.Context, key string) (bool, error) {
	n, err := c.conn().Del(ctx, key).Result()
	if err != nil {
		return false, c.fail("delete", err)
	}
	return n > 0, nil
}

// Close closes the underlying connection pool
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.client.Close()
}
