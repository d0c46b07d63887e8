package cache

import (
	"context"
	"time"

	"github.com/jacobsenj/canto-fal/pkg/redis"
)

// RedisBackend stores entries of one kind in redis, tags are redis sets
type RedisBackend struct {
	store redis.TaggedStore
	name  string
}

// NewRedisBackend creates a backend whose keys are namespaced by name, e.g. "folder" or "file"
func NewRedisBackend(store redis.TaggedStore, name string) *RedisBackend {
	return &RedisBackend{store: store, name: name}
}

func (b *RedisBackend) key(key string) string {
	return b.store.Key("cache:", b.name, ":", key)
}

func (b *RedisBackend) tagKey(tag string) string {
	return b.store.Key("tag:", b.name, ":", tag)
}

func (b *RedisBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return b.store.GetBytes(ctx, b.key(key))
}

func (b *RedisBackend) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration, tag string) (bool, error) {
	return b.store.SetIfAbsentTagged(ctx, b.key(key), b.tagKey(tag), value, ttl)
}

func (b *RedisBackend) Delete(ctx context.Context, key string) error {
	_, err := b.store.Delete(ctx, b.key(key))
	return err
}

func (b *RedisBackend) FlushTag(ctx context.Context, tag string) error {
	_, err := b.store.FlushTag(ctx, b.tagKey(tag))
	return err
}
