package registry

import (
	"context"
	"fmt"

	"github.com/jacobsenj/canto-fal/pkg/redis"
)

// RedisRegistry keeps entries as plain redis keys without expiry
type RedisRegistry struct {
	store redis.KVStore
}

// NewRedisRegistry creates a registry backed by redis
func NewRedisRegistry(store redis.KVStore) *RedisRegistry {
	return &RedisRegistry{store: store}
}

func (r *RedisRegistry) key(namespace, key string) string {
	return r.store.Key("registry:", namespace, ":", key)
}

// Get returns the stored value, absent keys read back as empty
func (r *RedisRegistry) Get(ctx context.Context, namespace, key string) (string, bool, error) {
	value, err := r.store.Get(ctx, r.key(namespace, key))
	if err != nil {
		return "", false, fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return value, value != "", nil
}

func (r *RedisRegistry) Set(ctx context.Context, namespace, key, value string) error {
	if err := r.store.Set(ctx, r.key(namespace, key), value, 0); err != nil {
		return fmt.Errorf("%w: %v", ErrRegistryUnavailable, err)
	}
	return nil
}
