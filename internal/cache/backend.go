package cache

import (
	"context"
	"time"
)

// Backend is a byte store with set-if-absent writes and tag based invalidation
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	// SetIfAbsent stores value unless key is present and records key under tag.
	// It reports whether the value was written.
	SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration, tag string) (bool, error)
	Delete(ctx context.Context, key string) error
	// FlushTag removes every entry recorded under tag
	FlushTag(ctx context.Context, tag string) error
}
