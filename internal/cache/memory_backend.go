package cache

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/allegro/bigcache/v3"
)

// expiry header in front of every stored value
const expiryHeaderSize = 8

// MemoryOptions tunes the in-process backend
type MemoryOptions struct {
	Shards       int
	MaxEntrySize int
	CleanWindow  time.Duration
	// LifeWindow bounds how long bigcache keeps any entry, independent of the per entry ttl
	LifeWindow time.Duration
}

// MemoryBackend is an in-process backend on top of bigcache with a tag index
type MemoryBackend struct {
	cache  *bigcache.BigCache
	mu     sync.Mutex
	tags   map[string]map[string]struct{}
	// keyTags is the reverse of tags, a key is recorded under at most one tag
	keyTags map[string]string
	closed  bool
	now    func() time.Time
}

// NewMemoryBackend creates a bigcache backed store
func NewMemoryBackend(opts MemoryOptions) (*MemoryBackend, error) {
	if opts.LifeWindow <= 0 {
		opts.LifeWindow = 24 * time.Hour
	}

	cfg := bigcache.DefaultConfig(opts.LifeWindow)
	if opts.Shards > 0 {
		cfg.Shards = opts.Shards
	}
	if opts.MaxEntrySize > 0 {
		cfg.MaxEntrySize = opts.MaxEntrySize
	}
	if opts.CleanWindow > 0 {
		cfg.CleanWindow = opts.CleanWindow
	}
	cfg.Verbose = false

	cache, err := bigcache.New(context.Background(), cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory cache: %w", err)
	}

	return &MemoryBackend{
		cache: cache,
		tags:    make(map[string]map[string]struct{}),
		keyTags: make(map[string]string),
		now:     time.Now,
	}, nil
}

// Get returns the value unless it is missing or expired
func (b *MemoryBackend) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, false, ErrBackendClosed
	}
	return b.getLocked(key)
}

func (b *MemoryBackend) getLocked(key string) ([]byte, bool, error) {
	raw, err := b.cache.Get(key)
	if err != nil {
		if errors.Is(err, bigcache.ErrEntryNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	if len(raw) < expiryHeaderSize {
		b.dropLocked(key)
		return nil, false, nil
	}

	expiry := int64(binary.LittleEndian.Uint64(raw[:expiryHeaderSize]))
	if expiry > 0 && b.now().UnixNano() >= expiry {
		b.dropLocked(key)
		return nil, false, nil
	}

	value := make([]byte, len(raw)-expiryHeaderSize)
	copy(value, raw[expiryHeaderSize:])
	return value, true, nil
}

// SetIfAbsent writes value when key is absent or expired
func (b *MemoryBackend) SetIfAbsent(ctx context.Context, key string, value []byte, ttl time.Duration, tag string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return false, ErrBackendClosed
	}

	if _, found, err := b.getLocked(key); err != nil {
		return false, err
	} else if found {
		return false, nil
	}

	var expiry int64
	if ttl > 0 {
		expiry = b.now().Add(ttl).UnixNano()
	}
	raw := make([]byte, expiryHeaderSize+len(value))
	binary.LittleEndian.PutUint64(raw[:expiryHeaderSize], uint64(expiry))
	copy(raw[expiryHeaderSize:], value)

	if err := b.cache.Set(key, raw); err != nil {
		return false, err
	}

	b.untagLocked(key)
	if tag != "" {
		members, ok := b.tags[tag]
		if !ok {
			members = make(map[string]struct{})
			b.tags[tag] = members
		}
		members[key] = struct{}{}
		b.keyTags[key] = tag
	}

	return true, nil
}

// untagLocked removes key from the tag it is recorded under
func (b *MemoryBackend) untagLocked(key string) {
	tag, ok := b.keyTags[key]
	if !ok {
		return
	}
	delete(b.keyTags, key)
	if members := b.tags[tag]; members != nil {
		delete(members, key)
		if len(members) == 0 {
			delete(b.tags, tag)
		}
	}
}

func (b *MemoryBackend) dropLocked(key string) {
	_ = b.cache.Delete(key)
	b.untagLocked(key)
}

func (b *MemoryBackend) Delete(ctx context.Context, key string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBackendClosed
	}
	if err := b.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
		return err
	}
	b.untagLocked(key)
	return nil
}

// FlushTag drops every key recorded under tag and forgets the tag
func (b *MemoryBackend) FlushTag(ctx context.Context, tag string) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrBackendClosed
	}

	for key := range b.tags[tag] {
		if err := b.cache.Delete(key); err != nil && !errors.Is(err, bigcache.ErrEntryNotFound) {
			return err
		}
		delete(b.keyTags, key)
	}
	delete(b.tags, tag)
	return nil
}

// Close releases the cache
func (b *MemoryBackend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true
	b.tags = nil
	b.keyTags = nil
	return b.cache.Close()
}
